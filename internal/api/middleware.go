// middleware.go - Session authentication middleware
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/billrate-system/backend/internal/session"
)

// sessionContextKey is where RequireLogin stores the resolved session entry.
const sessionContextKey = "billing.session"

// RequireLogin rejects requests that do not carry a valid session cookie.
// The resolved session is stored on the echo context for handlers.
func RequireLogin(sessions *session.Manager, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				return NewUnauthorizedError("Login required")
			}

			entry, ok := sessions.Get(cookie.Value)
			if !ok {
				return NewUnauthorizedError("Login required")
			}

			c.Set(sessionContextKey, entry)
			return next(c)
		}
	}
}

// currentSession returns the session RequireLogin attached to the request.
func currentSession(c echo.Context) (*session.Entry, bool) {
	entry, ok := c.Get(sessionContextKey).(*session.Entry)
	return entry, ok
}
