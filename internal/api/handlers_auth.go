// handlers_auth.go - Account and login handlers
package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/billrate-system/backend/internal/session"
	"github.com/billrate-system/backend/internal/store"
)

// AuthHandlerImpl implements the AuthHandler interface.
type AuthHandlerImpl struct {
	store      store.BillingStore
	sessions   *session.Manager
	cookieName string
	secure     bool
}

// NewAuthHandler creates a new auth handler instance.
func NewAuthHandler(billing store.BillingStore, sessions *session.Manager,
	cookieName string, secure bool) AuthHandler {
	return &AuthHandlerImpl{
		store:      billing,
		sessions:   sessions,
		cookieName: cookieName,
		secure:     secure,
	}
}

type registerRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleRegister creates an account.
func (h *AuthHandlerImpl) HandleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("Invalid JSON data")
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return NewBadRequestError("Username and password are required")
	}
	if req.Password != req.ConfirmPassword {
		return NewBadRequestError("Passwords do not match.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return NewBadRequestError("Processing error: " + err.Error())
	}

	user, err := h.store.CreateUser(c.Request().Context(), username, string(hash))
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return NewBadRequestError("Username is already registered.")
		}
		return NewBadRequestError("Processing error: " + err.Error())
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"message":  "Registration successful! You can now log in.",
		"username": user.Username,
	})
}

// HandleLogin verifies credentials and issues a session cookie.
func (h *AuthHandlerImpl) HandleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("Invalid JSON data")
	}

	user, err := h.store.GetUserByUsername(c.Request().Context(), strings.TrimSpace(req.Username))
	if err != nil {
		return NewUnauthorizedError("Invalid username or password.")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return NewUnauthorizedError("Invalid username or password.")
	}

	entry := h.sessions.Create(user.ID, user.Username)
	c.SetCookie(&http.Cookie{
		Name:     h.cookieName,
		Value:    entry.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return c.JSON(http.StatusOK, map[string]string{
		"message":  "You have successfully logged in!",
		"username": user.Username,
	})
}

// HandleLogout ends the session and clears the cookie.
func (h *AuthHandlerImpl) HandleLogout(c echo.Context) error {
	if cookie, err := c.Cookie(h.cookieName); err == nil && cookie.Value != "" {
		h.sessions.Delete(cookie.Value)
	}

	c.SetCookie(&http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return c.JSON(http.StatusOK, map[string]string{
		"message": "You have been logged out.",
	})
}

// HandleCurrentUser returns the logged-in user's identity.
func (h *AuthHandlerImpl) HandleCurrentUser(c echo.Context) error {
	entry, ok := currentSession(c)
	if !ok {
		return NewUnauthorizedError("Login required")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"user_id":  entry.UserID,
		"username": entry.Username,
	})
}
