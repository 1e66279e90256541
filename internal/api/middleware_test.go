// middleware_test.go - Tests for session authentication middleware
package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/billrate-system/backend/internal/session"
)

func TestRequireLogin(t *testing.T) {
	sessions := session.NewManager(0)
	entry := sessions.Create(1, "alice")

	mw := RequireLogin(sessions, testCookie)
	next := func(c echo.Context) error {
		got, ok := currentSession(c)
		if !ok {
			t.Error("expected session on context")
		} else if got.Token != entry.Token {
			t.Errorf("got token %q, want %q", got.Token, entry.Token)
		}
		return c.NoContent(http.StatusOK)
	}

	t.Run("valid cookie passes through", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
		req.AddCookie(&http.Cookie{Name: testCookie, Value: entry.Token})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := mw(next)(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	rejections := []struct {
		name   string
		cookie *http.Cookie
	}{
		{"no cookie", nil},
		{"empty value", &http.Cookie{Name: testCookie, Value: ""}},
		{"unknown token", &http.Cookie{Name: testCookie, Value: "nope"}},
	}

	for _, tt := range rejections {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := mw(func(echo.Context) error {
				t.Error("next handler should not run")
				return nil
			})(c)

			apiErr, ok := err.(*APIError)
			if !ok {
				t.Fatalf("expected APIError, got %T: %v", err, err)
			}
			if apiErr.Status != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", apiErr.Status)
			}
		})
	}
}
