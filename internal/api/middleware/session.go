package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/brandpreneur/client-portal/internal/core/domain"
	"github.com/brandpreneur/client-portal/internal/core/portal"
)

const (
	// SessionHeader carries the portal session id.
	SessionHeader = "X-Portal-Session"
	// SessionCookie is the fallback for browsers.
	SessionCookie = "portal_session"

	sessionKey = "portal_session"
)

// SessionLookup resolves a live portal session.
type SessionLookup interface {
	Get(id string) (*portal.Session, error)
}

// SessionID returns the id the request presents, or "".
func SessionID(c echo.Context) string {
	if id := strings.TrimSpace(c.Request().Header.Get(SessionHeader)); id != "" {
		return id
	}
	if ck, err := c.Cookie(SessionCookie); err == nil {
		return ck.Value
	}
	return ""
}

// Session resolves the portal session and injects it into the context.
// Unknown or missing ids are rejected with domain.ErrSessionNotFound.
func Session(sessions SessionLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := SessionID(c)
			if id == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing portal session")
			}
			s, err := sessions.Get(id)
			if err != nil {
				return domain.ErrSessionNotFound
			}
			c.Set(sessionKey, s)
			return next(c)
		}
	}
}

// SessionFrom returns the session injected by Session, or nil.
func SessionFrom(c echo.Context) *portal.Session {
	s, _ := c.Get(sessionKey).(*portal.Session)
	return s
}
