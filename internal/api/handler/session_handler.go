package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/brandpreneur/client-portal/internal/api/metrics"
	"github.com/brandpreneur/client-portal/internal/api/middleware"
	"github.com/brandpreneur/client-portal/internal/core/domain"
	"github.com/brandpreneur/client-portal/internal/core/portal"
	"github.com/brandpreneur/client-portal/internal/core/session"
)

// ThemeHintHeader is the client hint browsers send for the preferred color scheme.
const ThemeHintHeader = "Sec-CH-Prefers-Color-Scheme"

// SessionRegistry hands out and disposes portal sessions.
type SessionRegistry interface {
	Open(ctx context.Context, id string, hint domain.Theme) (*portal.Session, bool)
	Dispose(id string)
}

// SessionHandler serves the session lifecycle and its view model.
type SessionHandler struct {
	sessions     SessionRegistry
	secureCookie bool
}

func NewSessionHandler(sessions SessionRegistry, secureCookie bool) *SessionHandler {
	return &SessionHandler{sessions: sessions, secureCookie: secureCookie}
}

// Open handles POST /v1/sessions.
//
// @Summary      Open or resume a portal session
// @Description  Reuses the session presented in X-Portal-Session or the portal_session cookie when it is live, restores a well-formed id that is not, and starts a new one otherwise.
// @Tags         session
// @Produce      json
// @Param        X-Portal-Session             header    string  false  "Session id"
// @Param        Sec-CH-Prefers-Color-Scheme  header    string  false  "Preferred theme (light or dark)"
// @Success      200  {object}  portal.View
// @Success      201  {object}  portal.View
// @Router       /v1/sessions [post]
func (h *SessionHandler) Open(c echo.Context) error {
	ctx := c.Request().Context()
	hint := domain.Theme(strings.Trim(c.Request().Header.Get(ThemeHintHeader), `" `))

	s, created := h.sessions.Open(ctx, middleware.SessionID(c), hint)

	status, outcome := http.StatusOK, "reused"
	if created {
		status, outcome = http.StatusCreated, "created"
	}
	metrics.SessionsOpenedTotal.WithLabelValues(outcome).Inc()

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    s.ID(),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	c.Response().Header().Set(middleware.SessionHeader, s.ID())
	return c.JSON(status, s.View(ctx))
}

// Get handles GET /v1/session.
//
// @Summary      Current view model
// @Tags         session
// @Produce      json
// @Param        X-Portal-Session  header    string  true  "Session id"
// @Success      200               {object}  portal.View
// @Failure      401               {object}  errorResponse
// @Router       /v1/session [get]
func (h *SessionHandler) Get(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.View(c.Request().Context()))
}

// Dispose handles DELETE /v1/session.
//
// @Summary      End the portal session
// @Tags         session
// @Param        X-Portal-Session  header  string  true  "Session id"
// @Success      204
// @Router       /v1/session [delete]
func (h *SessionHandler) Dispose(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	h.sessions.Dispose(s.ID())
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return c.NoContent(http.StatusNoContent)
}

// ToggleTheme handles POST /v1/session/theme.
//
// @Summary      Toggle between light and dark
// @Tags         session
// @Produce      json
// @Param        X-Portal-Session  header    string  true  "Session id"
// @Success      200               {object}  portal.View
// @Router       /v1/session/theme [post]
func (h *SessionHandler) ToggleTheme(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	s.ToggleTheme(ctx)
	return c.JSON(http.StatusOK, s.View(ctx))
}

// Navigate handles POST /v1/session/navigate.
//
// @Summary      Switch screen or page
// @Description  Exactly one of auth_screen, page and admin_screen must be set, matching the session's role.
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        X-Portal-Session  header    string           true  "Session id"
// @Param        body              body      navigateRequest  true  "Target"
// @Success      200               {object}  portal.View
// @Failure      422               {object}  errorResponse
// @Router       /v1/session/navigate [post]
func (h *SessionHandler) Navigate(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req navigateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	ctrl := s.Controller()
	switch {
	case req.AuthScreen != "" && req.Page == "" && req.AdminScreen == "":
		err = ctrl.ShowAuthScreen(session.AuthScreen(req.AuthScreen))
	case req.Page != "" && req.AuthScreen == "" && req.AdminScreen == "":
		err = ctrl.ShowPage(session.Page(req.Page))
	case req.AdminScreen != "" && req.AuthScreen == "" && req.Page == "":
		err = s.ShowAdminScreen(session.AdminScreen(req.AdminScreen))
	default:
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "exactly one navigation target is required")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.View(c.Request().Context()))
}
