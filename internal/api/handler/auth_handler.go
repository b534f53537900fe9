package handler

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/brandpreneur/client-portal/internal/api/metrics"
	"github.com/brandpreneur/client-portal/internal/api/middleware"
	"github.com/brandpreneur/client-portal/internal/core/domain"
)

// FederatedStarter opens the provider popup for a session and maps the
// provider's callback back to it.
type FederatedStarter interface {
	Begin(ctx context.Context, sessionID string) (string, error)
	Resolve(ctx context.Context, state string) (string, error)
}

type AuthHandler struct {
	flow     FederatedStarter
	sessions middleware.SessionLookup
	log      zerolog.Logger
}

func NewAuthHandler(flow FederatedStarter, sessions middleware.SessionLookup, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{flow: flow, sessions: sessions, log: log}
}

// SignIn handles POST /v1/auth/signin.
//
// @Summary      Sign in with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        X-Portal-Session  header    string         true  "Session id"
// @Param        body              body      signInRequest  true  "Credentials"
// @Success      200               {object}  portal.View
// @Failure      401               {object}  errorResponse
// @Failure      422               {object}  errorResponse
// @Router       /v1/auth/signin [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req signInRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	err = s.Controller().SignIn(ctx, req.Email, req.Password)
	metrics.AuthAttemptsTotal.WithLabelValues("password", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.View(ctx))
}

// SignUp handles POST /v1/auth/signup.
//
// @Summary      Create an account
// @Description  Creates the identity and provisions its client record. A 502 means the identity exists but the record could not be created.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        X-Portal-Session  header    string         true  "Session id"
// @Param        body              body      signUpRequest  true  "New account"
// @Success      201               {object}  portal.View
// @Failure      409               {object}  errorResponse
// @Failure      422               {object}  errorResponse
// @Failure      502               {object}  errorResponse
// @Router       /v1/auth/signup [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req signUpRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	err = s.Controller().SignUp(ctx, req.Name, req.Email, req.Password)
	metrics.AuthAttemptsTotal.WithLabelValues("signup", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, s.View(ctx))
}

// SignOut handles POST /v1/auth/signout.
//
// @Summary      Sign out
// @Tags         auth
// @Produce      json
// @Param        X-Portal-Session  header    string  true  "Session id"
// @Success      200               {object}  portal.View
// @Router       /v1/auth/signout [post]
func (h *AuthHandler) SignOut(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := s.Controller().SignOut(ctx); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.View(ctx))
}

// Federated handles GET /v1/auth/federated.
//
// @Summary      Start federated sign-in
// @Description  Returns the provider URL the popup should open.
// @Tags         auth
// @Produce      json
// @Param        X-Portal-Session  header    string  true  "Session id"
// @Success      200               {object}  federatedResponse
// @Failure      501               {object}  errorResponse
// @Router       /v1/auth/federated [get]
func (h *AuthHandler) Federated(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	url, err := h.flow.Begin(c.Request().Context(), s.ID())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, federatedResponse{URL: url})
}

var callbackPage = template.Must(template.New("callback").Parse(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>Sign in</title></head>
<body>
<p>{{if .OK}}Signed in. You can close this window.{{else}}Sign-in failed: {{.Error}}{{end}}</p>
<script>
if (window.opener) { window.opener.postMessage({type: "portal-auth", ok: {{.OK}}, error: {{.Error}}}, "*"); }
window.close();
</script>
</body>
</html>
`))

type callbackResult struct {
	OK    bool
	Error string
}

// Callback handles GET /auth/callback, the provider redirect that ends the
// popup. The outcome lands on the session that started the flow.
//
// @Summary      Federated sign-in callback
// @Tags         auth
// @Produce      html
// @Param        state  query  string  true   "Flow state"
// @Param        code   query  string  false  "Authorization code"
// @Param        error  query  string  false  "Provider error"
// @Success      200
// @Failure      400
// @Router       /auth/callback [get]
func (h *AuthHandler) Callback(c echo.Context) error {
	ctx := c.Request().Context()

	sid, err := h.flow.Resolve(ctx, c.QueryParam("state"))
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) && !errors.Is(err, domain.ErrFederationDisabled) {
			h.log.Error().Err(err).Msg("federated callback state lookup failed")
		}
		return renderCallback(c, http.StatusBadRequest, callbackResult{Error: "sign-in link expired"})
	}
	s, err := h.sessions.Get(sid)
	if err != nil {
		return renderCallback(c, http.StatusBadRequest, callbackResult{Error: "portal session ended"})
	}

	if reason := c.QueryParam("error"); reason != "" {
		metrics.AuthAttemptsTotal.WithLabelValues("federated", "error").Inc()
		return renderCallback(c, http.StatusOK, callbackResult{Error: reason})
	}

	err = s.Controller().SignInWithFederatedProvider(ctx, domain.FederatedCredential{Code: c.QueryParam("code")})
	metrics.AuthAttemptsTotal.WithLabelValues("federated", metrics.Result(err)).Inc()
	if err != nil {
		var ae *domain.AuthError
		if errors.As(err, &ae) {
			return renderCallback(c, http.StatusOK, callbackResult{Error: ae.Message})
		}
		h.log.Warn().Err(err).Str("session_id", sid).Msg("federated sign-in incomplete")
		return renderCallback(c, http.StatusOK, callbackResult{Error: "account setup failed, please try again"})
	}
	return renderCallback(c, http.StatusOK, callbackResult{OK: true})
}

func renderCallback(c echo.Context, status int, res callbackResult) error {
	var buf bytes.Buffer
	if err := callbackPage.Execute(&buf, res); err != nil {
		return err
	}
	return c.HTMLBlob(status, buf.Bytes())
}
