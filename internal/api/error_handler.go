package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/brandpreneur/client-portal/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Auth failures carry the provider's wording, shown to the user as is.
	var ae *domain.AuthError
	if errors.As(err, &ae) {
		switch {
		case errors.Is(err, domain.ErrIdentityExists):
			return http.StatusConflict, ae.Message
		case errors.Is(err, domain.ErrWeakPassword):
			return http.StatusUnprocessableEntity, ae.Message
		case errors.Is(err, domain.ErrFederationDisabled):
			return http.StatusNotImplemented, ae.Message
		}
		return http.StatusUnauthorized, ae.Message
	}

	var (
		pe *domain.PathError
		ie *domain.IndexError
	)
	switch {
	case errors.Is(err, domain.ErrProvisionFailed):
		logUnexpected(log, c, err)
		return http.StatusBadGateway, "account created but the client record could not be set up"
	case errors.As(err, &pe), errors.As(err, &ie),
		errors.Is(err, domain.ErrInvalidValue),
		errors.Is(err, domain.ErrInvalidNavigation):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrBusy):
		return http.StatusConflict, "another save or upload is in progress"
	case errors.Is(err, domain.ErrDuplicateRequest):
		return http.StatusConflict, "request already submitted"
	case errors.Is(err, domain.ErrEditorClosed):
		return http.StatusConflict, "no client is open in the editor"
	case errors.Is(err, domain.ErrClientNotFound):
		return http.StatusNotFound, "client not found"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusUnauthorized, "unknown portal session"
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, "sign-in expired"
	case errors.Is(err, domain.ErrFederationDisabled):
		return http.StatusNotImplemented, "federated sign-in is not configured"
	}

	var (
		fe *domain.FetchError
		ue *domain.UploadError
		ce *domain.CommitError
	)
	switch {
	case errors.As(err, &fe):
		logUnexpected(log, c, err)
		return http.StatusBadGateway, "could not load client data"
	case errors.As(err, &ue):
		logUnexpected(log, c, err)
		return http.StatusBadGateway, "upload failed"
	case errors.As(err, &ce):
		logUnexpected(log, c, err)
		return http.StatusBadGateway, "save failed, your edits are kept"
	}

	// Unexpected error: log the real cause, return a generic message.
	logUnexpected(log, c, err)
	return http.StatusInternalServerError, "internal server error"
}

func logUnexpected(log zerolog.Logger, c echo.Context, err error) {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")
}
