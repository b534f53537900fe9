package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brandpreneur/client-portal/internal/api/middleware"
	"github.com/brandpreneur/client-portal/internal/core/portal"
)

// ctxSession returns the portal session resolved by the Session middleware.
// A nil session means the route was mounted without it.
func ctxSession(c echo.Context) (*portal.Session, error) {
	s := middleware.SessionFrom(c)
	if s == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing portal session")
	}
	return s, nil
}

// bindAndValidate decodes the request body into req and runs the registered
// validator on it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}
