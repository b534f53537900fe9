package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brandpreneur/client-portal/internal/core/access"
)

// RequireRole only lets through sessions whose signed-in identity currently
// classifies as one of allowedRoles. It must run after Session.
func RequireRole(allowedRoles ...access.Role) echo.MiddlewareFunc {
	allowed := make(map[access.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := SessionFrom(c)
			if s == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing portal session")
			}
			st := s.Controller().State()
			if st.Loading {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "session is still loading")
			}
			if _, ok := allowed[st.Role]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
