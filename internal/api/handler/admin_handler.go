package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// AdminHandler serves the admin dashboard and user management screens.
type AdminHandler struct{}

func NewAdminHandler() *AdminHandler {
	return &AdminHandler{}
}

// ListClients handles GET /v1/admin/clients.
//
// @Summary      List client records, newest first
// @Tags         admin
// @Produce      json
// @Param        X-Portal-Session  header    string  true  "Session id"
// @Success      200               {array}   portal.ClientSummary
// @Failure      403               {object}  errorResponse
// @Failure      502               {object}  errorResponse
// @Router       /v1/admin/clients [get]
func (h *AdminHandler) ListClients(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	clients, err := s.ListClients(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, clients)
}

// DeleteClient handles DELETE /v1/admin/clients/:id. The identity behind the
// record is left in place.
//
// @Summary      Delete a client record
// @Tags         admin
// @Param        X-Portal-Session  header    string  true  "Session id"
// @Param        id                path      string  true  "Client id"
// @Success      204
// @Failure      404               {object}  errorResponse
// @Router       /v1/admin/clients/{id} [delete]
func (h *AdminHandler) DeleteClient(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := s.DeleteClient(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
