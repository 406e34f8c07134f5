package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/admin-api/internal/core/ports"
)

type RoleHandler struct {
	service ports.RoleService
}

func NewRoleHandler(service ports.RoleService) *RoleHandler {
	return &RoleHandler{service: service}
}

// List handles GET /roles.
//
// @Summary      List roles
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   roleResponse
// @Failure      401  {object}  errorEnvelope
// @Failure      503  {object}  errorEnvelope
// @Router       /roles [get]
func (h *RoleHandler) List(c echo.Context) error {
	roles, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRoleResponses(roles))
}
