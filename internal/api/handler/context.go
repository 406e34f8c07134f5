package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/admin-api/internal/api/middleware"
	"github.com/99minutos/admin-api/internal/core/domain"
)

// currentUser returns the caller attached by the Auth middleware. Its absence
// means the route was mounted without the middleware.
func currentUser(c echo.Context) (*domain.User, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, domain.Unauthorized("missing authentication")
	}
	return user, nil
}

// userIDParam parses the :userId path parameter. A malformed id cannot match
// any user, so it is reported the same way as a missing one.
func userIDParam(c echo.Context) (int64, error) {
	raw := c.Param("userId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.EntityNotFound("user not found", map[string]any{"id": raw})
	}
	return id, nil
}
