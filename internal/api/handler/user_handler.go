package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/admin-api/internal/api/metrics"
	"github.com/99minutos/admin-api/internal/core/ports"
)

// UserHandler handles HTTP requests for user management.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userResponse
// @Failure      401  {object}  errorEnvelope
// @Failure      503  {object}  errorEnvelope
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponses(users))
}

// Me handles GET /users/me.
//
// @Summary      Get the authenticated user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorEnvelope
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Get handles GET /users/:userId.
//
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      int  true  "User id"
// @Success      200     {object}  userResponse
// @Failure      401     {object}  errorEnvelope
// @Failure      404     {object}  errorEnvelope
// @Failure      503     {object}  errorEnvelope
// @Router       /users/{userId} [get]
func (h *UserHandler) Get(c echo.Context) error {
	id, err := userIDParam(c)
	if err != nil {
		return err
	}
	user, err := h.service.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Create handles POST /users.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "User fields"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  errorEnvelope
// @Failure      401   {object}  errorEnvelope
// @Failure      503   {object}  errorEnvelope
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req createUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.UserMutationsTotal.WithLabelValues("create", metrics.Outcome(err)).Inc()
		return err
	}

	user, err := h.service.Create(c.Request().Context(), actor, toCreateUserInput(req))
	metrics.UserMutationsTotal.WithLabelValues("create", metrics.Outcome(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// Update handles PUT /users/:userId.
//
// @Summary      Update a user
// @Description  Partial update: only the fields present in the body change.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      int                true  "User id"
// @Param        body    body      updateUserRequest  true  "Fields to change"
// @Success      200     {object}  userResponse
// @Failure      400     {object}  errorEnvelope
// @Failure      401     {object}  errorEnvelope
// @Failure      404     {object}  errorEnvelope
// @Failure      503     {object}  errorEnvelope
// @Router       /users/{userId} [put]
func (h *UserHandler) Update(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := userIDParam(c)
	if err != nil {
		return err
	}
	var req updateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.UserMutationsTotal.WithLabelValues("update", metrics.Outcome(err)).Inc()
		return err
	}

	user, err := h.service.Update(c.Request().Context(), actor, id, toUpdateUserInput(req))
	metrics.UserMutationsTotal.WithLabelValues("update", metrics.Outcome(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Delete handles DELETE /users/:userId.
//
// @Summary      Delete a user
// @Description  Fails for the caller's own account and for users referenced by tickets.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      int  true  "User id"
// @Success      200     {object}  messageResponse
// @Failure      400     {object}  errorEnvelope
// @Failure      401     {object}  errorEnvelope
// @Failure      404     {object}  errorEnvelope
// @Failure      503     {object}  errorEnvelope
// @Router       /users/{userId} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := userIDParam(c)
	if err != nil {
		return err
	}

	err = h.service.Delete(c.Request().Context(), actor, id)
	metrics.UserMutationsTotal.WithLabelValues("delete", metrics.Outcome(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "user deleted"})
}
