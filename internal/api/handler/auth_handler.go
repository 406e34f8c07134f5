package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/admin-api/internal/api/metrics"
	"github.com/99minutos/admin-api/internal/core/domain"
	"github.com/99minutos/admin-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Token string `json:"token"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type loginLinkRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type sessionResponse struct {
	Message      string `json:"message"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Login exchanges a login token for an access/refresh pair.
//
// @Summary      Login with a login token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login token"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  errorEnvelope
// @Failure      503   {object}  errorEnvelope
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", string(domain.KindInvalidToken)).Inc()
		return domain.ErrInvalidToken
	}

	pair, err := h.authService.Authenticate(c.Request().Context(), req.Token)
	metrics.AuthAttemptsTotal.WithLabelValues("login", metrics.Outcome(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, sessionResponse{
		Message:      "logged in",
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Refresh mints a new pair from a refresh token.
//
// @Summary      Refresh a session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  true  "Refresh token"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  errorEnvelope
// @Failure      503   {object}  errorEnvelope
// @Router       /refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("refresh", string(domain.KindInvalidToken)).Inc()
		return domain.ErrInvalidToken
	}

	pair, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken)
	metrics.AuthAttemptsTotal.WithLabelValues("refresh", metrics.Outcome(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, sessionResponse{
		Message:      "session refreshed",
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// RequestLink mails a login link. The answer is the same whether or not the
// address belongs to a user.
//
// @Summary      Request a login link by email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginLinkRequest  true  "Email address"
// @Success      202   {object}  messageResponse
// @Failure      400   {object}  errorEnvelope
// @Failure      503   {object}  errorEnvelope
// @Router       /login/request [post]
func (h *AuthHandler) RequestLink(c echo.Context) error {
	var req loginLinkRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err := h.authService.RequestLoginLink(c.Request().Context(), req.Email)
	metrics.AuthAttemptsTotal.WithLabelValues("login_link", metrics.Outcome(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusAccepted, messageResponse{Message: "if the address belongs to an account, a login link is on its way"})
}
