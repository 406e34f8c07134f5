package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/admin-api/internal/api/metrics"
	"github.com/99minutos/admin-api/internal/core/domain"
	"github.com/99minutos/admin-api/internal/core/ports"
	"github.com/99minutos/admin-api/internal/pkg/token"
)

// UserKey is the echo context key holding the authenticated *domain.User.
const UserKey = "user"

// Auth validates the access token of every request and resolves its subject
// against the store. The resolved user is attached to the echo context.
func Auth(codec ports.TokenCodec, users ports.UserReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				metrics.AuthRejectionsTotal.WithLabelValues("missing_token").Inc()
				return domain.Unauthorized("missing bearer token")
			}

			claims, err := codec.Read(token.PurposeAccess, raw)
			if err != nil || claims.UserID == 0 {
				metrics.AuthRejectionsTotal.WithLabelValues("invalid_token").Inc()
				return domain.Unauthorized("invalid access token")
			}

			user, err := users.FindByID(c.Request().Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					metrics.AuthRejectionsTotal.WithLabelValues("unknown_user").Inc()
					return domain.Unauthorized("invalid access token")
				}
				metrics.AuthRejectionsTotal.WithLabelValues("store_error").Inc()
				return domain.Internal(err)
			}

			c.Set(UserKey, user)

			return next(c)
		}
	}
}

// CurrentUser returns the user attached by Auth.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(UserKey).(*domain.User)
	return user, ok && user != nil
}

func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	raw := strings.TrimSpace(parts[1])
	return raw, raw != ""
}
