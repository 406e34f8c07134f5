package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/admin-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Code    domain.Kind    `json:"code"`
	Message string         `json:"message"`
	Status  int            `json:"status"`
	Data    map[string]any `json:"data,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Renders *domain.Error with the status of its kind.
//   - Renders echo's own errors (unknown route, bad body) in the same envelope.
//   - Logs unexpected errors internally and answers 503 InternalError
//     without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		resp := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(resp.Status)
			return
		}
		_ = c.JSON(resp.Status, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) errorResponse {
	var derr *domain.Error
	if errors.As(err, &derr) {
		if derr.Kind == domain.KindInternal {
			logUnexpected(log, c, err)
		}
		msg := derr.Message
		if derr.Kind == domain.KindInternal {
			msg = domain.ErrInternal.Message
		}
		return errorResponse{Code: derr.Kind, Message: msg, Status: derr.Kind.Status(), Data: derr.Data}
	}

	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			logUnexpected(log, c, err)
		}
		return errorResponse{Code: kindForStatus(he.Code), Message: fmt.Sprintf("%v", he.Message), Status: he.Code}
	}

	// Unexpected error: log the real cause, return a generic message.
	logUnexpected(log, c, err)
	return errorResponse{
		Code:    domain.KindInternal,
		Message: domain.ErrInternal.Message,
		Status:  domain.KindInternal.Status(),
	}
}

func kindForStatus(status int) domain.Kind {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType, http.StatusUnprocessableEntity:
		return domain.KindValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.KindUnauthorized
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return domain.KindEntityNotFound
	default:
		return domain.KindInternal
	}
}

func logUnexpected(log zerolog.Logger, c echo.Context, err error) {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")
}
