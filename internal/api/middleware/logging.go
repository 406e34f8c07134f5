package middleware

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// RequestLogger logs one line per request and stores a request-scoped logger,
// tagged with the request id, in the request context. It must run after
// echo's RequestID middleware.
func RequestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	attach := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqLogger := logger.With().
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Logger()
			c.SetRequest(c.Request().WithContext(reqLogger.WithContext(c.Request().Context())))
			return next(c)
		}
	}

	log := echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogMethod:    true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := logger.Info()
			if v.Status >= 500 {
				event = logger.Error().Err(v.Error)
			}
			event.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Int64("latency_us", v.Latency.Microseconds()).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return log(attach(next))
	}
}
