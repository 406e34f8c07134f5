package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Tracing opens a server span per request, continuing any trace propagated
// in the request headers. Without a configured provider the spans are no-ops.
func Tracing(serviceName string) echo.MiddlewareFunc {
	tracer := otel.Tracer(serviceName)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := otel.GetTextMapPropagator().Extract(req.Context(), propagation.HeaderCarrier(req.Header))

			ctx, span := tracer.Start(ctx, fmt.Sprintf("[%s] %s", req.Method, c.Path()),
				trace.WithSpanKind(trace.SpanKindServer),
			)
			defer span.End()

			c.SetRequest(req.WithContext(ctx))

			err := next(c)

			span.SetAttributes(
				attribute.String("http.method", req.Method),
				attribute.String("http.route", c.Path()),
				attribute.Int("http.status_code", c.Response().Status),
			)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			return err
		}
	}
}
