package handler

import (
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// InjectLogger seeds each request's context with the base logger so handlers
// and services can log through zctx.
func InjectLogger(lg *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.SetUserContext(zctx.Base(c.UserContext(), lg))
		return c.Next()
	}
}

// LogRequests writes one structured line per request after it completes.
func LogRequests() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if ferr, ok := err.(*fiber.Error); ok {
			status = ferr.Code
		}

		lg := zctx.From(c.UserContext())
		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
		}
		if id, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok {
			fields = append(fields, zap.String("request_id", id))
		}

		if status >= fiber.StatusInternalServerError {
			lg.Error("Request", fields...)
		} else {
			lg.Info("Request", fields...)
		}
		return err
	}
}

// Metrics carries the request instruments.
type Metrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// NewMetrics registers the HTTP server instruments on the meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	requests, err := meter.Int64Counter("http.server.request_count",
		metric.WithDescription("Number of handled requests"))
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("http.server.duration",
		metric.WithUnit("ms"),
		metric.WithDescription("Request handling duration"))
	if err != nil {
		return nil, err
	}

	return &Metrics{requests: requests, duration: duration}, nil
}

// Instrument records a count and duration sample per request, labeled by
// method, route pattern, and status class.
func Instrument(m *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if ferr, ok := err.(*fiber.Error); ok {
			status = ferr.Code
		}

		attrs := metric.WithAttributes(
			attribute.String("http.method", c.Method()),
			attribute.String("http.route", c.Route().Path),
			attribute.Int("http.status_code", status),
		)

		ctx := c.UserContext()
		m.requests.Add(ctx, 1, attrs)
		m.duration.Record(ctx, float64(time.Since(start))/float64(time.Millisecond), attrs)
		return err
	}
}
