package observability

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sfqs/ticket-system/internal/auth"
	apperrors "github.com/sfqs/ticket-system/pkg/util/errorutil"
)

// unmatchedRoute labels requests that matched no route.
const unmatchedRoute = "unmatched"

// RequestLogger writes one access log line per request and records request metrics.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			status = StatusOf(err)
		}
		route := c.Path()
		if r := c.Route(); r != nil && r.Path != "" && r.Path != "/" {
			route = r.Path
		} else if status == fiber.StatusNotFound {
			// keep metric labels bounded for unknown paths
			route = unmatchedRoute
		}
		metrics.RecordRequest(route, c.Method(), status, latency)

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("ip", c.IP()),
		}
		if session := auth.SessionFromContext(c); session.Authenticated {
			fields = append(fields, zap.String("role", string(session.Role)))
		}
		if location := string(c.Response().Header.Peek(fiber.HeaderLocation)); location != "" {
			fields = append(fields, zap.String("location", location))
		}
		logger.Info("request", fields...)
		return err
	}
}

// StatusOf returns the HTTP status an error renders with.
func StatusOf(err error) int {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	return apperrors.ToDomainError(err).HTTPStatus
}
