package api

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"

	"voicetag/internal/logging"
)

// requestLogger emits one structured line per request once the handler
// returns. Handlers that run a prediction log under their own request id.
func requestLogger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		attrs := []logging.Attr{
			logging.String("method", c.Method()),
			logging.String("path", c.Path()),
			logging.Int("status", status),
			logging.Int64("latency_ms", time.Since(start).Milliseconds()),
			logging.String("client_ip", c.IP()),
		}
		switch {
		case err != nil:
			logger.Error("request failed", logging.Args(append(attrs, logging.Error(err))...)...)
		case status >= fiber.StatusInternalServerError:
			logger.Error("request completed with server error", logging.Args(attrs...)...)
		case status >= fiber.StatusBadRequest:
			logger.Warn("request completed with client error", logging.Args(attrs...)...)
		default:
			logger.Debug("request completed", logging.Args(attrs...)...)
		}
		return err
	}
}

// panicRecovery turns a handler panic into a 500 response so one bad
// request never takes the server down.
func panicRecovery(logger *slog.Logger) fiber.Handler {
	return fiberrecover.New(fiberrecover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			logger.Error("handler panic",
				logging.String("method", c.Method()),
				logging.String("path", c.Path()),
				logging.Any("panic", e),
			)
		},
	})
}
