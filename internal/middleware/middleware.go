package middleware

import (
	"runtime/debug"

	"mediflash/config"
	"mediflash/pkg/apperror"
	"mediflash/pkg/apperror/status"
	"mediflash/pkg/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// ConnectionLimiter limits the number of concurrent requests
type ConnectionLimiter struct {
	limit    int
	waitlist chan struct{}
}

func NewConnectionLimiter(limit int) *ConnectionLimiter {
	if limit < 1 {
		limit = 1
	}
	return &ConnectionLimiter{
		limit:    limit,
		waitlist: make(chan struct{}, limit),
	}
}

func (cl *ConnectionLimiter) Acquire() bool {
	select {
	case cl.waitlist <- struct{}{}:
		return true
	default:
		return false
	}
}

func (cl *ConnectionLimiter) Release() {
	select {
	case <-cl.waitlist:
	default:
	}
}

// Limit rejects requests with 503 while limiter is full.
func Limit(limiter *ConnectionLimiter) fiber.Handler {
	return func(c fiber.Ctx) error {
		if !limiter.Acquire() {
			return apperror.WriteError(config.ModuleServer, c, fiber.StatusServiceUnavailable,
				apperror.New(status.Internal, "Server is at maximum capacity"))
		}
		defer limiter.Release()
		return c.Next()
	}
}

// RequestID makes sure every request carries X-Request-ID and echoes it back.
func RequestID() fiber.Handler {
	return func(c fiber.Ctx) error {
		id := c.Get(fiber.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
			c.Request().Header.Set(fiber.HeaderXRequestID, id)
		}
		c.Set(fiber.HeaderXRequestID, id)
		return c.Next()
	}
}

// Recover turns a panic into a 500 error payload.
func Recover() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithFields(map[string]interface{}{
					"panic":      r,
					"method":     c.Method(),
					"path":       c.Path(),
					"ip":         c.IP(),
					"user_agent": c.Get("User-Agent"),
					"request_id": c.Get(fiber.HeaderXRequestID),
					"stack":      string(debug.Stack()),
				}).Errorf("Panic recovered")

				err = apperror.WriteError(config.ModuleServer, c, fiber.StatusInternalServerError,
					apperror.New(status.Internal, "An unexpected error occurred"))
			}
		}()
		return c.Next()
	}
}
