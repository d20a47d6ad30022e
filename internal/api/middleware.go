package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sudankdk/cee/internal/logger"
)

const (
	headerRequestID = "X-Request-ID"
	headerUserID    = "X-User-ID"

	defaultLimiterCleanup = 10 * time.Minute
	shutdownTimeout       = 15 * time.Second
)

// requestContext tags the request context with an id and logs the outcome.
func requestContext(c *fiber.Ctx) error {
	id := c.Get(headerRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(headerRequestID, id)
	ctx := logger.WithRequestID(c.UserContext(), id)
	c.SetUserContext(ctx)

	start := time.Now()
	err := c.Next()
	if err != nil {
		// run the error handler now so the logged status is the one sent
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			return herr
		}
	}
	logger.Debug(ctx, "request handled",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("latency", time.Since(start)))
	return nil
}
