package middleware

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notekeeper/internal/gateway/adapters/http/response"
	"notekeeper/pkg/logger"
)

// Limiter решает, пропускать ли запрос с данным ключом.
type Limiter interface {
	Allow(key string) bool
}

// NewRateLimitMiddleware отвечает 429, когда клиент превысил лимит.
func NewRateLimitMiddleware(limiter Limiter) fiber.Handler {
	return func(c fiber.Ctx) error {
		ip := c.IP()
		if !limiter.Allow(ip) {
			requestCtx := RequestContext(c)
			logger.Log(requestCtx).Warn(requestCtx, "rate limit exceeded", zap.String("ip", ip))
			return response.Error(c, fiber.StatusTooManyRequests, response.MsgTooManyRequests)
		}
		return c.Next()
	}
}
