package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notekeeper/internal/auth/ports/api"
	"notekeeper/internal/gateway/adapters/http/response"
	"notekeeper/pkg/logger"
)

// Константы для логирования.
const (
	LogAuthMiddleware = "auth middleware"

	ErrorNoAuthHeader       = "no authorization header provided"
	ErrorInvalidTokenFormat = "invalid token format"

	bearerPrefix = "bearer "
)

// NewAuthMiddleware проверяет токен из заголовка Authorization и кладет
// пользователя в контекст запроса.
func NewAuthMiddleware(gate api.AuthGate) fiber.Handler {
	return func(c fiber.Ctx) error {
		requestCtx := RequestContext(c)
		log := logger.Log(requestCtx).With(zap.String("middleware", "auth"))
		log.Debug(requestCtx, LogAuthMiddleware)

		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			log.Debug(requestCtx, ErrorNoAuthHeader)
			return response.Unauthorized(c)
		}

		if len(authHeader) <= len(bearerPrefix) || !strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			log.Debug(requestCtx, ErrorInvalidTokenFormat)
			return response.Unauthorized(c)
		}

		user, err := gate.Resolve(requestCtx, strings.TrimSpace(authHeader[len(bearerPrefix):]))
		if err != nil {
			return response.FromError(requestCtx, c, err)
		}

		c.Locals(localsCurrentUser, user)
		return c.Next()
	}
}
