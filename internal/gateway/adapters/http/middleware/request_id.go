package middleware

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"notekeeper/pkg/logger"
)

// HeaderRequestID - заголовок с идентификатором запроса.
const HeaderRequestID = "X-Request-ID"

// NewRequestIDMiddleware берет X-Request-ID из запроса или генерирует новый,
// возвращает его в ответе и кладет в контекст запроса.
func NewRequestIDMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			requestID = logger.GenerateRequestID()
		}

		c.Set(HeaderRequestID, requestID)
		c.Locals(localsRequestContext, logger.NewRequestIDContext(context.Background(), requestID))

		return c.Next()
	}
}
