// Package middleware содержит промежуточное ПО для HTTP обработчиков.
package middleware

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"notekeeper/internal/auth/domain/entities"
)

const (
	localsRequestContext = "requestContext"
	localsCurrentUser    = "currentUser"
)

// RequestContext возвращает контекст запроса с request id.
func RequestContext(c fiber.Ctx) context.Context {
	if ctx, ok := c.Locals(localsRequestContext).(context.Context); ok {
		return ctx
	}
	return context.Background()
}

// CurrentUser возвращает пользователя, проверенного NewAuthMiddleware.
func CurrentUser(c fiber.Ctx) (*entities.User, bool) {
	user, ok := c.Locals(localsCurrentUser).(*entities.User)
	return user, ok && user != nil
}
