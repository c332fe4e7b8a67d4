package api

import (
	"context"

	"notekeeper/internal/auth/domain/entities"
	"notekeeper/internal/auth/domain/services"
)

// AuthUseCase определяет основной порт для операций аутентификации.
type AuthUseCase interface {
	Register(ctx context.Context, username, email, password string) (*entities.User, error)

	Login(ctx context.Context, username, password string) (*services.AccessToken, error)
}

// AuthGate превращает токен доступа в пользователя, от имени которого выполняется запрос.
type AuthGate interface {
	Resolve(ctx context.Context, token string) (*entities.User, error)
}
