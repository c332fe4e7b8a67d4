package services

import (
	"context"
	"time"
)

// TokenService определяет интерфейс для операций с токенами JWT.
type TokenService interface {
	GenerateAccessToken(ctx context.Context, username string) (string, time.Time, error)

	// ValidateAccessToken возвращает имя пользователя из subject токена.
	ValidateAccessToken(ctx context.Context, token string) (string, error)
}
