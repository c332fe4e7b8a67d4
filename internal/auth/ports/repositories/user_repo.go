package repositories

import (
	"context"

	"notekeeper/internal/auth/domain/entities"
)

// UserRepository определяет интерфейс для операций сохранения данных пользователем.
// Create возвращает services.ErrUsernameAlreadyExists, если имя уже занято.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) (*entities.User, error)

	FindByID(ctx context.Context, id int64) (*entities.User, error)

	FindByUsername(ctx context.Context, username string) (*entities.User, error)
}
