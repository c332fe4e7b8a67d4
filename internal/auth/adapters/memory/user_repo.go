// Package memory содержит хранилище пользователей в памяти процесса.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"notekeeper/internal/auth/domain/entities"
	"notekeeper/internal/auth/domain/services"
	"notekeeper/internal/auth/ports/repositories"
	"notekeeper/pkg/logger"
)

// UserRepository хранит пользователей в map, защищенной мьютексом.
type UserRepository struct {
	mu         sync.RWMutex
	nextID     int64
	byID       map[int64]*entities.User
	byUsername map[string]int64
}

// NewUserRepository создает пустое хранилище пользователей.
func NewUserRepository() repositories.UserRepository {
	return &UserRepository{
		byID:       make(map[int64]*entities.User),
		byUsername: make(map[string]int64),
	}
}

// Create сохраняет пользователя, если имя еще не занято.
func (r *UserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byUsername[user.Username]; taken {
		logger.Log(ctx).Debug(ctx, "username already taken",
			zap.String("repository", "memory_user"), zap.String("username", user.Username))
		return nil, services.ErrUsernameAlreadyExists
	}

	r.nextID++
	stored := &entities.User{
		ID:           r.nextID,
		Username:     strings.Clone(user.Username),
		Email:        strings.Clone(user.Email),
		PasswordHash: user.PasswordHash,
		CreatedAt:    time.Now().UTC(),
	}
	r.byID[stored.ID] = stored
	r.byUsername[stored.Username] = stored.ID

	copied := *stored
	return &copied, nil
}

// FindByID находит пользователя по ID.
func (r *UserRepository) FindByID(_ context.Context, id int64) (*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

// FindByUsername находит пользователя по имени.
func (r *UserRepository) FindByUsername(_ context.Context, username string) (*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	copied := *r.byID[id]
	return &copied, nil
}
