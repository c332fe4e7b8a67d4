package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"notekeeper/internal/auth/domain/entities"
	"notekeeper/internal/auth/domain/services"
	"notekeeper/internal/auth/ports/api"
	"notekeeper/internal/auth/ports/repositories"
	svc "notekeeper/internal/auth/ports/services"
	"notekeeper/pkg/logger"
)

const (
	methodResolve = "Resolve"

	msgTokenRejected   = "access token rejected"
	msgSubjectNotFound = "token subject does not match any user"
	msgUserResolved    = "request user resolved"
	msgErrLookupUser   = "failed to look up token subject"

	errCtxLookupUser = "looking up token subject"
)

// Gate проверяет токен доступа и находит пользователя, которому он выдан.
type Gate struct {
	tokenSvc svc.TokenService
	userRepo repositories.UserRepository
}

// NewGate создает новый Gate.
func NewGate(tokenSvc svc.TokenService, userRepo repositories.UserRepository) api.AuthGate {
	return &Gate{tokenSvc: tokenSvc, userRepo: userRepo}
}

// Resolve возвращает пользователя по токену или ошибку, совместимую с services.ErrUnauthenticated.
// Исходная причина сохраняется в цепочке ошибок. Сбой хранилища возвращается как есть.
func (g *Gate) Resolve(ctx context.Context, token string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("method", methodResolve))

	username, err := g.tokenSvc.ValidateAccessToken(ctx, token)
	if err != nil {
		log.Debug(ctx, msgTokenRejected, zap.Error(err))
		return nil, fmt.Errorf("%w: %w", services.ErrUnauthenticated, err)
	}

	user, err := g.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Debug(ctx, msgSubjectNotFound, zap.String("username", username))
			return nil, fmt.Errorf("%w: %w", services.ErrUnauthenticated, err)
		}
		log.Error(ctx, msgErrLookupUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxLookupUser, err)
	}

	log.Debug(ctx, msgUserResolved, zap.Int64("userID", user.ID))
	return user, nil
}
