package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"notekeeper/internal/auth/domain/entities"
	"notekeeper/internal/auth/domain/services"
	"notekeeper/internal/auth/ports/api"
	"notekeeper/internal/auth/ports/repositories"
	svc "notekeeper/internal/auth/ports/services"
	"notekeeper/pkg/logger"
)

const (
	methodRegister = "Register"
	methodLogin    = "Login"

	msgStartRegistration   = "starting user registration"
	msgEmptyEmail          = "empty email provided"
	msgEmptyUsername       = "empty username provided"
	msgEmptyPassword       = "empty password provided"
	msgPasswordTooLong     = "password exceeds bcrypt limit"
	msgUsernameExists      = "user with this username already exists"
	msgUserRegistered      = "user registered successfully"
	msgLoginAttempt        = "login attempt"
	msgLoginNonExistent    = "login attempt with non-existent username"
	msgInvalidPasswordAuth = "invalid password provided"
	msgUserLoggedIn        = "user logged in successfully"

	msgErrCheckExistingUser   = "failed to check existing user"
	msgErrHashPassword        = "failed to hash password"
	msgErrCreateUser          = "failed to create user"
	msgErrFindingUser         = "error finding user by username"
	msgErrVerifyingPassword   = "error verifying password"
	msgErrGenerateAccessToken = "failed to generate access token"

	errCtxValidatingEmail       = "validating email"
	errCtxValidatingUsername    = "validating username"
	errCtxValidatingPassword    = "validating password"
	errCtxCheckingUser          = "checking existing user"
	errCtxUsernameRegistered    = "username already registered"
	errCtxHashingPassword       = "hashing password"
	errCtxCreatingUser          = "creating user"
	errCtxInvalidCredentials    = "invalid credentials"
	errCtxFindingUser           = "finding user"
	errCtxVerifyingPassword     = "verifying password"
	errCtxGeneratingAccessToken = "generating access token"

	// dummyPassword хэшируется один раз и сравнивается при входе под несуществующим именем.
	dummyPassword = "notekeeper-timing-equalizer"
)

// AuthUseCaseImpl реализует интерфейс AuthUseCase.
type AuthUseCaseImpl struct {
	userRepo    repositories.UserRepository
	passwordSvc svc.PasswordService
	tokenSvc    svc.TokenService

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthUseCase создает новый экземпляр сервиса аутентификации.
func NewAuthUseCase(
	userRepo repositories.UserRepository,
	passwordSvc svc.PasswordService,
	tokenSvc svc.TokenService,
) api.AuthUseCase {
	return &AuthUseCaseImpl{
		userRepo:    userRepo,
		passwordSvc: passwordSvc,
		tokenSvc:    tokenSvc,
	}
}

// Register создает нового пользователя с предоставленными учетными данными.
func (a *AuthUseCaseImpl) Register(ctx context.Context, username, email, password string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("method", methodRegister), zap.String("username", username))
	log.Debug(ctx, msgStartRegistration)

	if username == "" {
		log.Debug(ctx, msgEmptyUsername)
		return nil, fmt.Errorf("%s: %w", errCtxValidatingUsername, entities.ErrEmptyUsername)
	}
	if email == "" {
		log.Debug(ctx, msgEmptyEmail)
		return nil, fmt.Errorf("%s: %w", errCtxValidatingEmail, entities.ErrEmptyEmail)
	}
	if password == "" {
		log.Debug(ctx, msgEmptyPassword)
		return nil, fmt.Errorf("%s: %w", errCtxValidatingPassword, entities.ErrEmptyPassword)
	}
	if len(password) > entities.MaxPasswordBytes {
		log.Debug(ctx, msgPasswordTooLong, zap.Int("bytes", len(password)))
		return nil, fmt.Errorf("%s: %w", errCtxValidatingPassword, entities.ErrPasswordTooLong)
	}

	existingUser, err := a.userRepo.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, entities.ErrUserNotFound) {
		log.Error(ctx, msgErrCheckExistingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCheckingUser, err)
	}
	if existingUser != nil {
		log.Debug(ctx, msgUsernameExists)
		return nil, fmt.Errorf("%s: %w", errCtxUsernameRegistered, services.ErrUsernameAlreadyExists)
	}

	hashedPassword, err := a.passwordSvc.Hash(ctx, password)
	if err != nil {
		log.Error(ctx, msgErrHashPassword, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxHashingPassword, err)
	}

	createdUser, err := a.userRepo.Create(ctx, &entities.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
	})
	if err != nil {
		if errors.Is(err, services.ErrUsernameAlreadyExists) {
			log.Debug(ctx, msgUsernameExists)
		} else {
			log.Error(ctx, msgErrCreateUser, zap.Error(err))
		}
		return nil, fmt.Errorf("%s: %w", errCtxCreatingUser, err)
	}

	log.Info(ctx, msgUserRegistered, zap.Int64("userID", createdUser.ID))
	return createdUser, nil
}

// Login аутентифицирует пользователя по имени и паролю и выдает токен доступа.
func (a *AuthUseCaseImpl) Login(ctx context.Context, username, password string) (*services.AccessToken, error) {
	log := logger.Log(ctx).With(zap.String("method", methodLogin), zap.String("username", username))
	log.Debug(ctx, msgLoginAttempt)

	user, err := a.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			a.burnVerification(ctx, password)
			log.Debug(ctx, msgLoginNonExistent)
			return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrInvalidCredentials)
		}
		log.Error(ctx, msgErrFindingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}

	valid, err := a.passwordSvc.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPassword) {
			log.Debug(ctx, msgInvalidPasswordAuth, zap.Int64("userID", user.ID))
			return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrInvalidCredentials)
		}
		log.Error(ctx, msgErrVerifyingPassword, zap.Error(err), zap.Int64("userID", user.ID))
		return nil, fmt.Errorf("%s: %w", errCtxVerifyingPassword, err)
	}
	if !valid {
		log.Debug(ctx, msgInvalidPasswordAuth, zap.Int64("userID", user.ID))
		return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrInvalidCredentials)
	}

	token, expiresAt, err := a.tokenSvc.GenerateAccessToken(ctx, user.Username)
	if err != nil {
		log.Error(ctx, msgErrGenerateAccessToken, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxGeneratingAccessToken, services.ErrTokenGenerationFailed)
	}

	log.Info(ctx, msgUserLoggedIn, zap.Int64("userID", user.ID))
	return &services.AccessToken{
		Token:     token,
		TokenType: services.TokenType,
		ExpiresAt: expiresAt,
	}, nil
}

// burnVerification выполняет одну проверку пароля против фиктивного хэша,
// чтобы вход под несуществующим именем занимал столько же времени.
func (a *AuthUseCaseImpl) burnVerification(ctx context.Context, password string) {
	a.dummyOnce.Do(func() {
		hash, err := a.passwordSvc.Hash(ctx, dummyPassword)
		if err == nil {
			a.dummyHash = hash
		}
	})
	if a.dummyHash == "" || password == "" {
		return
	}
	_, _ = a.passwordSvc.Verify(ctx, password, a.dummyHash)
}
