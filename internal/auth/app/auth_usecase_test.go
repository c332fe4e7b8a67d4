package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"notekeeper/internal/auth/app"
	"notekeeper/internal/auth/domain/entities"
	"notekeeper/internal/auth/domain/services"
)

var errDatabaseConnection = errors.New("database connection error")

func TestRegister(t *testing.T) {
	now := time.Now()
	created := &entities.User{ID: 1, Username: "alice", Email: "alice@example.com", PasswordHash: "hashed", CreatedAt: now}

	tests := []struct {
		name        string
		username    string
		email       string
		password    string
		setupMocks  func(repo *mockUserRepository, pw *mockPasswordService)
		expected    *entities.User
		expectedErr error
	}{
		{
			name:     "success",
			username: "alice",
			email:    "alice@example.com",
			password: "pw1",
			setupMocks: func(repo *mockUserRepository, pw *mockPasswordService) {
				repo.On("FindByUsername", mock.Anything, "alice").Return(nil, entities.ErrUserNotFound).Once()
				pw.On("Hash", mock.Anything, "pw1").Return("hashed", nil).Once()
				repo.On("Create", mock.Anything, mock.MatchedBy(func(u *entities.User) bool {
					return u.Username == "alice" && u.Email == "alice@example.com" && u.PasswordHash == "hashed"
				})).Return(created, nil).Once()
			},
			expected: created,
		},
		{
			name:        "empty username",
			email:       "alice@example.com",
			password:    "pw1",
			setupMocks:  func(*mockUserRepository, *mockPasswordService) {},
			expectedErr: entities.ErrEmptyUsername,
		},
		{
			name:        "empty email",
			username:    "alice",
			password:    "pw1",
			setupMocks:  func(*mockUserRepository, *mockPasswordService) {},
			expectedErr: entities.ErrEmptyEmail,
		},
		{
			name:     "email is not format checked",
			username: "alice",
			email:    "alice",
			password: "pw1",
			setupMocks: func(repo *mockUserRepository, pw *mockPasswordService) {
				repo.On("FindByUsername", mock.Anything, "alice").Return(nil, entities.ErrUserNotFound).Once()
				pw.On("Hash", mock.Anything, "pw1").Return("hashed", nil).Once()
				repo.On("Create", mock.Anything, mock.MatchedBy(func(u *entities.User) bool {
					return u.Email == "alice"
				})).Return(created, nil).Once()
			},
			expected: created,
		},
		{
			name:        "password longer than bcrypt accepts",
			username:    "alice",
			email:       "alice@example.com",
			password:    strings.Repeat("p", entities.MaxPasswordBytes+1),
			setupMocks:  func(*mockUserRepository, *mockPasswordService) {},
			expectedErr: entities.ErrPasswordTooLong,
		},
		{
			name:        "empty password",
			username:    "alice",
			email:       "alice@example.com",
			setupMocks:  func(*mockUserRepository, *mockPasswordService) {},
			expectedErr: entities.ErrEmptyPassword,
		},
		{
			name:     "username taken",
			username: "alice",
			email:    "alice@example.com",
			password: "pw1",
			setupMocks: func(repo *mockUserRepository, _ *mockPasswordService) {
				repo.On("FindByUsername", mock.Anything, "alice").Return(created, nil).Once()
			},
			expectedErr: services.ErrUsernameAlreadyExists,
		},
		{
			name:     "username taken concurrently",
			username: "alice",
			email:    "alice@example.com",
			password: "pw1",
			setupMocks: func(repo *mockUserRepository, pw *mockPasswordService) {
				repo.On("FindByUsername", mock.Anything, "alice").Return(nil, entities.ErrUserNotFound).Once()
				pw.On("Hash", mock.Anything, "pw1").Return("hashed", nil).Once()
				repo.On("Create", mock.Anything, mock.Anything).Return(nil, services.ErrUsernameAlreadyExists).Once()
			},
			expectedErr: services.ErrUsernameAlreadyExists,
		},
		{
			name:     "lookup failure",
			username: "alice",
			email:    "alice@example.com",
			password: "pw1",
			setupMocks: func(repo *mockUserRepository, _ *mockPasswordService) {
				repo.On("FindByUsername", mock.Anything, "alice").Return(nil, errDatabaseConnection).Once()
			},
			expectedErr: errDatabaseConnection,
		},
		{
			name:     "hash failure",
			username: "alice",
			email:    "alice@example.com",
			password: "pw1",
			setupMocks: func(repo *mockUserRepository, pw *mockPasswordService) {
				repo.On("FindByUsername", mock.Anything, "alice").Return(nil, entities.ErrUserNotFound).Once()
				pw.On("Hash", mock.Anything, "pw1").Return("", services.ErrHashingFailed).Once()
			},
			expectedErr: services.ErrHashingFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockUserRepository)
			pw := new(mockPasswordService)
			tokens := new(mockTokenService)
			tt.setupMocks(repo, pw)

			uc := app.NewAuthUseCase(repo, pw, tokens)
			user, err := uc.Register(context.Background(), tt.username, tt.email, tt.password)

			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, user)
			}

			repo.AssertExpectations(t)
			pw.AssertExpectations(t)
			tokens.AssertExpectations(t)
		})
	}
}

func TestLogin(t *testing.T) {
	expiry := time.Now().Add(30 * time.Minute)
	user := &entities.User{ID: 1, Username: "alice", Email: "alice@example.com", PasswordHash: "hashed"}

	t.Run("success", func(t *testing.T) {
		repo := new(mockUserRepository)
		pw := new(mockPasswordService)
		tokens := new(mockTokenService)

		repo.On("FindByUsername", mock.Anything, "alice").Return(user, nil).Once()
		pw.On("Verify", mock.Anything, "pw1", "hashed").Return(true, nil).Once()
		tokens.On("GenerateAccessToken", mock.Anything, "alice").Return("token-123", expiry, nil).Once()

		uc := app.NewAuthUseCase(repo, pw, tokens)
		token, err := uc.Login(context.Background(), "alice", "pw1")

		require.NoError(t, err)
		assert.Equal(t, "token-123", token.Token)
		assert.Equal(t, "bearer", token.TokenType)
		assert.Equal(t, expiry, token.ExpiresAt)
		repo.AssertExpectations(t)
		pw.AssertExpectations(t)
		tokens.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(mockUserRepository)
		pw := new(mockPasswordService)
		tokens := new(mockTokenService)

		repo.On("FindByUsername", mock.Anything, "alice").Return(user, nil).Once()
		pw.On("Verify", mock.Anything, "bad", "hashed").Return(false, nil).Once()

		uc := app.NewAuthUseCase(repo, pw, tokens)
		_, err := uc.Login(context.Background(), "alice", "bad")

		require.ErrorIs(t, err, services.ErrInvalidCredentials)
		tokens.AssertNotCalled(t, "GenerateAccessToken", mock.Anything, mock.Anything)
	})

	t.Run("unknown user still verifies once", func(t *testing.T) {
		repo := new(mockUserRepository)
		pw := new(mockPasswordService)
		tokens := new(mockTokenService)

		repo.On("FindByUsername", mock.Anything, "ghost").Return(nil, entities.ErrUserNotFound).Twice()
		pw.On("Hash", mock.Anything, mock.Anything).Return("dummy-hash", nil).Once()
		pw.On("Verify", mock.Anything, "pw1", "dummy-hash").Return(false, nil).Twice()

		uc := app.NewAuthUseCase(repo, pw, tokens)
		_, err := uc.Login(context.Background(), "ghost", "pw1")
		require.ErrorIs(t, err, services.ErrInvalidCredentials)

		_, err = uc.Login(context.Background(), "ghost", "pw1")
		require.ErrorIs(t, err, services.ErrInvalidCredentials)

		repo.AssertExpectations(t)
		pw.AssertExpectations(t)
	})

	t.Run("unknown user and wrong password are indistinguishable", func(t *testing.T) {
		repo := new(mockUserRepository)
		pw := new(mockPasswordService)
		tokens := new(mockTokenService)

		repo.On("FindByUsername", mock.Anything, "ghost").Return(nil, entities.ErrUserNotFound).Once()
		repo.On("FindByUsername", mock.Anything, "alice").Return(user, nil).Once()
		pw.On("Hash", mock.Anything, mock.Anything).Return("dummy-hash", nil).Once()
		pw.On("Verify", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)

		uc := app.NewAuthUseCase(repo, pw, tokens)
		_, errUnknown := uc.Login(context.Background(), "ghost", "pw1")
		_, errWrong := uc.Login(context.Background(), "alice", "pw1")

		assert.Equal(t, errUnknown.Error(), errWrong.Error())
	})

	t.Run("storage failure", func(t *testing.T) {
		repo := new(mockUserRepository)
		pw := new(mockPasswordService)
		tokens := new(mockTokenService)

		repo.On("FindByUsername", mock.Anything, "alice").Return(nil, errDatabaseConnection).Once()

		uc := app.NewAuthUseCase(repo, pw, tokens)
		_, err := uc.Login(context.Background(), "alice", "pw1")

		require.ErrorIs(t, err, errDatabaseConnection)
		assert.NotErrorIs(t, err, services.ErrInvalidCredentials)
	})

	t.Run("token generation failure", func(t *testing.T) {
		repo := new(mockUserRepository)
		pw := new(mockPasswordService)
		tokens := new(mockTokenService)

		repo.On("FindByUsername", mock.Anything, "alice").Return(user, nil).Once()
		pw.On("Verify", mock.Anything, "pw1", "hashed").Return(true, nil).Once()
		tokens.On("GenerateAccessToken", mock.Anything, "alice").
			Return("", time.Time{}, services.ErrGeneratingJWTToken).Once()

		uc := app.NewAuthUseCase(repo, pw, tokens)
		_, err := uc.Login(context.Background(), "alice", "pw1")

		require.ErrorIs(t, err, services.ErrTokenGenerationFailed)
	})
}
