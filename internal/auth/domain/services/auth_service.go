package services

import (
	"errors"
	"time"
)

// Ошибки домена аутентификации.
var (
	ErrInvalidCredentials    = errors.New("invalid username or password")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrUnauthenticated       = errors.New("could not validate credentials")
	ErrTokenGenerationFailed = errors.New("failed to generate access token")
)

// TokenType - тип выдаваемого токена доступа.
const TokenType = "bearer"

// AccessToken представляет выданный токен доступа.
type AccessToken struct {
	Token     string
	TokenType string
	ExpiresAt time.Time
}
