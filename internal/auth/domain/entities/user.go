package entities

import (
	"errors"
	"time"
)

// Определяем ошибки домена пользователя как константы.
var (
	ErrEmptyEmail      = errors.New("email cannot be empty")
	ErrEmptyUsername   = errors.New("username cannot be empty")
	ErrEmptyPassword   = errors.New("password cannot be empty")
	ErrPasswordTooLong = errors.New("password cannot be longer than 72 bytes")
	ErrUserNotFound    = errors.New("user not found")
)

// MaxPasswordBytes - предел длины пароля, который bcrypt способен захэшировать.
const MaxPasswordBytes = 72

// User представляет основную сущность домена пользователя.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
