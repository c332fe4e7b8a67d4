package config

import "errors"

// Ошибки валидации конфигурации.
var (
	ErrUnknownStorageDriver = errors.New("unknown storage driver")
	ErrEmptySecretKey       = errors.New("jwt secret key cannot be empty")
	ErrInvalidTokenTTL      = errors.New("access token ttl must be positive")
)
