package config

import "time"

// JWTConfig содержит настройки для JWT токенов и хэширования паролей.
type JWTConfig struct {
	SecretKey      string        `yaml:"secret_key" env:"NOTEKEEPER_JWT_SECRET_KEY" env-default:"change-me"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"NOTEKEEPER_JWT_ACCESS_TOKEN_TTL" env-default:"30m"`
	BCryptCost     int           `yaml:"bcrypt_cost" env:"NOTEKEEPER_JWT_BCRYPT_COST" env-default:"10"`
}
