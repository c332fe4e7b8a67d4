package config

// RateLimitConfig задает ограничение частоты запросов к /auth на один IP.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps" env:"NOTEKEEPER_RATE_LIMIT_RPS" env-default:"5"`
	Burst int     `yaml:"burst" env:"NOTEKEEPER_RATE_LIMIT_BURST" env-default:"10"`
}
