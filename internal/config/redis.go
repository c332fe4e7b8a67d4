package config

import (
	"time"

	redisdb "notekeeper/pkg/db/redis"
)

// RedisConfig представляет конфигурацию кэша заметок в Redis.
type RedisConfig struct {
	Enabled        bool          `yaml:"enabled" env:"NOTEKEEPER_REDIS_ENABLED" env-default:"false"`
	Host           string        `yaml:"host" env:"NOTEKEEPER_REDIS_HOST" env-default:"localhost"`
	Port           int           `yaml:"port" env:"NOTEKEEPER_REDIS_PORT" env-default:"6379"`
	Password       string        `yaml:"password" env:"NOTEKEEPER_REDIS_PASSWORD" env-default:""`
	DB             int           `yaml:"db" env:"NOTEKEEPER_REDIS_DB" env-default:"0"`
	PoolSize       int           `yaml:"pool_size" env:"NOTEKEEPER_REDIS_POOL_SIZE" env-default:"10"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"NOTEKEEPER_REDIS_CONNECT_TIMEOUT" env-default:"5s"`
	Timeout        time.Duration `yaml:"timeout" env:"NOTEKEEPER_REDIS_TIMEOUT" env-default:"3s"`
	TTL            time.Duration `yaml:"ttl" env:"NOTEKEEPER_REDIS_TTL" env-default:"5m"`
}

// ClientConfig преобразует настройки в конфигурацию клиента pkg/db/redis.
func (c *RedisConfig) ClientConfig() *redisdb.Config {
	return &redisdb.Config{
		Host:           c.Host,
		Port:           c.Port,
		Password:       c.Password,
		DB:             c.DB,
		PoolSize:       c.PoolSize,
		ConnectTimeout: c.ConnectTimeout,
		Timeout:        c.Timeout,
	}
}
