// Package cache содержит кэширование заметок в Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"notekeeper/internal/notes/ports/cache"
	"notekeeper/pkg/logger"
)

// Константы для логирования.
const (
	LogMethodGet             = "get"
	LogMethodGeneration      = "generation"
	LogMethodSetIfGeneration = "set_if_generation"
	LogMethodInvalidate      = "invalidate"

	ErrorFailedToGet        = "failed to get value from redis"
	ErrorFailedToSet        = "failed to set value in redis"
	ErrorFailedToInvalidate = "failed to invalidate value in redis"
	ErrorFailedToEncode     = "failed to encode cache value"
	ErrorFailedToDecode     = "failed to decode cache value"
)

const (
	generationSuffix = ":gen"

	// GenerationTTL - время жизни счетчика поколений. Должно превышать
	// максимальное время между Generation и SetIfGeneration одного чтения.
	GenerationTTL = 24 * time.Hour
)

// setIfGenerationScript пишет значение, только если счетчик поколений равен ожидаемому.
// Отсутствующий счетчик считается нулевым.
var setIfGenerationScript = redis.NewScript(`
local gen = redis.call('GET', KEYS[2])
if not gen then gen = '0' end
if gen ~= ARGV[1] then return 0 end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// RedisCache реализует интерфейс Cache поверх клиента Redis, храня значения в JSON.
type RedisCache struct {
	client     redis.UniversalClient
	defaultTTL time.Duration
}

// NewRedisCache создает кэш поверх уже подключенного клиента.
func NewRedisCache(client redis.UniversalClient, defaultTTL time.Duration) cache.Cache {
	return &RedisCache{client: client, defaultTTL: defaultTTL}
}

// GenerationKey возвращает ключ счетчика поколений для key.
func GenerationKey(key string) string {
	return key + generationSuffix
}

// Get читает значение по ключу в dest. Отсутствие ключа - cache.ErrCacheMiss.
func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return cache.ErrCacheMiss
		}
		logger.Log(ctx).Warn(ctx, ErrorFailedToGet,
			zap.String("method", LogMethodGet), zap.String("key", key), zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToGet, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedToDecode, err)
	}
	return nil
}

// Generation возвращает текущее поколение ключа, 0 если ключ ни разу не сбрасывался.
func (c *RedisCache) Generation(ctx context.Context, key string) (int64, error) {
	gen, err := c.client.Get(ctx, GenerationKey(key)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		logger.Log(ctx).Warn(ctx, ErrorFailedToGet,
			zap.String("method", LogMethodGeneration), zap.String("key", key), zap.Error(err))
		return 0, fmt.Errorf("%s: %w", ErrorFailedToGet, err)
	}
	return gen, nil
}

// SetIfGeneration сохраняет значение, если поколение ключа все еще равно generation.
// Возвращает false, если ключ был сброшен после чтения поколения.
// Нулевой ttl означает TTL по умолчанию.
func (c *RedisCache) SetIfGeneration(
	ctx context.Context, key string, generation int64, value interface{}, ttl time.Duration,
) (bool, error) {
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", ErrorFailedToEncode, err)
	}

	written, err := setIfGenerationScript.Run(ctx, c.client,
		[]string{key, GenerationKey(key)},
		generation, string(raw), ttl.Milliseconds(),
	).Int()
	if err != nil {
		logger.Log(ctx).Warn(ctx, ErrorFailedToSet,
			zap.String("method", LogMethodSetIfGeneration), zap.String("key", key), zap.Error(err))
		return false, fmt.Errorf("%s: %w", ErrorFailedToSet, err)
	}
	return written == 1, nil
}

// Invalidate удаляет значение и увеличивает поколение ключа в одной транзакции.
func (c *RedisCache) Invalidate(ctx context.Context, key string) error {
	genKey := GenerationKey(key)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, GenerationTTL)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		logger.Log(ctx).Warn(ctx, ErrorFailedToInvalidate,
			zap.String("method", LogMethodInvalidate), zap.String("key", key), zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToInvalidate, err)
	}
	return nil
}

// Ping проверяет доступность Redis.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
