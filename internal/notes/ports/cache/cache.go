// Package cache defines the cache port used by the note read cache.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss возвращается, если ключ отсутствует в кэше.
var ErrCacheMiss = errors.New("cache miss")

// Cache определяет интерфейс для работы с кэшем.
//
// Каждый ключ имеет счетчик поколений. Invalidate увеличивает его, а SetIfGeneration
// пишет значение, только если счетчик не изменился с момента чтения Generation.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Generation(ctx context.Context, key string) (int64, error)
	SetIfGeneration(ctx context.Context, key string, generation int64, value interface{}, ttl time.Duration) (bool, error)
	Invalidate(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}
