package cache

import (
	"context"
	"time"
)

// Cache - основной интерфейс для работы с кэшем
type Cache interface {
	// Базовые операции
	Set(ctx context.Context, key string, value interface{}) error
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)

	// Строковые операции
	SetString(ctx context.Context, key string, value string) error
	GetString(ctx context.Context, key string) (string, error)

	// Управление соединением
	HealthCheck(ctx context.Context) error
	Close() error
}

// RateLimiter - интерфейс для rate limiting
type RateLimiter interface {
	IncrementRateLimit(ctx context.Context, key string, window time.Duration) (int64, error)
}
