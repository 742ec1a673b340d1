package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

var _ Cache = (*LRUCache)(nil)

// LRUCache - ограниченный по размеру in-memory кэш с TTL.
// Запасной вариант на случай недоступности Redis: сервис работает
// дальше с локальным кэшем вместо отключения кэширования совсем.
type LRUCache struct {
	entries *expirable.LRU[string, []byte]
}

const defaultLRUSize = 4096

// NewLRUCache создает in-memory кэш на size записей с общим TTL.
func NewLRUCache(size int, ttl time.Duration) *LRUCache {
	if size <= 0 {
		size = defaultLRUSize
	}
	return &LRUCache{
		entries: expirable.NewLRU[string, []byte](size, nil, ttl),
	}
}

func (c *LRUCache) Set(ctx context.Context, key string, value interface{}) error {
	return c.SetWithTTL(ctx, key, value, 0)
}

// SetWithTTL сохраняет значение. Кастомный ttl игнорируется:
// expirable.LRU поддерживает только общий TTL на весь кэш.
func (c *LRUCache) SetWithTTL(ctx context.Context, key string, value interface{}, _ time.Duration) error {
	if key == "" {
		return NewCacheError("set", key, ErrInvalidCacheKey)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return NewCacheError("set", key, err)
	}

	c.entries.Add(key, data)
	return nil
}

func (c *LRUCache) Get(ctx context.Context, key string, dest interface{}) error {
	if key == "" {
		return NewCacheError("get", key, ErrInvalidCacheKey)
	}

	data, ok := c.entries.Get(key)
	if !ok {
		return ErrCacheMiss
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return NewCacheError("get", key, err)
	}
	return nil
}

func (c *LRUCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if key != "" {
			c.entries.Remove(key)
		}
	}
	return nil
}

func (c *LRUCache) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, NewCacheError("exists", key, ErrInvalidCacheKey)
	}
	return c.entries.Contains(key), nil
}

func (c *LRUCache) SetString(ctx context.Context, key string, value string) error {
	if key == "" {
		return NewCacheError("set", key, ErrInvalidCacheKey)
	}
	c.entries.Add(key, []byte(value))
	return nil
}

func (c *LRUCache) GetString(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", NewCacheError("get", key, ErrInvalidCacheKey)
	}

	data, ok := c.entries.Get(key)
	if !ok {
		return "", ErrCacheMiss
	}
	return string(data), nil
}

func (c *LRUCache) HealthCheck(ctx context.Context) error {
	return nil
}

func (c *LRUCache) Close() error {
	c.entries.Purge()
	return nil
}
