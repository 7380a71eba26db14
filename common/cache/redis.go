package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dialwise/directory/common/logger"
)

// RedisCache is a Redis-backed cache implementation, used when multiple
// directory instances share one lookup cache
type RedisCache struct {
	redis *redis.Client
	log   *logger.Logger
}

// NewRedisCache creates a Redis-backed cache
func NewRedisCache(client *redis.Client, log *logger.Logger) *RedisCache {
	return &RedisCache{
		redis: client,
		log:   log,
	}
}

// Get retrieves a value by key
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.log.Debug("redis GET key not found", "key", key)
		return nil, false, nil
	}
	if err != nil {
		c.log.Error("redis GET failed", "key", key, "error", err)
		return nil, false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	c.log.Debug("redis GET", "key", key)
	return val, true, nil
}

// Set stores a value with TTL
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.redis.Set(ctx, key, value, ttl).Err(); err != nil {
		c.log.Error("redis SET failed", "key", key, "error", err)
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	c.log.Debug("redis SET", "key", key, "ttl", ttl)
	return nil
}

// Delete removes a key
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.redis.Del(ctx, key).Err(); err != nil {
		c.log.Error("redis DEL failed", "key", key, "error", err)
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	c.log.Debug("redis DEL", "key", key)
	return nil
}

// Close closes the underlying Redis connection
func (c *RedisCache) Close() error {
	return c.redis.Close()
}
