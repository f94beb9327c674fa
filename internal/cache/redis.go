package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Config holds Redis connection configuration
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// RedisCache caches player-id resolutions and series-mapping lookups between
// runs. A nil *RedisCache is a valid disabled cache: every method no-ops, so
// the pipeline runs unchanged when Redis is unavailable.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info().Str("addr", client.Options().Addr).Msg("Redis cache connected")
	return &RedisCache{client: client}, nil
}

// Get returns the cached value for key, or ("", false) on miss or when the
// cache is disabled.
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	if c == nil {
		return "", false
	}
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Set stores value under key with the given TTL. Failures are logged, not
// propagated: the cache is advisory.
func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("Cache set failed")
	}
}

// Close closes the underlying client.
func (c *RedisCache) Close() {
	if c == nil {
		return
	}
	if err := c.client.Close(); err != nil {
		log.Debug().Err(err).Msg("Failed to close redis client")
	}
}
