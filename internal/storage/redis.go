// Package storage provides the optional Redis document cache used by the CDN client.
package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every cached document.
const KeyPrefix = "ddextract:doc:"

// RedisClient wraps go-redis client. A disabled client behaves as an
// always-empty cache so callers never need to nil-check it.
type RedisClient struct {
	client  *redis.Client
	enabled bool
	ttl     time.Duration
}

// NewRedisClient creates a new Redis client using go-redis.
// An empty URL, an unparsable URL or a failed ping all yield a disabled client.
func NewRedisClient(ctx context.Context, redisURL string, ttl time.Duration, log *slog.Logger) *RedisClient {
	if redisURL == "" {
		log.Debug("redis not configured, document cache disabled")
		return &RedisClient{enabled: false}
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn("failed to parse REDIS_URL, document cache disabled", "error", err)
		return &RedisClient{enabled: false}
	}

	opt.PoolSize = 2
	opt.MinIdleConns = 1
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis connection failed, document cache disabled", "error", err)
		_ = client.Close()
		return &RedisClient{enabled: false}
	}

	log.Info("redis connected", "ttl", ttl)
	return &RedisClient{
		client:  client,
		enabled: true,
		ttl:     ttl,
	}
}

// Enabled reports whether the cache is backed by a live Redis connection.
func (r *RedisClient) Enabled() bool {
	return r != nil && r.enabled
}

// Get retrieves a cached document. A miss returns an empty string and no error.
func (r *RedisClient) Get(ctx context.Context, key string) (string, error) {
	if !r.Enabled() {
		return "", nil
	}
	val, err := r.client.Get(ctx, KeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

// Set stores a document with the configured TTL (zero means no expiration).
func (r *RedisClient) Set(ctx context.Context, key string, value string) error {
	if !r.Enabled() {
		return nil
	}
	return r.client.Set(ctx, KeyPrefix+key, value, r.ttl).Err()
}

// Delete removes a cached document.
func (r *RedisClient) Delete(ctx context.Context, key string) error {
	if !r.Enabled() {
		return nil
	}
	return r.client.Del(ctx, KeyPrefix+key).Err()
}

// Close releases the underlying connection pool.
func (r *RedisClient) Close() error {
	if !r.Enabled() {
		return nil
	}
	return r.client.Close()
}
