package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/redis/go-redis/v9"
)

// redisCache stores carts, checkout forms and product lookups as JSON.
// Keys are namespaced with the configured prefix so several storefronts can
// share one Redis database.
type redisCache struct {
	client     redis.Cmdable
	namespace  string
	defaultTTL time.Duration
}

func NewRedisCache(client redis.Cmdable, cfg *config.CacheConfig) Cache {
	namespace := ""
	if cfg.KeyPrefix != "" {
		namespace = cfg.KeyPrefix + ":"
	}

	return &redisCache{client: client, namespace: namespace, defaultTTL: cfg.DefaultTTL}
}

func (r *redisCache) key(key string) string {
	return r.namespace + key
}

// Get decodes the entry into value. A miss is (false, nil); an entry that no
// longer decodes is reported as ErrCorruptEntry so callers can discard it.
func (r *redisCache) Get(ctx context.Context, key string, value any) (bool, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()

	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("failed to get key %s from redis: %w", key, err)
	}

	if err := json.Unmarshal(data, value); err != nil {
		return false, fmt.Errorf("%w: failed to unmarshal cache data for key %s: %w", ErrCorruptEntry, key, err)
	}

	return true, nil
}

// Set writes value with ttl, or the configured default when ttl <= 0.
func (r *redisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	if ttl <= 0 {
		ttl = r.defaultTTL
	}

	if err := r.client.Set(ctx, r.key(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s in redis: %w", key, err)
	}

	return nil
}

// Delete is idempotent; a missing key is not an error.
func (r *redisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s from redis: %w", key, err)
	}

	return nil
}

// Close leaves the shared client open; main owns its lifecycle.
func (r *redisCache) Close() error {
	return nil
}
