package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Compile-time interface check.
var _ Cache = (*RedisCache)(nil)

// RedisCache is a Cache backed by Redis. Each counter is a plain string key,
// optionally namespaced by a prefix.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisCache creates a Redis-backed cache. prefix is prepended to every key
// and may be empty.
func NewRedisCache(client redis.UniversalClient, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

// setMaxScript stores the larger of the cached and offered values.
//
// KEYS[1] = counter key
// ARGV[1] = value
// ARGV[2] = ttl in milliseconds, 0 for none
var setMaxScript = redis.NewScript(`
local val = tonumber(ARGV[1])
local ttl = tonumber(ARGV[2])

local cur = redis.call("GET", KEYS[1])
if cur and tonumber(cur) > val then
    val = tonumber(cur)
end

if ttl > 0 then
    redis.call("SET", KEYS[1], val, "PX", ttl)
else
    redis.call("SET", KEYS[1], val)
end
return val
`)

// Get returns the counter stored under key.
func (r *RedisCache) Get(ctx context.Context, key string) (int64, bool, error) {
	v, err := r.client.Get(ctx, r.key(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("likes/cache/redis: get: %w", err)
	}
	return v, true, nil
}

// Set atomically stores the larger of value and the cached counter.
func (r *RedisCache) Set(ctx context.Context, key string, value int64, ttl time.Duration) error {
	err := setMaxScript.Run(ctx, r.client, []string{r.key(key)}, value, ttl.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("likes/cache/redis: set: %w", err)
	}
	return nil
}

// Delete removes keys.
func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	if err := r.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("likes/cache/redis: delete: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

func (r *RedisCache) key(key string) string {
	return r.prefix + key
}
