package cache

import (
	"context"
	"time"
)

// Cache is a key-value store for integer counters.
type Cache interface {
	// Get returns the cached value for key. ok is false on a miss; a cached
	// zero is a hit.
	Get(ctx context.Context, key string) (value int64, ok bool, err error)

	// Set stores value under key unless a larger value is already cached.
	// A ttl of zero means the entry does not expire.
	Set(ctx context.Context, key string, value int64, ttl time.Duration) error

	// Delete removes keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	// Close releases any resources held by the cache.
	Close() error
}
