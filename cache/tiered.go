package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Compile-time interface check.
var _ Cache = (*TieredCache)(nil)

// TieredCache wraps a shared cache (usually Redis) with a local cache.
// Writes go to both tiers; reads check the local tier first and fall back to
// the shared tier on a miss, backfilling the local tier.
//
// Local entries live for at most localTTL, which bounds how long one process
// can serve a value another process has since replaced or deleted.
type TieredCache struct {
	local    Cache
	shared   Cache
	localTTL time.Duration
}

// NewTieredCache creates a TieredCache in front of shared. The local tier
// holds up to size keys for at most localTTL each.
func NewTieredCache(shared Cache, size int, localTTL time.Duration) (*TieredCache, error) {
	local, err := NewMemoryCache(size)
	if err != nil {
		return nil, err
	}
	return &TieredCache{local: local, shared: shared, localTTL: localTTL}, nil
}

// Get reads the local tier first, then the shared tier. A failing local tier
// is reported as an error even when the shared tier answers.
func (t *TieredCache) Get(ctx context.Context, key string) (int64, bool, error) {
	v, ok, localErr := t.local.Get(ctx, key)
	if localErr == nil && ok {
		return v, true, nil
	}

	v, ok, err := t.shared.Get(ctx, key)
	if err != nil {
		return 0, false, errors.Join(localErr, err)
	}
	if ok && localErr == nil {
		localErr = t.local.Set(ctx, key, v, t.localTTL)
	}
	if localErr != nil {
		return 0, false, fmt.Errorf("likes/cache: local tier: %w", localErr)
	}
	return v, ok, nil
}

// Set writes through to the shared tier, then the local tier. The local tier
// is left untouched if the shared write fails.
func (t *TieredCache) Set(ctx context.Context, key string, value int64, ttl time.Duration) error {
	if err := t.shared.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	return t.local.Set(ctx, key, value, t.boundTTL(ttl))
}

// Delete removes keys from both tiers.
func (t *TieredCache) Delete(ctx context.Context, keys ...string) error {
	return errors.Join(t.local.Delete(ctx, keys...), t.shared.Delete(ctx, keys...))
}

// Close closes the shared tier. The local tier needs no cleanup.
func (t *TieredCache) Close() error {
	return t.shared.Close()
}

func (t *TieredCache) boundTTL(ttl time.Duration) time.Duration {
	if t.localTTL > 0 && (ttl <= 0 || ttl > t.localTTL) {
		return t.localTTL
	}
	return ttl
}
