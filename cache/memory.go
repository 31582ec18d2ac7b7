package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// Compile-time interface check.
var _ Cache = (*MemoryCache)(nil)

type entry struct {
	value     int64
	expiresAt time.Time // zero means no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryCache is an in-memory Cache holding at most a fixed number of keys,
// evicting the least recently used. It is safe for concurrent use.
type MemoryCache struct {
	mu  sync.Mutex
	lru *simplelru.LRU[string, entry]
	now func() time.Time
}

// NewMemoryCache creates a cache that holds up to size keys.
func NewMemoryCache(size int) (*MemoryCache, error) {
	lru, err := simplelru.NewLRU[string, entry](size, nil)
	if err != nil {
		return nil, fmt.Errorf("likes/cache: new lru: %w", err)
	}
	return &MemoryCache{lru: lru, now: time.Now}, nil
}

// Get returns the value for key if it is present and not expired.
func (m *MemoryCache) Get(_ context.Context, key string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.lru.Get(key)
	if !ok {
		return 0, false, nil
	}
	if e.expired(m.now()) {
		m.lru.Remove(key)
		return 0, false, nil
	}
	return e.value, true, nil
}

// Set stores the larger of value and the live cached value.
func (m *MemoryCache) Set(_ context.Context, key string, value int64, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if e, ok := m.lru.Peek(key); ok && !e.expired(now) && e.value > value {
		value = e.value
	}

	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}
	m.lru.Add(key, e)
	return nil
}

// Delete removes keys from the cache.
func (m *MemoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		m.lru.Remove(k)
	}
	return nil
}

// Len returns the number of entries, including expired ones not yet evicted.
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.lru.Len()
}

// Close is a no-op for the in-memory cache.
func (m *MemoryCache) Close() error {
	return nil
}
