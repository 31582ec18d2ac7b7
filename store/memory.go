package store

import (
	"context"
	"sync"
)

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-memory Store implementation.
// It is safe for concurrent use. Counters are lost on process restart.
type MemoryStore struct {
	mu       sync.Mutex
	items    map[string]int64
	sessions map[string]int64
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:    make(map[string]int64),
		sessions: make(map[string]int64),
	}
}

// ItemLikes returns the total for itemKey.
func (m *MemoryStore) ItemLikes(_ context.Context, itemKey string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.items[itemKey], nil
}

// SessionLikes returns the total for sessionID.
func (m *MemoryStore) SessionLikes(_ context.Context, sessionID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.sessions[sessionID], nil
}

// AggregateLikes sums every session total.
func (m *MemoryStore) AggregateLikes(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sum int64
	for _, n := range m.sessions {
		sum += n
	}
	return sum, nil
}

// TryIncrement checks the cap and applies delta under a single lock.
func (m *MemoryStore) TryIncrement(ctx context.Context, itemKey, sessionID string, delta, limit int64) (Totals, error) {
	if err := ctx.Err(); err != nil {
		return Totals{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.sessions[sessionID]
	if current+delta > limit {
		return Totals{}, &LimitError{Current: current, Delta: delta, Limit: limit}
	}

	m.sessions[sessionID] = current + delta
	m.items[itemKey] += delta

	return Totals{Item: m.items[itemKey], Session: m.sessions[sessionID]}, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
