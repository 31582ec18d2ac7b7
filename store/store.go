package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrLimitExceeded is returned by TryIncrement when applying the delta would
// push a session past its cap. Nothing is written when it is returned.
var ErrLimitExceeded = errors.New("likes/store: session limit exceeded")

// LimitError reports the session total that caused a rejected increment.
type LimitError struct {
	Current int64
	Delta   int64
	Limit   int64
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("likes/store: session limit exceeded (%d+%d > %d)", e.Current, e.Delta, e.Limit)
}

func (e *LimitError) Unwrap() error {
	return ErrLimitExceeded
}

// Totals holds the counters after a successful increment.
type Totals struct {
	Item    int64 // new total for the item
	Session int64 // new total for the session
}

// Store defines the interface for durable like counters.
type Store interface {
	// ItemLikes returns the total likes recorded for an item, or 0 if the item
	// has never been liked.
	ItemLikes(ctx context.Context, itemKey string) (int64, error)

	// SessionLikes returns the likes registered by a session, or 0 if unseen.
	SessionLikes(ctx context.Context, sessionID string) (int64, error)

	// AggregateLikes sums likes across every session. It scans all rows and
	// is meant for refilling a cache, not for hot paths.
	AggregateLikes(ctx context.Context) (int64, error)

	// TryIncrement adds delta to both the session and the item as one atomic
	// unit, creating either row on first use. If the session total would
	// exceed limit, it returns a *LimitError and writes nothing.
	TryIncrement(ctx context.Context, itemKey, sessionID string, delta, limit int64) (Totals, error)

	// Close releases any resources held by the store.
	Close() error
}
