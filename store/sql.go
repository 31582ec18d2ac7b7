package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
)

// queries holds the dialect-specific statements shared by the SQL stores.
type queries struct {
	itemLikes     string
	sessionLikes  string
	aggregate     string
	upsertSession string // args: id, delta, limit; returns no row when the cap would be exceeded
	upsertItem    string // args: slug, delta
}

// sqlStore implements Store on top of database/sql. Dialects differ only in
// their statements and in which driver errors signal a retryable conflict.
type sqlStore struct {
	db        *sql.DB
	q         queries
	retryable func(error) bool
}

func (s *sqlStore) ItemLikes(ctx context.Context, itemKey string) (int64, error) {
	n, err := s.scalar(ctx, s.q.itemLikes, itemKey)
	if err != nil {
		return 0, fmt.Errorf("likes/store: item likes: %w", err)
	}
	return n, nil
}

func (s *sqlStore) SessionLikes(ctx context.Context, sessionID string) (int64, error) {
	n, err := s.scalar(ctx, s.q.sessionLikes, sessionID)
	if err != nil {
		return 0, fmt.Errorf("likes/store: session likes: %w", err)
	}
	return n, nil
}

func (s *sqlStore) AggregateLikes(ctx context.Context) (int64, error) {
	n, err := s.scalar(ctx, s.q.aggregate)
	if err != nil {
		return 0, fmt.Errorf("likes/store: aggregate likes: %w", err)
	}
	return n, nil
}

// TryIncrement runs the guarded upserts in one transaction, retrying when the
// database reports a write conflict.
func (s *sqlStore) TryIncrement(ctx context.Context, itemKey, sessionID string, delta, limit int64) (Totals, error) {
	if delta > limit {
		current, err := s.SessionLikes(ctx, sessionID)
		if err != nil {
			return Totals{}, err
		}
		return Totals{}, &LimitError{Current: current, Delta: delta, Limit: limit}
	}

	var totals Totals
	err := retry.Do(ctx, conflictBackoff(), func(ctx context.Context) error {
		t, err := s.increment(ctx, itemKey, sessionID, delta, limit)
		if err != nil {
			if s.retryable(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		totals = t
		return nil
	})

	var limErr *LimitError
	if errors.As(err, &limErr) {
		return Totals{}, limErr
	}
	if err != nil {
		return Totals{}, fmt.Errorf("likes/store: increment: %w", err)
	}
	return totals, nil
}

func (s *sqlStore) increment(ctx context.Context, itemKey, sessionID string, delta, limit int64) (Totals, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Totals{}, err
	}
	defer tx.Rollback()

	var t Totals
	err = tx.QueryRowContext(ctx, s.q.upsertSession, sessionID, delta, limit).Scan(&t.Session)
	if errors.Is(err, sql.ErrNoRows) {
		// The guard rejected the update; report what the session holds.
		var current int64
		if err := tx.QueryRowContext(ctx, s.q.sessionLikes, sessionID).Scan(&current); err != nil {
			return Totals{}, err
		}
		return Totals{}, &LimitError{Current: current, Delta: delta, Limit: limit}
	}
	if err != nil {
		return Totals{}, err
	}

	if err := tx.QueryRowContext(ctx, s.q.upsertItem, itemKey, delta).Scan(&t.Item); err != nil {
		return Totals{}, err
	}

	return t, tx.Commit()
}

func (s *sqlStore) scalar(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return n, err
}

// Close closes the underlying database connection.
func (s *sqlStore) Close() error {
	return s.db.Close()
}

func conflictBackoff() retry.Backoff {
	b := retry.NewExponential(5 * time.Millisecond)
	b = retry.WithJitterPercent(20, b)
	return retry.WithMaxRetries(5, b)
}
