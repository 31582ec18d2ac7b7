package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLimit = 3

// runStoreSuite exercises the Store contract against any backend.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("UnseenRowsAreZero", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		item, err := s.ItemLikes(ctx, "post-1")
		require.NoError(t, err)
		assert.Zero(t, item)

		session, err := s.SessionLikes(ctx, "post-1___abc")
		require.NoError(t, err)
		assert.Zero(t, session)

		total, err := s.AggregateLikes(ctx)
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("IncrementCreatesRows", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		got, err := s.TryIncrement(ctx, "post-1", "post-1___a", 2, testLimit)
		require.NoError(t, err)
		assert.Equal(t, Totals{Item: 2, Session: 2}, got)

		got, err = s.TryIncrement(ctx, "post-1", "post-1___a", 1, testLimit)
		require.NoError(t, err)
		assert.Equal(t, Totals{Item: 3, Session: 3}, got)

		item, err := s.ItemLikes(ctx, "post-1")
		require.NoError(t, err)
		assert.Equal(t, int64(3), item)
	})

	t.Run("RejectsPastLimitWithoutWriting", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.TryIncrement(ctx, "post-1", "post-1___a", 2, testLimit)
		require.NoError(t, err)

		_, err = s.TryIncrement(ctx, "post-1", "post-1___a", 2, testLimit)
		require.ErrorIs(t, err, ErrLimitExceeded)

		var limErr *LimitError
		require.True(t, errors.As(err, &limErr))
		assert.Equal(t, int64(2), limErr.Current)
		assert.Equal(t, int64(2), limErr.Delta)

		item, err := s.ItemLikes(ctx, "post-1")
		require.NoError(t, err)
		assert.Equal(t, int64(2), item)

		session, err := s.SessionLikes(ctx, "post-1___a")
		require.NoError(t, err)
		assert.Equal(t, int64(2), session)
	})

	t.Run("RejectsOversizedFirstDelta", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.TryIncrement(ctx, "post-1", "post-1___a", testLimit+1, testLimit)
		require.ErrorIs(t, err, ErrLimitExceeded)

		session, err := s.SessionLikes(ctx, "post-1___a")
		require.NoError(t, err)
		assert.Zero(t, session)
	})

	t.Run("ItemTotalSumsSessions", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.TryIncrement(ctx, "post-1", "post-1___a", 3, testLimit)
		require.NoError(t, err)
		_, err = s.TryIncrement(ctx, "post-1", "post-1___b", 1, testLimit)
		require.NoError(t, err)
		_, err = s.TryIncrement(ctx, "post-2", "post-2___a", 2, testLimit)
		require.NoError(t, err)

		item, err := s.ItemLikes(ctx, "post-1")
		require.NoError(t, err)
		assert.Equal(t, int64(4), item)

		total, err := s.AggregateLikes(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(6), total)
	})

	t.Run("ConcurrentIncrementsStopAtLimit", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		const n = 12
		var wg sync.WaitGroup
		errs := make(chan error, n)

		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.TryIncrement(ctx, "post-1", "post-1___a", 1, testLimit)
				errs <- err
			}()
		}

		wg.Wait()
		close(errs)

		var allowed, blocked int
		for err := range errs {
			switch {
			case err == nil:
				allowed++
			case errors.Is(err, ErrLimitExceeded):
				blocked++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}

		assert.Equal(t, testLimit, allowed)
		assert.Equal(t, n-testLimit, blocked)

		session, err := s.SessionLikes(ctx, "post-1___a")
		require.NoError(t, err)
		assert.Equal(t, int64(testLimit), session)

		item, err := s.ItemLikes(ctx, "post-1")
		require.NoError(t, err)
		assert.Equal(t, int64(testLimit), item)
	})
}
