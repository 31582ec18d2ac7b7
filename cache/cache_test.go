package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCacheSuite exercises the Cache contract against any backend.
func runCacheSuite(t *testing.T, newCache func(t *testing.T) Cache) {
	t.Run("MissThenHit", func(t *testing.T) {
		c := newCache(t)
		ctx := context.Background()

		_, ok, err := c.Get(ctx, "item-likes:post-1")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, c.Set(ctx, "item-likes:post-1", 4, 0))

		v, ok, err := c.Get(ctx, "item-likes:post-1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(4), v)
	})

	t.Run("ZeroIsAHit", func(t *testing.T) {
		c := newCache(t)
		ctx := context.Background()

		require.NoError(t, c.Set(ctx, "aggregate", 0, 0))

		v, ok, err := c.Get(ctx, "aggregate")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Zero(t, v)
	})

	t.Run("SetNeverLowers", func(t *testing.T) {
		c := newCache(t)
		ctx := context.Background()

		require.NoError(t, c.Set(ctx, "user-likes:post-1:s", 3, 0))
		require.NoError(t, c.Set(ctx, "user-likes:post-1:s", 1, 0))

		v, _, err := c.Get(ctx, "user-likes:post-1:s")
		require.NoError(t, err)
		assert.Equal(t, int64(3), v)

		require.NoError(t, c.Set(ctx, "user-likes:post-1:s", 5, 0))
		v, _, err = c.Get(ctx, "user-likes:post-1:s")
		require.NoError(t, err)
		assert.Equal(t, int64(5), v)
	})

	t.Run("Delete", func(t *testing.T) {
		c := newCache(t)
		ctx := context.Background()

		require.NoError(t, c.Set(ctx, "a", 1, 0))
		require.NoError(t, c.Set(ctx, "b", 2, 0))
		require.NoError(t, c.Delete(ctx, "a", "b", "missing"))
		require.NoError(t, c.Delete(ctx))

		_, ok, err := c.Get(ctx, "a")
		require.NoError(t, err)
		assert.False(t, ok)

		// A deleted counter may be refilled with a smaller value.
		require.NoError(t, c.Set(ctx, "b", 1, 0))
		v, _, err := c.Get(ctx, "b")
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)
	})
}
