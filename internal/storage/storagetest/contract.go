// Package storagetest provides the behaviour every storage.SessionStore driver has to satisfy.
package storagetest

import (
	"context"
	"github.com/skybi/tenote/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

// Factory creates a fresh, initialized and empty session store for a single sub test
type Factory func(t *testing.T) storage.SessionStore

// RunContract runs the session store contract tests against the stores built by factory
func RunContract(t *testing.T, factory Factory) {
	t.Run("missing key", func(t *testing.T) {
		store := factory(t)
		val, ok, err := store.Get(context.Background(), "token")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, val)
	})

	t.Run("set and get", func(t *testing.T) {
		store := factory(t)
		ctx := context.Background()
		require.NoError(t, store.Set(ctx, "token", "t1"))
		require.NoError(t, store.Set(ctx, "role", "member"))

		val, ok, err := store.Get(ctx, "token")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "t1", val)

		val, ok, err = store.Get(ctx, "role")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "member", val)
	})

	t.Run("overwrite", func(t *testing.T) {
		store := factory(t)
		ctx := context.Background()
		require.NoError(t, store.Set(ctx, "token", "t1"))
		require.NoError(t, store.Set(ctx, "token", "t2"))

		val, ok, err := store.Get(ctx, "token")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "t2", val)
	})

	t.Run("empty value is present", func(t *testing.T) {
		store := factory(t)
		ctx := context.Background()
		require.NoError(t, store.Set(ctx, "slug", ""))

		val, ok, err := store.Get(ctx, "slug")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, val)
	})

	t.Run("clear all", func(t *testing.T) {
		store := factory(t)
		ctx := context.Background()
		for _, key := range []string{"token", "role", "email", "tenant"} {
			require.NoError(t, store.Set(ctx, key, "value-"+key))
		}

		require.NoError(t, store.ClearAll(ctx))
		for _, key := range []string{"token", "role", "email", "tenant"} {
			_, ok, err := store.Get(ctx, key)
			require.NoError(t, err)
			assert.False(t, ok, key)
		}

		// Clearing an empty store is fine as well
		require.NoError(t, store.ClearAll(ctx))
	})
}
