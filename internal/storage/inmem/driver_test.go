package inmem

import (
	"context"
	"github.com/skybi/tenote/internal/storage"
	"github.com/skybi/tenote/internal/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestContract(t *testing.T) {
	storagetest.RunContract(t, func(t *testing.T) storage.SessionStore {
		return New()
	})
}

func TestLen(t *testing.T) {
	driver := New()
	ctx := context.Background()
	require.NoError(t, driver.Set(ctx, "token", "t1"))
	require.NoError(t, driver.Set(ctx, "role", "admin"))
	assert.Equal(t, 2, driver.Len())

	require.NoError(t, driver.ClearAll(ctx))
	assert.Equal(t, 0, driver.Len())
}
