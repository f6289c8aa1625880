package file

import (
	"context"
	"github.com/skybi/tenote/internal/storage"
	"github.com/skybi/tenote/internal/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func newDriver(t *testing.T, path string) *Driver {
	t.Helper()
	driver := New(path)
	require.NoError(t, driver.Initialize(context.Background()))
	t.Cleanup(driver.Close)
	return driver
}

func TestContract(t *testing.T) {
	storagetest.RunContract(t, func(t *testing.T) storage.SessionStore {
		return newDriver(t, filepath.Join(t.TempDir(), "session.json"))
	})
}

func TestSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	ctx := context.Background()

	first := newDriver(t, path)
	require.NoError(t, first.Set(ctx, "token", "t1"))
	require.NoError(t, first.Set(ctx, "tenant", `{"slug":"acme"}`))

	second := newDriver(t, path)
	val, ok, err := second.Get(ctx, "tenant")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"slug":"acme"}`, val)
}

func TestClearAllRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	ctx := context.Background()

	driver := newDriver(t, path)
	require.NoError(t, driver.Set(ctx, "token", "t1"))
	require.FileExists(t, path)

	require.NoError(t, driver.ClearAll(ctx))
	assert.NoFileExists(t, path)

	restarted := newDriver(t, path)
	_, ok, err := restarted.Get(ctx, "token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCorruptedFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	driver := newDriver(t, path)
	_, ok, err := driver.Get(context.Background(), "token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not enforced on windows")
	}
	path := filepath.Join(t.TempDir(), "session.json")
	driver := newDriver(t, path)
	require.NoError(t, driver.Set(context.Background(), "token", "t1"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestNotInitialized(t *testing.T) {
	driver := New(filepath.Join(t.TempDir(), "session.json"))
	_, _, err := driver.Get(context.Background(), "token")
	assert.ErrorIs(t, err, storage.ErrNotInitialized)
	assert.ErrorIs(t, driver.Set(context.Background(), "token", "t1"), storage.ErrNotInitialized)
}
