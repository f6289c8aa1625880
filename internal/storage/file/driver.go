package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/rs/zerolog/log"
	"github.com/skybi/tenote/internal/storage"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Driver represents the session store driver persisting all keys into a single JSON file.
// Every write replaces the file atomically (write to a temporary file, then rename).
type Driver struct {
	path string

	mtx         sync.Mutex
	values      map[string]string
	initialized bool
}

var _ storage.SessionStore = (*Driver)(nil)

// New creates a new file session store driver writing to path.
// Use Initialize to load the existing file contents.
func New(path string) *Driver {
	return &Driver{
		path: path,
	}
}

// Path returns the path of the backing file
func (driver *Driver) Path() string {
	return driver.path
}

// Initialize reads the backing file if it exists.
// An unreadable or corrupted file is treated as an empty store rather than as a fatal error.
func (driver *Driver) Initialize(_ context.Context) error {
	driver.mtx.Lock()
	defer driver.mtx.Unlock()

	driver.values = make(map[string]string)
	driver.initialized = true

	raw, err := os.ReadFile(driver.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read session file: %w", err)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, &driver.values); err != nil {
		log.Warn().Err(err).Str("path", driver.path).Msg("ignoring corrupted session file")
		driver.values = make(map[string]string)
		return nil
	}
	return nil
}

// Get retrieves the value stored under key
func (driver *Driver) Get(_ context.Context, key string) (string, bool, error) {
	driver.mtx.Lock()
	defer driver.mtx.Unlock()
	if !driver.initialized {
		return "", false, storage.ErrNotInitialized
	}
	val, ok := driver.values[key]
	return val, ok, nil
}

// Set stores value under key and rewrites the backing file
func (driver *Driver) Set(_ context.Context, key, value string) error {
	driver.mtx.Lock()
	defer driver.mtx.Unlock()
	if !driver.initialized {
		return storage.ErrNotInitialized
	}

	next := make(map[string]string, len(driver.values)+1)
	for k, v := range driver.values {
		next[k] = v
	}
	next[key] = value
	if err := driver.write(next); err != nil {
		return err
	}
	driver.values = next
	return nil
}

// ClearAll removes the backing file and every cached key
func (driver *Driver) ClearAll(_ context.Context) error {
	driver.mtx.Lock()
	defer driver.mtx.Unlock()
	if !driver.initialized {
		return storage.ErrNotInitialized
	}

	if err := os.Remove(driver.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	driver.values = make(map[string]string)
	return nil
}

// Close is a no-op; every write is flushed immediately
func (driver *Driver) Close() {}

func (driver *Driver) write(values map[string]string) error {
	dir := filepath.Dir(driver.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	raw, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session file: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("create temporary session file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write temporary session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temporary session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temporary session file: %w", err)
	}
	if err := os.Rename(tmpName, driver.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}
