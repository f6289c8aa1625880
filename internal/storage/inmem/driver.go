package inmem

import (
	"context"
	"github.com/skybi/tenote/internal/storage"
	"github.com/skybi/tenote/internal/threadsafe"
)

// Driver represents the in-memory session store driver.
// Its contents only live as long as the process; it is meant for tests and one-shot invocations.
type Driver struct {
	values *threadsafe.Map[string, string]
}

var _ storage.SessionStore = (*Driver)(nil)

// New creates a new empty in-memory session store driver
func New() *Driver {
	return &Driver{
		values: threadsafe.NewMap[string, string](),
	}
}

// Initialize is a no-op for the in-memory driver
func (driver *Driver) Initialize(_ context.Context) error {
	return nil
}

// Get retrieves the value stored under key
func (driver *Driver) Get(_ context.Context, key string) (string, bool, error) {
	val, ok := driver.values.Lookup(key)
	return val, ok, nil
}

// Set stores value under key
func (driver *Driver) Set(_ context.Context, key, value string) error {
	driver.values.Set(key, value)
	return nil
}

// ClearAll removes every stored key
func (driver *Driver) ClearAll(_ context.Context) error {
	driver.values.Replace(nil)
	return nil
}

// Len returns the amount of stored keys
func (driver *Driver) Len() int {
	return driver.values.Size()
}

// Close is a no-op for the in-memory driver
func (driver *Driver) Close() {}
