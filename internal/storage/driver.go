package storage

import (
	"context"
	"errors"
)

// ErrNotInitialized is returned by drivers used before Initialize succeeded
var ErrNotInitialized = errors.New("session store is not initialized")

// SessionStore represents a durable key-value store holding the last known session snapshot.
// Values survive process restarts; a single writer (the session state) is assumed.
type SessionStore interface {
	// Initialize initializes the storage driver (i.e. opens a connection or reads a file)
	Initialize(ctx context.Context) error

	// Get retrieves the value stored under key and whether it was present
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key
	Set(ctx context.Context, key, value string) error

	// ClearAll removes every stored key in a single step
	ClearAll(ctx context.Context) error

	// Close releases the resources held by the storage driver
	Close()
}
