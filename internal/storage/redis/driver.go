// Package redis provides a session store driver keeping the session snapshot in a Redis hash.
package redis

import (
	"context"
	"errors"
	"fmt"
	goredis "github.com/redis/go-redis/v9"
	"github.com/skybi/tenote/internal/storage"
	"time"
)

// DefaultKey is the hash the session snapshot is stored in if no other key is configured
const DefaultKey = "tenote:session:default"

// Driver represents the Redis session store driver.
// All session keys live in one hash so that ClearAll is a single DEL.
type Driver struct {
	url    string
	key    string
	client *goredis.Client
	owned  bool
}

var _ storage.SessionStore = (*Driver)(nil)

// New creates a new Redis session store driver connecting to url.
// Use Initialize to open and verify the connection.
func New(url, key string) *Driver {
	if key == "" {
		key = DefaultKey
	}
	return &Driver{
		url: url,
		key: key,
	}
}

// NewWithClient creates a driver from an existing Redis client; Close will not close the client
func NewWithClient(client *goredis.Client, key string) *Driver {
	if key == "" {
		key = DefaultKey
	}
	return &Driver{
		key:    key,
		client: client,
	}
}

// Initialize opens the connection (unless a client was supplied) and pings the server
func (driver *Driver) Initialize(ctx context.Context) error {
	if driver.client == nil {
		opts, err := goredis.ParseURL(driver.url)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		driver.client = goredis.NewClient(opts)
		driver.owned = true
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := driver.client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	return nil
}

// Get retrieves the value stored under key
func (driver *Driver) Get(ctx context.Context, key string) (string, bool, error) {
	if driver.client == nil {
		return "", false, storage.ErrNotInitialized
	}
	val, err := driver.client.HGet(ctx, driver.key, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get session key %q: %w", key, err)
	}
	return val, true, nil
}

// Set stores value under key
func (driver *Driver) Set(ctx context.Context, key, value string) error {
	if driver.client == nil {
		return storage.ErrNotInitialized
	}
	if err := driver.client.HSet(ctx, driver.key, key, value).Err(); err != nil {
		return fmt.Errorf("set session key %q: %w", key, err)
	}
	return nil
}

// ClearAll deletes the whole session hash
func (driver *Driver) ClearAll(ctx context.Context) error {
	if driver.client == nil {
		return storage.ErrNotInitialized
	}
	if err := driver.client.Del(ctx, driver.key).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Close closes the Redis connection if the driver opened it
func (driver *Driver) Close() {
	if driver.client != nil && driver.owned {
		_ = driver.client.Close()
	}
	driver.client = nil
}
