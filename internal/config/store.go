package config

import (
	"context"
	"fmt"
	"github.com/rs/zerolog/log"
	"github.com/skybi/tenote/internal/storage"
	"github.com/skybi/tenote/internal/storage/file"
	"github.com/skybi/tenote/internal/storage/inmem"
	"github.com/skybi/tenote/internal/storage/postgres"
	"github.com/skybi/tenote/internal/storage/redis"
	"os"
	"path/filepath"
)

// Session store drivers selectable via TENOTE_SESSION_DRIVER
const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// SessionFilePath returns the configured session file or the default one in the user's home directory
func (config *Config) SessionFilePath() (string, error) {
	if config.SessionFile != "" {
		return config.SessionFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".tenote", "session.json"), nil
}

// OpenSessionStore creates and initializes the session store driver selected by the configuration
func OpenSessionStore(ctx context.Context, config *Config) (storage.SessionStore, error) {
	var store storage.SessionStore
	switch config.SessionDriver {
	case DriverFile, "":
		path, err := config.SessionFilePath()
		if err != nil {
			return nil, err
		}
		store = file.New(path)
	case DriverMemory:
		store = inmem.New()
	case DriverRedis:
		if config.RedisURL == "" {
			return nil, fmt.Errorf("the redis session driver requires TENOTE_REDIS_URL")
		}
		store = redis.New(config.RedisURL, config.RedisPrefix+config.SessionNamespace)
	case DriverPostgres:
		if config.PostgresDSN == "" {
			return nil, fmt.Errorf("the postgres session driver requires TENOTE_POSTGRES_DSN")
		}
		store = postgres.New(config.PostgresDSN, config.SessionNamespace)
	default:
		return nil, fmt.Errorf("unknown session driver %q", config.SessionDriver)
	}

	if err := store.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("initialize %s session store: %w", config.SessionDriver, err)
	}
	log.Debug().Str("driver", config.SessionDriver).Str("namespace", config.SessionNamespace).Msg("opened session store")
	return store, nil
}
