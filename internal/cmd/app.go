package cmd

import (
	"context"
	"github.com/rs/zerolog/log"
	"github.com/skybi/tenote/internal/config"
	"github.com/skybi/tenote/internal/notes"
	"github.com/skybi/tenote/internal/remote"
	"github.com/skybi/tenote/internal/session"
	"github.com/skybi/tenote/internal/storage"
	"github.com/skybi/tenote/internal/workspace"
	"time"
)

// App represents the wired services a command operates on
type App struct {
	Config    *config.Config
	Store     storage.SessionStore
	Workspace *workspace.Service
}

// Opener lazily creates the App once a command actually needs it
type Opener func(ctx context.Context) (*App, error)

// NewApp wires the session state, notes orchestrator and workspace around a session store and a
// notes API client
func NewApp(ctx context.Context, cfg *config.Config, store storage.SessionStore, client *remote.Client) (*App, error) {
	state, err := session.New(ctx, store, client)
	if err != nil {
		return nil, err
	}
	state.OnChange(func(current *session.Session) {
		if current == nil {
			log.Debug().Msg("session cleared")
			return
		}
		log.Debug().Str("email", current.Email).Str("tenant", current.TenantSlug()).Msg("session changed")
	})

	return &App{
		Config: cfg,
		Store:  store,
		Workspace: &workspace.Service{
			Auth:    client,
			Tenants: client,
			State:   state,
			Notes:   notes.NewOrchestrator(state, client),
		},
	}, nil
}

// OpenFromConfig returns an Opener building the App from the given configuration
func OpenFromConfig(cfg *config.Config) Opener {
	return func(ctx context.Context) (*App, error) {
		store, err := config.OpenSessionStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		client := remote.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout)
		app, err := NewApp(ctx, cfg, store, client)
		if err != nil {
			store.Close()
			return nil, err
		}
		return app, nil
	}
}

// Close releases the session store
func (app *App) Close() {
	app.Store.Close()
}

func (app *App) watchInterval() time.Duration {
	if app.Config == nil || app.Config.WatchInterval <= 0 {
		return 5 * time.Minute
	}
	return app.Config.WatchInterval
}
