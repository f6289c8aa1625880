package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/rs/zerolog/log"
	"github.com/skybi/tenote/internal/remote"
	"github.com/skybi/tenote/internal/storage"
	"github.com/skybi/tenote/internal/tenant"
	"github.com/skybi/tenote/internal/token"
	"golang.org/x/sync/singleflight"
	"sync"
)

var (
	errMissingToken   = errors.New("login response carries no token")
	errMissingRole    = errors.New("response carries no role")
	errMissingProfile = errors.New("profile response is empty")
	errSuperseded     = errors.New("session was replaced while refreshing")
)

// ProfileSource fetches the server's view of the user a token belongs to
type ProfileSource interface {
	Profile(ctx context.Context, token string) (*remote.Profile, error)
}

// State is the in-memory authority on the current session.
// It is safe for concurrent use; construct it once with New and hand it to every consumer.
type State struct {
	store    storage.SessionStore
	profiles ProfileSource

	mtx     sync.RWMutex
	current *Session

	refreshes singleflight.Group

	listenersMtx sync.Mutex
	listeners    []func(*Session)
}

// New creates the session state and reconstructs the last persisted session from store.
// Loading only reads from the store.
func New(ctx context.Context, store storage.SessionStore, profiles ProfileSource) (*State, error) {
	state := &State{
		store:    store,
		profiles: profiles,
	}
	loaded, err := state.load(ctx)
	if err != nil {
		return nil, err
	}
	state.current = loaded
	return state, nil
}

// Current returns a copy of the current session or nil if there is none
func (state *State) Current() *Session {
	state.mtx.RLock()
	defer state.mtx.RUnlock()
	return state.current.Clone()
}

// Token returns the token of the current session or an empty string if there is none
func (state *State) Token() string {
	state.mtx.RLock()
	defer state.mtx.RUnlock()
	if state.current == nil {
		return ""
	}
	return state.current.Token
}

// OnChange registers a function called with a copy of the new session (nil after a clear)
// whenever the session changes
func (state *State) OnChange(listener func(*Session)) {
	state.listenersMtx.Lock()
	defer state.listenersMtx.Unlock()
	state.listeners = append(state.listeners, listener)
}

// Establish makes the given login response the current session and persists it.
// This is the only way to a freshly authenticated session.
func (state *State) Establish(ctx context.Context, resp *remote.LoginResponse) error {
	if resp == nil || resp.Token == "" {
		return &remote.AuthError{Message: "invalid login response", Cause: errMissingToken}
	}
	if resp.Role == "" {
		return &remote.AuthError{Message: "invalid login response", Cause: errMissingRole}
	}

	res := ResolveTenant(nil, decodeClaims(resp.Token), resp.Tenant)
	next := &Session{
		Token:        resp.Token,
		Role:         resp.Role,
		Email:        resp.Email,
		Tenant:       res.Tenant,
		Slug:         res.Slug,
		Subscription: res.Subscription,
	}

	state.mtx.Lock()
	if err := state.persist(ctx, next); err != nil {
		state.rollback(ctx)
		state.mtx.Unlock()
		return err
	}
	state.current = next
	state.mtx.Unlock()

	log.Debug().Str("email", next.Email).Str("role", string(next.Role)).Str("tenant", next.Slug).Str("tenant_source", string(res.Source)).Msg("session established")
	state.notify(next)
	return nil
}

// Refresh re-fetches the profile of the current session and replaces the session with the
// result. Without a session this is a no-op. If the profile can not be fetched the session is
// cleared and an *remote.AuthError is returned. Concurrent calls share one in-flight fetch.
// A caller whose context ends stops waiting and gets the context error; the session is left as
// it is and the shared fetch completes on its own.
func (state *State) Refresh(ctx context.Context) error {
	if state.Token() == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	results := state.refreshes.DoChan("refresh", func() (any, error) {
		return nil, state.refresh(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		log.Debug().Err(ctx.Err()).Msg("stopped waiting for the session refresh")
		return ctx.Err()
	case result := <-results:
		if result.Shared {
			log.Debug().Msg("joined an in-flight session refresh")
		}
		return result.Err
	}
}

func (state *State) refresh(ctx context.Context) error {
	current := state.Current()
	if current == nil {
		return nil
	}

	profile, err := state.profiles.Profile(ctx, current.Token)
	if err == nil && profile == nil {
		err = errMissingProfile
	}
	if err == nil && profile.Role == "" {
		err = errMissingRole
	}
	if err != nil {
		cleared, clearErr := state.clearToken(ctx, current.Token)
		if clearErr != nil {
			log.Error().Err(clearErr).Msg("could not clear the persisted session")
		}
		if !cleared {
			log.Debug().Err(err).AnErr("reason", errSuperseded).Msg("ignoring failed refresh of a replaced session")
			return nil
		}
		log.Warn().Err(err).Msg("session refresh failed; cleared the session")
		var authErr *remote.AuthError
		if errors.As(err, &authErr) {
			return authErr
		}
		return &remote.AuthError{Message: "session refresh failed", Cause: err}
	}

	res := ResolveTenant(current.Tenant, decodeClaims(current.Token), profile.Tenant)
	next := &Session{
		Token:        current.Token,
		Role:         profile.Role,
		Email:        profile.Email,
		Tenant:       res.Tenant,
		Slug:         res.Slug,
		Subscription: res.Subscription,
	}

	state.mtx.Lock()
	if state.current == nil || state.current.Token != current.Token {
		state.mtx.Unlock()
		log.Debug().Err(errSuperseded).Msg("discarding refreshed session")
		return nil
	}
	if err := state.persist(ctx, next); err != nil {
		state.rollback(ctx)
		state.mtx.Unlock()
		return err
	}
	state.current = next
	state.mtx.Unlock()

	log.Debug().Str("role", string(next.Role)).Str("tenant", next.Slug).Str("subscription", string(next.Subscription)).Str("tenant_source", string(res.Source)).Msg("session refreshed")
	state.notify(next)
	return nil
}

// Clear removes the current session and erases every persisted key.
// The in-memory session is gone even if erasing the persisted keys fails.
func (state *State) Clear(ctx context.Context) error {
	state.mtx.Lock()
	state.current = nil
	err := state.store.ClearAll(ctx)
	state.mtx.Unlock()

	state.notify(nil)
	if err != nil {
		return fmt.Errorf("clear persisted session: %w", err)
	}
	return nil
}

// clearToken clears the session only if it still belongs to the given token.
// It reports whether the session was cleared.
func (state *State) clearToken(ctx context.Context, token string) (bool, error) {
	state.mtx.Lock()
	if state.current == nil || state.current.Token != token {
		state.mtx.Unlock()
		return false, nil
	}
	state.current = nil
	err := state.store.ClearAll(ctx)
	state.mtx.Unlock()

	state.notify(nil)
	return true, err
}

// load reconstructs the persisted session; it never writes to the store
func (state *State) load(ctx context.Context) (*Session, error) {
	values := make(map[string]string, len(Keys))
	for _, key := range []string{KeyToken, KeyRole, KeyEmail, KeyTenant} {
		val, ok, err := state.store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("load persisted session: %w", err)
		}
		if ok {
			values[key] = val
		}
	}

	raw := values[KeyToken]
	if raw == "" {
		return nil, nil
	}

	claims := decodeClaims(raw)
	role := tenant.Role(values[KeyRole])
	if role == "" && claims != nil {
		role = claims.Role
	}
	if role == "" {
		log.Warn().Msg("persisted session carries a token but no role; starting unauthenticated")
		return nil, nil
	}

	res := ResolveTenant(parsePersistedTenant(values[KeyTenant]), claims, nil)
	return &Session{
		Token:        raw,
		Role:         role,
		Email:        values[KeyEmail],
		Tenant:       res.Tenant,
		Slug:         res.Slug,
		Subscription: res.Subscription,
	}, nil
}

// persist writes the full session to the store; the caller holds the write lock
func (state *State) persist(ctx context.Context, session *Session) error {
	tenantJSON, err := json.Marshal(session.Tenant)
	if err != nil {
		return fmt.Errorf("marshal tenant: %w", err)
	}

	// The token is written last
	entries := [][2]string{
		{KeyRole, string(session.Role)},
		{KeyEmail, session.Email},
		{KeyTenant, string(tenantJSON)},
		{KeySlug, session.Slug},
		{KeySubscription, string(session.Subscription)},
		{KeyToken, session.Token},
	}
	for _, entry := range entries {
		if err := state.store.Set(ctx, entry[0], entry[1]); err != nil {
			return fmt.Errorf("persist session: %w", err)
		}
	}
	return nil
}

// rollback rewrites the persisted keys from the in-memory session after a failed persist.
// If that fails too, or there is no session, the persisted keys are erased so that a later load
// never combines fields of two sessions. The caller holds the write lock.
func (state *State) rollback(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	if state.current != nil {
		err := state.persist(ctx, state.current)
		if err == nil {
			return
		}
		log.Warn().Err(err).Msg("could not restore the persisted session; erasing it")
	}
	if err := state.store.ClearAll(ctx); err != nil {
		log.Error().Err(err).Msg("could not erase the persisted session")
	}
}

func (state *State) notify(session *Session) {
	state.listenersMtx.Lock()
	listeners := make([]func(*Session), len(state.listeners))
	copy(listeners, state.listeners)
	state.listenersMtx.Unlock()

	for _, listener := range listeners {
		listener(session.Clone())
	}
}

// parsePersistedTenant reads the persisted tenant value.
// Values that are not JSON are legacy bare slugs.
func parsePersistedTenant(raw string) *tenant.Tenant {
	if raw == "" || raw == "null" {
		return nil
	}
	parsed := new(tenant.Tenant)
	if err := json.Unmarshal([]byte(raw), parsed); err != nil {
		return &tenant.Tenant{Slug: raw}
	}
	return parsed
}

// decodeClaims decodes the token claims, absorbing decode failures as "no claims"
func decodeClaims(raw string) *token.Claims {
	claims, err := token.Decode(raw)
	if err != nil {
		log.Debug().Err(err).Msg("no claims available from the session token")
		return nil
	}
	return claims
}
