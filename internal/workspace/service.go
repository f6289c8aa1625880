// Package workspace combines the session, entitlement and notes packages into the user-facing
// operations of the notes client
package workspace

import (
	"context"
	"errors"
	"fmt"
	"github.com/rs/zerolog/log"
	"github.com/skybi/tenote/internal/entitlement"
	"github.com/skybi/tenote/internal/notes"
	"github.com/skybi/tenote/internal/remote"
	"github.com/skybi/tenote/internal/session"
	"github.com/skybi/tenote/internal/tenant"
	"strings"
)

var (
	// ErrAlreadyPro is returned when upgrading a tenant that already is on the pro plan
	ErrAlreadyPro = errors.New("the tenant already is on the pro plan")

	// ErrUnknownTenant is returned by tenant operations while the session's tenant is not known
	ErrUnknownTenant = errors.New("the tenant of the current session is not known")
)

// QuotaError is returned when the free plan note limit prevents creating another note
type QuotaError struct {
	Count int
	Limit int
}

func (err *QuotaError) Error() string {
	return fmt.Sprintf("note limit reached (%d of %d); upgrade to the pro plan to add more notes", err.Count, err.Limit)
}

// PermissionError is returned when the session's role does not allow an operation
type PermissionError struct {
	Action string
	Role   tenant.Role
}

func (err *PermissionError) Error() string {
	if err.Role == "" {
		return fmt.Sprintf("%s: not permitted", err.Action)
	}
	return fmt.Sprintf("%s: not permitted for role %q", err.Action, err.Role)
}

// Service represents the workspace service
type Service struct {
	Auth    remote.AuthService
	Tenants remote.TenantService
	State   *session.State
	Notes   *notes.Orchestrator
}

// Dashboard represents a snapshot of the session, its notes and the decisions derived from both
type Dashboard struct {
	Session      *session.Session
	Notes        []notes.Note
	Entitlements entitlement.Set
}

// Login authenticates the user and establishes the session
func (service *Service) Login(ctx context.Context, email, password string) (*session.Session, error) {
	resp, err := service.Auth.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return nil, err
	}
	if err := service.State.Establish(ctx, resp); err != nil {
		return nil, err
	}
	current := service.State.Current()
	log.Info().Str("email", current.Email).Str("tenant", current.TenantSlug()).Msg("logged in")
	return current, nil
}

// Logout ends the session
func (service *Service) Logout(ctx context.Context) error {
	return service.State.Clear(ctx)
}

// CreateNote creates a new note if the session's entitlements allow it.
// The note count is fetched right before deciding.
func (service *Service) CreateNote(ctx context.Context, title, content string) (*notes.Note, error) {
	current := service.State.Current()
	if current == nil {
		return nil, remote.ErrNotAuthenticated
	}
	count, err := service.Notes.Count(ctx)
	if err != nil {
		return nil, err
	}
	if !entitlement.CanWriteNote(current, count) {
		if !entitlement.CanManageNotes(current) {
			return nil, &PermissionError{Action: "create note", Role: current.Role}
		}
		return nil, &QuotaError{Count: count, Limit: entitlement.FreeNoteLimit}
	}
	return service.Notes.Create(ctx, title, content)
}

// UpdateNote replaces the title and content of a note
func (service *Service) UpdateNote(ctx context.Context, id, title, content string) (*notes.Note, error) {
	if err := service.requireManageNotes("update note"); err != nil {
		return nil, err
	}
	return service.Notes.Update(ctx, id, title, content)
}

// DeleteNote deletes a note
func (service *Service) DeleteNote(ctx context.Context, id string) error {
	if err := service.requireManageNotes("delete note"); err != nil {
		return err
	}
	return service.Notes.Remove(ctx, id)
}

// UpgradeTenant upgrades the session's tenant to the pro plan and reloads the session
func (service *Service) UpgradeTenant(ctx context.Context) (*session.Session, error) {
	current := service.State.Current()
	if current == nil {
		return nil, remote.ErrNotAuthenticated
	}
	if !entitlement.CanUpgrade(current) {
		return nil, &PermissionError{Action: "upgrade tenant", Role: current.Role}
	}
	slug := current.TenantSlug()
	if slug == "" {
		return nil, ErrUnknownTenant
	}
	if entitlement.IsPro(current) {
		return nil, ErrAlreadyPro
	}

	if err := service.Tenants.Upgrade(ctx, current.Token, slug); err != nil {
		return nil, err
	}
	log.Info().Str("tenant", slug).Msg("upgraded tenant to pro")

	if err := service.State.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("reload session after upgrade: %w", err)
	}
	return service.State.Current(), nil
}

// InviteUser invites a user into the session's tenant
func (service *Service) InviteUser(ctx context.Context, email string, role tenant.Role) error {
	current := service.State.Current()
	if current == nil {
		return remote.ErrNotAuthenticated
	}
	if !entitlement.CanInvite(current) {
		return &PermissionError{Action: "invite user", Role: current.Role}
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return &remote.ValidationError{Field: "email", Message: "must not be empty"}
	}
	if !role.Known() {
		return &remote.ValidationError{Field: "role", Message: "must be either admin or member"}
	}
	slug := current.TenantSlug()
	if slug == "" {
		return ErrUnknownTenant
	}

	if err := service.Tenants.Invite(ctx, current.Token, slug, email, role); err != nil {
		return err
	}
	log.Info().Str("tenant", slug).Str("invitee", email).Str("role", string(role)).Msg("invited user")
	return nil
}

// Dashboard fetches the notes of the session's tenant and evaluates the entitlements against them
func (service *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	current := service.State.Current()
	if current == nil {
		return nil, remote.ErrNotAuthenticated
	}
	list, err := service.Notes.List(ctx)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Session:      current,
		Notes:        list,
		Entitlements: entitlement.Evaluate(current, len(list)),
	}, nil
}

func (service *Service) requireManageNotes(action string) error {
	current := service.State.Current()
	if current == nil {
		return remote.ErrNotAuthenticated
	}
	if !entitlement.CanManageNotes(current) {
		return &PermissionError{Action: action, Role: current.Role}
	}
	return nil
}
