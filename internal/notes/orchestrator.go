// Package notes exposes note CRUD scoped to the current session
package notes

import (
	"context"
	"github.com/rs/zerolog/log"
	"github.com/skybi/tenote/internal/remote"
	"strings"
	"sync"
)

// Note represents a single note
type Note = remote.Note

// TokenSource provides the bearer token of the current session; *session.State satisfies it
type TokenSource interface {
	Token() string
}

// Orchestrator performs note operations on behalf of the current session and caches the last
// listed notes
type Orchestrator struct {
	tokens  TokenSource
	service remote.NotesService

	mtx    sync.Mutex
	cached []Note
	valid  bool
}

// NewOrchestrator creates a new notes orchestrator
func NewOrchestrator(tokens TokenSource, service remote.NotesService) *Orchestrator {
	return &Orchestrator{
		tokens:  tokens,
		service: service,
	}
}

// List retrieves all notes of the session's tenant in server order and replaces the cache
func (orchestrator *Orchestrator) List(ctx context.Context) ([]Note, error) {
	token, err := orchestrator.token()
	if err != nil {
		return nil, err
	}
	notes, err := orchestrator.service.ListNotes(ctx, token)
	if err != nil {
		return nil, err
	}

	orchestrator.mtx.Lock()
	orchestrator.cached = copyNotes(notes)
	orchestrator.valid = true
	orchestrator.mtx.Unlock()
	return notes, nil
}

// Count retrieves the number of notes the session's tenant currently holds.
// It always asks the server.
func (orchestrator *Orchestrator) Count(ctx context.Context) (int, error) {
	notes, err := orchestrator.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(notes), nil
}

// Cached returns the notes of the last successful List, if the cache is still valid
func (orchestrator *Orchestrator) Cached() ([]Note, bool) {
	orchestrator.mtx.Lock()
	defer orchestrator.mtx.Unlock()
	if !orchestrator.valid {
		return nil, false
	}
	return copyNotes(orchestrator.cached), true
}

// Create creates a new note.
// The quota is not checked here; callers gate creation with entitlement.CanWriteNote.
func (orchestrator *Orchestrator) Create(ctx context.Context, title, content string) (*Note, error) {
	if strings.TrimSpace(title) == "" {
		return nil, &remote.ValidationError{Field: "title", Message: "must not be empty"}
	}
	token, err := orchestrator.token()
	if err != nil {
		return nil, err
	}
	note, err := orchestrator.service.CreateNote(ctx, token, remote.NoteInput{Title: title, Content: content})
	if err != nil {
		return nil, err
	}
	orchestrator.invalidate()
	log.Debug().Str("note", note.ID).Msg("created note")
	return note, nil
}

// Update replaces the title and content of an existing note
func (orchestrator *Orchestrator) Update(ctx context.Context, id, title, content string) (*Note, error) {
	if strings.TrimSpace(title) == "" {
		return nil, &remote.ValidationError{Field: "title", Message: "must not be empty"}
	}
	token, err := orchestrator.token()
	if err != nil {
		return nil, err
	}
	note, err := orchestrator.service.UpdateNote(ctx, token, id, remote.NoteInput{Title: title, Content: content})
	if err != nil {
		return nil, err
	}
	orchestrator.invalidate()
	log.Debug().Str("note", id).Msg("updated note")
	return note, nil
}

// Remove deletes a note by its ID
func (orchestrator *Orchestrator) Remove(ctx context.Context, id string) error {
	token, err := orchestrator.token()
	if err != nil {
		return err
	}
	if err := orchestrator.service.DeleteNote(ctx, token, id); err != nil {
		return err
	}
	orchestrator.invalidate()
	log.Debug().Str("note", id).Msg("deleted note")
	return nil
}

func (orchestrator *Orchestrator) token() (string, error) {
	token := orchestrator.tokens.Token()
	if token == "" {
		return "", remote.ErrNotAuthenticated
	}
	return token, nil
}

func (orchestrator *Orchestrator) invalidate() {
	orchestrator.mtx.Lock()
	orchestrator.cached = nil
	orchestrator.valid = false
	orchestrator.mtx.Unlock()
}

func copyNotes(notes []Note) []Note {
	cpy := make([]Note, len(notes))
	copy(cpy, notes)
	return cpy
}
