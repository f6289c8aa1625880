package remote

import (
	"context"
	"net/http"
	"net/url"
)

const resourceNote = "note"

// ListNotes retrieves all notes visible to the token's tenant scope in server order
func (client *Client) ListNotes(ctx context.Context, token string) ([]Note, error) {
	var notes []Note
	if err := client.call(ctx, token, http.MethodGet, "/notes", resourceNote, "", nil, &notes); err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []Note{}
	}
	return notes, nil
}

// CreateNote creates a new note
func (client *Client) CreateNote(ctx context.Context, token string, input NoteInput) (*Note, error) {
	note := new(Note)
	if err := client.call(ctx, token, http.MethodPost, "/notes", resourceNote, "", input, note); err != nil {
		return nil, err
	}
	return note, nil
}

// UpdateNote replaces the title and content of an existing note
func (client *Client) UpdateNote(ctx context.Context, token, id string, input NoteInput) (*Note, error) {
	note := new(Note)
	if err := client.call(ctx, token, http.MethodPut, "/notes/"+url.PathEscape(id), resourceNote, id, input, note); err != nil {
		return nil, err
	}
	return note, nil
}

// DeleteNote deletes a note by its ID
func (client *Client) DeleteNote(ctx context.Context, token, id string) error {
	return client.call(ctx, token, http.MethodDelete, "/notes/"+url.PathEscape(id), resourceNote, id, nil, nil)
}
