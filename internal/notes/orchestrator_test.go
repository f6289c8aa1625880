package notes

import (
	"context"
	"errors"
	"github.com/skybi/tenote/internal/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strconv"
	"testing"
)

type staticToken string

func (token staticToken) Token() string {
	return string(token)
}

type fakeService struct {
	notes  []Note
	calls  int
	tokens []string
	fail   error
}

var _ remote.NotesService = (*fakeService)(nil)

func (service *fakeService) ListNotes(_ context.Context, token string) ([]Note, error) {
	service.calls++
	service.tokens = append(service.tokens, token)
	if service.fail != nil {
		return nil, service.fail
	}
	return append([]Note{}, service.notes...), nil
}

func (service *fakeService) CreateNote(_ context.Context, token string, input remote.NoteInput) (*Note, error) {
	service.calls++
	service.tokens = append(service.tokens, token)
	if service.fail != nil {
		return nil, service.fail
	}
	note := Note{ID: strconv.Itoa(len(service.notes) + 1), Title: input.Title, Content: input.Content}
	service.notes = append(service.notes, note)
	return &note, nil
}

func (service *fakeService) UpdateNote(_ context.Context, _ string, id string, input remote.NoteInput) (*Note, error) {
	service.calls++
	if service.fail != nil {
		return nil, service.fail
	}
	for i := range service.notes {
		if service.notes[i].ID == id {
			service.notes[i].Title = input.Title
			service.notes[i].Content = input.Content
			note := service.notes[i]
			return &note, nil
		}
	}
	return nil, &remote.NotFoundError{Resource: "note", ID: id}
}

func (service *fakeService) DeleteNote(_ context.Context, _ string, id string) error {
	service.calls++
	if service.fail != nil {
		return service.fail
	}
	for i := range service.notes {
		if service.notes[i].ID == id {
			service.notes = append(service.notes[:i], service.notes[i+1:]...)
			return nil
		}
	}
	return &remote.NotFoundError{Resource: "note", ID: id}
}

func seeded() *fakeService {
	return &fakeService{notes: []Note{
		{ID: "b", Title: "second"},
		{ID: "a", Title: "first"},
	}}
}

func TestListPreservesServerOrderAndCaches(t *testing.T) {
	service := seeded()
	orchestrator := NewOrchestrator(staticToken("t1"), service)

	_, ok := orchestrator.Cached()
	assert.False(t, ok)

	notes, err := orchestrator.List(context.Background())
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "b", notes[0].ID)
	assert.Equal(t, "a", notes[1].ID)
	assert.Equal(t, []string{"t1"}, service.tokens)

	cached, ok := orchestrator.Cached()
	assert.True(t, ok)
	assert.Equal(t, notes, cached)
}

func TestCreateWithBlankTitle(t *testing.T) {
	service := seeded()
	orchestrator := NewOrchestrator(staticToken("t1"), service)
	_, err := orchestrator.List(context.Background())
	require.NoError(t, err)

	for _, title := range []string{"", "   "} {
		_, err := orchestrator.Create(context.Background(), title, "x")
		var validationErr *remote.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "title", validationErr.Field)
	}

	assert.Equal(t, 1, service.calls)
	cached, ok := orchestrator.Cached()
	assert.True(t, ok)
	assert.Len(t, cached, 2)
}

func TestWritesInvalidateCache(t *testing.T) {
	ctx := context.Background()
	service := seeded()
	orchestrator := NewOrchestrator(staticToken("t1"), service)

	_, err := orchestrator.List(ctx)
	require.NoError(t, err)
	note, err := orchestrator.Create(ctx, "third", "body")
	require.NoError(t, err)
	assert.Equal(t, "third", note.Title)
	_, ok := orchestrator.Cached()
	assert.False(t, ok)

	_, err = orchestrator.List(ctx)
	require.NoError(t, err)
	_, err = orchestrator.Update(ctx, "a", "renamed", "")
	require.NoError(t, err)
	_, ok = orchestrator.Cached()
	assert.False(t, ok)

	_, err = orchestrator.List(ctx)
	require.NoError(t, err)
	require.NoError(t, orchestrator.Remove(ctx, "b"))
	_, ok = orchestrator.Cached()
	assert.False(t, ok)

	count, err := orchestrator.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestFailedWritesKeepCache(t *testing.T) {
	ctx := context.Background()
	service := seeded()
	orchestrator := NewOrchestrator(staticToken("t1"), service)
	_, err := orchestrator.List(ctx)
	require.NoError(t, err)

	_, err = orchestrator.Update(ctx, "missing", "title", "")
	var notFound *remote.NotFoundError
	assert.ErrorAs(t, err, &notFound)

	service.fail = &remote.ValidationError{Status: 403, Message: "note limit reached"}
	_, err = orchestrator.Create(ctx, "fourth", "")
	var validationErr *remote.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	cached, ok := orchestrator.Cached()
	assert.True(t, ok)
	assert.Len(t, cached, 2)
}

func TestFailedListKeepsPreviousCache(t *testing.T) {
	ctx := context.Background()
	service := seeded()
	orchestrator := NewOrchestrator(staticToken("t1"), service)
	_, err := orchestrator.List(ctx)
	require.NoError(t, err)

	service.fail = &remote.TransportError{Op: "GET /notes", Cause: errors.New("connection reset")}
	_, err = orchestrator.List(ctx)
	assert.Error(t, err)

	cached, ok := orchestrator.Cached()
	assert.True(t, ok)
	assert.Len(t, cached, 2)
}

func TestWithoutToken(t *testing.T) {
	ctx := context.Background()
	service := seeded()
	orchestrator := NewOrchestrator(staticToken(""), service)

	_, err := orchestrator.List(ctx)
	assert.ErrorIs(t, err, remote.ErrNotAuthenticated)
	_, err = orchestrator.Create(ctx, "title", "")
	assert.ErrorIs(t, err, remote.ErrNotAuthenticated)
	_, err = orchestrator.Update(ctx, "a", "title", "")
	assert.ErrorIs(t, err, remote.ErrNotAuthenticated)
	assert.ErrorIs(t, orchestrator.Remove(ctx, "a"), remote.ErrNotAuthenticated)
	assert.Equal(t, 0, service.calls)
}

func TestCachedReturnsCopy(t *testing.T) {
	orchestrator := NewOrchestrator(staticToken("t1"), seeded())
	_, err := orchestrator.List(context.Background())
	require.NoError(t, err)

	cached, _ := orchestrator.Cached()
	cached[0].Title = "mutated"
	again, _ := orchestrator.Cached()
	assert.Equal(t, "second", again[0].Title)
}
