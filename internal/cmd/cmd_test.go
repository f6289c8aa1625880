package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"github.com/skybi/tenote/internal/config"
	"github.com/skybi/tenote/internal/remote/remotetest"
	"github.com/skybi/tenote/internal/session"
	"github.com/skybi/tenote/internal/storage/inmem"
	"github.com/skybi/tenote/internal/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type harness struct {
	server *remotetest.Server
	store  *inmem.Driver
	opens  int
}

func newHarness(t *testing.T) *harness {
	server := remotetest.NewServer()
	t.Cleanup(server.Close)
	return &harness{
		server: server,
		store:  inmem.New(),
	}
}

func (h *harness) open(ctx context.Context) (*App, error) {
	h.opens++
	cfg := &config.Config{WatchInterval: 10 * time.Millisecond}
	return NewApp(ctx, cfg, h.store, h.server.Client())
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	return h.runContext(context.Background(), args...)
}

func (h *harness) runContext(ctx context.Context, args ...string) (string, error) {
	return h.execute(ctx, new(bytes.Buffer), args...)
}

func (h *harness) runWithInput(t *testing.T, input string, args ...string) (string, error) {
	return h.execute(context.Background(), strings.NewReader(input), args...)
}

func (h *harness) execute(ctx context.Context, in io.Reader, args ...string) (string, error) {
	out := new(bytes.Buffer)
	err := func() error {
		root, opts := newRoot(h.open)
		defer opts.close()
		root.SetIn(in)
		root.SetOut(out)
		root.SetErr(out)
		root.SetArgs(args)
		return root.ExecuteContext(ctx)
	}()
	return out.String(), err
}

func (h *harness) login(t *testing.T, email string) {
	_, err := h.run(t, "login", "--email", email, "--password", remotetest.Password)
	require.NoError(t, err)
}

func TestCommandTree(t *testing.T) {
	root := NewRootCommand(func(context.Context) (*App, error) {
		t.Fatal("listing commands must not open the app")
		return nil, nil
	})

	expected := map[string][]string{
		"login":   nil,
		"logout":  nil,
		"whoami":  nil,
		"session": {"refresh", "watch"},
		"notes":   {"list", "create", "edit", "delete"},
		"tenant":  {"upgrade", "invite"},
	}
	for name, subcommands := range expected {
		command, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, command.Name())
		for _, sub := range subcommands {
			found, _, err := root.Find([]string{name, sub})
			require.NoError(t, err, name+" "+sub)
			assert.Equal(t, sub, found.Name())
		}
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("json"))
}

func TestLoginWhoamiLogout(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "login", "--email", remotetest.AcmeMember, "--password", remotetest.Password)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as "+remotetest.AcmeMember)
	assert.Contains(t, out, "acme")

	out, err = h.run(t, "whoami", "--json")
	require.NoError(t, err)
	view := new(sessionView)
	require.NoError(t, json.Unmarshal([]byte(out), view))
	assert.Equal(t, tenant.RoleMember, view.Role)
	assert.Equal(t, tenant.SubscriptionFree, view.Subscription)
	assert.Contains(t, view.Entitlements, "write_note")
	require.NotNil(t, view.NoteCount)
	assert.Equal(t, 0, *view.NoteCount)

	out, err = h.run(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out.")
	assert.Equal(t, 0, h.store.Len())

	_, err = h.run(t, "whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestLoginRequiresFlags(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "login", "--email", remotetest.AcmeMember)
	assert.Error(t, err)
	assert.Equal(t, 0, h.opens)
}

func TestLoginWithPasswordFromStdin(t *testing.T) {
	h := newHarness(t)

	out, err := h.runWithInput(t, remotetest.Password+"\n", "login", "--email", remotetest.AcmeAdmin, "--password-stdin")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as "+remotetest.AcmeAdmin)

	out, err = h.run(t, "whoami", "--json")
	require.NoError(t, err)
	view := new(sessionView)
	require.NoError(t, json.Unmarshal([]byte(out), view))
	assert.Equal(t, tenant.RoleAdmin, view.Role)
}

func TestLoginPasswordStdinVariants(t *testing.T) {
	tests := []struct {
		name  string
		input string
		args  []string
		fails bool
	}{
		{"without trailing newline", remotetest.Password, []string{"--password-stdin"}, false},
		{"with windows line ending", remotetest.Password + "\r\n", []string{"--password-stdin"}, false},
		{"empty input", "", []string{"--password-stdin"}, true},
		{"both password sources", remotetest.Password, []string{"--password-stdin", "--password", remotetest.Password}, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			h := newHarness(t)
			args := append([]string{"login", "--email", remotetest.AcmeMember}, test.args...)
			_, err := h.runWithInput(t, test.input, args...)
			if test.fails {
				assert.Error(t, err)
				assert.Equal(t, 0, h.store.Len())
				return
			}
			require.NoError(t, err)
			assert.Positive(t, h.store.Len())
		})
	}
}

func TestLoginWithBadPassword(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "login", "--email", remotetest.AcmeMember, "--password", "nope")
	assert.ErrorContains(t, err, "Invalid credentials")
}

func TestNotesCommands(t *testing.T) {
	h := newHarness(t)
	h.login(t, remotetest.AcmeMember)

	var ids []string
	for i := 0; i < 3; i++ {
		out, err := h.run(t, "notes", "create", "--title", "note", "--content", "body", "--json")
		require.NoError(t, err)
		note := new(struct {
			ID string `json:"_id"`
		})
		require.NoError(t, json.Unmarshal([]byte(out), note))
		ids = append(ids, note.ID)
	}

	_, err := h.run(t, "notes", "create", "--title", "fourth")
	assert.ErrorContains(t, err, "note limit reached")

	out, err := h.run(t, "notes", "list")
	require.NoError(t, err)
	for _, id := range ids {
		assert.Contains(t, out, id)
	}
	assert.Contains(t, out, "free plan limit")

	out, err = h.run(t, "notes", "edit", ids[0], "--title", "renamed")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated note "+ids[0])

	out, err = h.run(t, "notes", "delete", ids[1])
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted note "+ids[1])

	out, err = h.run(t, "notes", "list", "--json")
	require.NoError(t, err)
	view := new(notesView)
	require.NoError(t, json.Unmarshal([]byte(out), view))
	assert.Len(t, view.Notes, 2)
	assert.Equal(t, "renamed", view.Notes[0].Title)
	assert.True(t, view.CanWrite)
	assert.False(t, view.UpgradeBanner)

	_, err = h.run(t, "notes", "edit", ids[0], "--title", "")
	assert.ErrorContains(t, err, "title")
}

func TestTenantCommands(t *testing.T) {
	h := newHarness(t)
	h.login(t, remotetest.AcmeAdmin)

	out, err := h.run(t, "tenant", "invite", "--email", "new@acme.test")
	require.NoError(t, err)
	assert.Contains(t, out, "Invited new@acme.test as member.")
	assert.Equal(t, tenant.RoleMember, h.server.Role("new@acme.test"))

	out, err = h.run(t, "tenant", "upgrade")
	require.NoError(t, err)
	assert.Contains(t, out, "Upgraded tenant acme")

	_, err = h.run(t, "tenant", "upgrade")
	assert.ErrorContains(t, err, "already")
}

func TestSessionRefresh(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "session", "refresh")
	assert.ErrorIs(t, err, errNotLoggedIn)

	h.login(t, remotetest.GlobexAdmin)
	out, err := h.run(t, "session", "refresh", "--json")
	require.NoError(t, err)
	view := new(sessionView)
	require.NoError(t, json.Unmarshal([]byte(out), view))
	assert.Equal(t, tenant.SubscriptionPro, view.Subscription)

	h.server.SetProfileFailure(http.StatusUnauthorized)
	_, err = h.run(t, "session", "refresh")
	assert.ErrorContains(t, err, "cleared")
	_, ok, err := h.store.Get(context.Background(), session.KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInterruptedSessionRefreshKeepsSession(t *testing.T) {
	h := newHarness(t)
	h.login(t, remotetest.AcmeMember)
	stored := h.store.Len()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.runContext(ctx, "session", "refresh")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorContains(t, err, "interrupted")
	assert.NotContains(t, err.Error(), "cleared")
	assert.Equal(t, stored, h.store.Len())
}

func TestSessionWatchFailsOnRevocation(t *testing.T) {
	h := newHarness(t)
	h.login(t, remotetest.AcmeMember)
	raw, _, err := h.store.Get(context.Background(), session.KeyToken)
	require.NoError(t, err)
	require.NoError(t, h.server.RevokeToken(raw))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = h.runContext(ctx, "session", "watch")
	assert.ErrorContains(t, err, "cleared")
	assert.Equal(t, 0, h.store.Len())
}

func TestSessionWatchStopsWithContext(t *testing.T) {
	h := newHarness(t)
	h.login(t, remotetest.AcmeMember)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := h.runContext(ctx, "session", "watch", "--interval", "5ms")
	assert.NoError(t, err)
	assert.NotZero(t, h.store.Len())
}
