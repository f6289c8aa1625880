// Package remote implements the collaborators the session and notes core talks to: the auth,
// notes and tenant endpoints of the notes API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/skybi/tenote/internal/tenant"
	"golang.org/x/oauth2"
	"io"
	"net/http"
	"strings"
	"time"
)

// HeaderRequestID carries the per-request correlation ID
const HeaderRequestID = "X-Request-ID"

// AuthService defines the authentication endpoints
type AuthService interface {
	// Login exchanges credentials for a session token
	Login(ctx context.Context, email, password string) (*LoginResponse, error)

	// Profile retrieves the profile the given token belongs to
	Profile(ctx context.Context, token string) (*Profile, error)
}

// NotesService defines the notes endpoints
type NotesService interface {
	// ListNotes retrieves all notes visible to the token's tenant scope
	ListNotes(ctx context.Context, token string) ([]Note, error)

	// CreateNote creates a new note
	CreateNote(ctx context.Context, token string, input NoteInput) (*Note, error)

	// UpdateNote replaces the title and content of an existing note
	UpdateNote(ctx context.Context, token, id string, input NoteInput) (*Note, error)

	// DeleteNote deletes a note by its ID
	DeleteNote(ctx context.Context, token, id string) error
}

// TenantService defines the tenant administration endpoints
type TenantService interface {
	// Upgrade upgrades the tenant to the pro plan
	Upgrade(ctx context.Context, token, slug string) error

	// Invite invites a new user into the tenant
	Invite(ctx context.Context, token, slug, email string, role tenant.Role) error
}

// Client implements AuthService, NotesService and TenantService over HTTP
type Client struct {
	baseURL string
	timeout time.Duration
	base    http.RoundTripper
}

var (
	_ AuthService   = (*Client)(nil)
	_ NotesService  = (*Client)(nil)
	_ TenantService = (*Client)(nil)
)

// NewClient creates a new notes API client.
// A zero timeout disables the client-side request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		base:    http.DefaultTransport,
	}
}

// WithTransport replaces the underlying round tripper (i.e. for tests)
func (client *Client) WithTransport(transport http.RoundTripper) *Client {
	client.base = transport
	return client
}

// httpClient returns an HTTP client authenticating its requests with the given bearer token
func (client *Client) httpClient(token string) *http.Client {
	transport := client.base
	if token != "" {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   client.base,
		}
	}
	return &http.Client{
		Transport: transport,
		Timeout:   client.timeout,
	}
}

type response struct {
	status int
	body   []byte
}

// send performs a single request; the error is only set for failures below HTTP
func (client *Client) send(ctx context.Context, token, method, path string, body any) (*response, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	request, err := http.NewRequestWithContext(ctx, method, client.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	request.Header.Set(HeaderRequestID, requestID)
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := client.httpClient(token).Do(request)
	if err != nil {
		log.Debug().Err(err).Str("method", method).Str("path", path).Str("request_id", requestID).Msg("request failed")
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Str("request_id", requestID).
		Dur("took", time.Since(started)).
		Msg("notes API request")

	return &response{status: resp.StatusCode, body: raw}, nil
}

// call performs a request and decodes a successful response into target.
// resource and id are used to describe not-found failures.
func (client *Client) call(ctx context.Context, token, method, path, resource, id string, body, target any) error {
	op := method + " " + path
	resp, err := client.send(ctx, token, method, path, body)
	if err != nil {
		return &TransportError{Op: op, Cause: err}
	}

	if resp.status < 200 || resp.status >= 300 {
		errResp := parseErrorResponse(resp.body)
		classified := classifyStatus(op, resource, id, resp.status, errResp.Describe())
		if validationErr, ok := classified.(*ValidationError); ok {
			validationErr.Field = errResp.field()
		}
		return classified
	}

	if target == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, target); err != nil {
		return &TransportError{Op: op, Status: resp.status, Cause: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
