// Package remotetest provides an in-process fake of the notes API for tests.
//
// The fake keeps users, tenants and notes in go-memdb tables, issues HS256 tokens carrying the
// tenant claims the real API issues and enforces the free plan note limit per tenant.
package remotetest

import (
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"
	"github.com/skybi/tenote/internal/remote"
	"github.com/skybi/tenote/internal/tenant"
	"github.com/skybi/tenote/internal/token"
	"golang.org/x/crypto/bcrypt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"time"
)

// FreeNoteLimit is the number of notes a tenant on the free plan may hold
const FreeNoteLimit = 3

// Password is the password of every seeded and invited user
const Password = "password"

// Seeded accounts
const (
	AcmeAdmin    = "admin@acme.test"
	AcmeMember   = "user@acme.test"
	GlobexAdmin  = "admin@globex.test"
	GlobexMember = "user@globex.test"
)

// Server represents a running fake notes API
type Server struct {
	db     *memdb.MemDB
	secret []byte
	http   *httptest.Server
	writer *writer

	seq atomic.Uint64

	mtx            sync.Mutex
	profileFailure int
	requestIDs     []string
}

// NewServer starts a fake notes API seeded with the acme (free) and globex (pro) tenants
func NewServer() *Server {
	db, err := memdb.NewMemDB(dbSchema)
	if err != nil {
		panic(fmt.Sprintf("remotetest: invalid schema: %v", err))
	}
	server := &Server{
		db:     db,
		secret: []byte(uuid.NewString()),
		writer: &writer{},
	}

	server.AddTenant("acme", "Acme", tenant.SubscriptionFree)
	server.AddTenant("globex", "Globex", tenant.SubscriptionPro)
	server.AddUser(AcmeAdmin, tenant.RoleAdmin, "acme")
	server.AddUser(AcmeMember, tenant.RoleMember, "acme")
	server.AddUser(GlobexAdmin, tenant.RoleAdmin, "globex")
	server.AddUser(GlobexMember, tenant.RoleMember, "globex")

	server.http = httptest.NewServer(server.router())
	return server
}

func (server *Server) router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(server.middlewareRecordRequestID)
	router.NotFound(func(rw http.ResponseWriter, _ *http.Request) {
		server.writer.WriteErrors(rw, http.StatusNotFound, errNotFound)
	})
	router.MethodNotAllowed(func(rw http.ResponseWriter, _ *http.Request) {
		server.writer.WriteErrors(rw, http.StatusMethodNotAllowed, errMethodNotAllowed)
	})

	router.Post("/auth/login", server.endpointLogin)
	router.Get("/auth/me", withMiddlewares(server.endpointProfile, server.middlewareAuthenticate))

	router.Get("/notes", withMiddlewares(server.endpointListNotes, server.middlewareAuthenticate))
	router.Post("/notes", withMiddlewares(server.endpointCreateNote, server.middlewareAuthenticate))
	router.Put("/notes/{id}", withMiddlewares(server.endpointUpdateNote, server.middlewareAuthenticate))
	router.Delete("/notes/{id}", withMiddlewares(server.endpointDeleteNote, server.middlewareAuthenticate))

	router.Post("/tenants/{slug}/upgrade", withMiddlewares(server.endpointUpgradeTenant, server.middlewareAuthenticate, server.middlewareTenantAdmin))
	router.Post("/tenants/{slug}/invite", withMiddlewares(server.endpointInvite, server.middlewareAuthenticate, server.middlewareTenantAdmin))
	return router
}

// URL returns the base URL of the fake API
func (server *Server) URL() string {
	return server.http.URL
}

// Client creates a remote client talking to the fake API
func (server *Server) Client() *remote.Client {
	return remote.NewClient(server.URL(), 5*time.Second)
}

// Close shuts the fake API down
func (server *Server) Close() {
	server.http.Close()
}

// AddTenant creates or replaces a tenant
func (server *Server) AddTenant(slug, name string, subscription tenant.Subscription) {
	server.insert(tableTenants, &tenantRecord{Slug: slug, Name: name, Subscription: subscription})
}

// AddUser creates or replaces a user with the default password
func (server *Server) AddUser(email string, role tenant.Role, slug string) {
	server.insert(tableUsers, newUser(email, role, slug))
}

// AddNote inserts a note for the given tenant directly and returns its ID
func (server *Server) AddNote(slug, title, content string) string {
	record := server.newNote(slug, title, content)
	server.insert(tableNotes, record)
	return record.ID
}

// Tenant returns the current state of a tenant or nil if it does not exist
func (server *Server) Tenant(slug string) *tenant.Tenant {
	record := server.tenant(server.db.Txn(false), slug)
	if record == nil {
		return nil
	}
	return record.toTenant()
}

// Role returns the role of a user or an empty role if the user does not exist
func (server *Server) Role(email string) tenant.Role {
	obj, err := server.db.Txn(false).First(tableUsers, "id", email)
	if err != nil || obj == nil {
		return ""
	}
	return obj.(*userRecord).Role
}

// NoteCount returns the number of notes a tenant holds
func (server *Server) NoteCount(slug string) int {
	return len(server.notes(server.db.Txn(false), slug))
}

// RevokeToken makes every further request carrying the given token fail with 401
func (server *Server) RevokeToken(raw string) error {
	claims := new(token.Claims)
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return err
	}
	if claims.ID == "" {
		return fmt.Errorf("remotetest: token carries no ID")
	}
	server.insert(tableRevocations, &revocationRecord{TokenID: claims.ID})
	return nil
}

// SetProfileFailure makes GET /auth/me respond with the given status; 0 restores normal behavior
func (server *Server) SetProfileFailure(status int) {
	server.mtx.Lock()
	defer server.mtx.Unlock()
	server.profileFailure = status
}

// RequestIDs returns the request IDs of every request received so far
func (server *Server) RequestIDs() []string {
	server.mtx.Lock()
	defer server.mtx.Unlock()
	return append([]string{}, server.requestIDs...)
}

// IssueToken creates a signed token for the given user like the login endpoint does
func (server *Server) IssueToken(email string) (string, error) {
	txn := server.db.Txn(false)
	obj, err := txn.First(tableUsers, "id", email)
	if err != nil {
		return "", err
	}
	if obj == nil {
		return "", fmt.Errorf("remotetest: unknown user %q", email)
	}
	user := obj.(*userRecord)

	claims := &token.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		TenantSlug: user.TenantSlug,
		Role:       user.Role,
		Email:      user.Email,
	}
	if record := server.tenant(txn, user.TenantSlug); record != nil {
		claims.TenantSubscription = record.Subscription
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(server.secret)
}

func newUser(email string, role tenant.Role, slug string) *userRecord {
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("remotetest: hash password: %v", err))
	}
	return &userRecord{Email: email, PasswordHash: hash, Role: role, TenantSlug: slug}
}

func (server *Server) insert(table string, obj any) {
	txn := server.db.Txn(true)
	defer txn.Abort()
	if err := txn.Insert(table, obj); err != nil {
		panic(fmt.Sprintf("remotetest: insert into %s: %v", table, err))
	}
	txn.Commit()
}

func (server *Server) newNote(slug, title, content string) *noteRecord {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return &noteRecord{
		ID:         uuid.NewString(),
		TenantSlug: slug,
		Title:      title,
		Content:    content,
		CreatedAt:  now,
		UpdatedAt:  now,
		Seq:        server.seq.Add(1),
	}
}

func (server *Server) tenant(txn *memdb.Txn, slug string) *tenantRecord {
	obj, err := txn.First(tableTenants, "id", slug)
	if err != nil || obj == nil {
		return nil
	}
	return obj.(*tenantRecord)
}

func (server *Server) notes(txn *memdb.Txn, slug string) []*noteRecord {
	it, err := txn.Get(tableNotes, "tenant", slug)
	if err != nil {
		return nil
	}
	var records []*noteRecord
	for obj := it.Next(); obj != nil; obj = it.Next() {
		records = append(records, obj.(*noteRecord))
	}
	return records
}
