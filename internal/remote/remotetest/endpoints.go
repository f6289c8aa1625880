package remotetest

import (
	"encoding/json"
	"github.com/go-chi/chi/v5"
	"github.com/hashicorp/go-memdb"
	"github.com/skybi/tenote/internal/remote"
	"github.com/skybi/tenote/internal/tenant"
	"golang.org/x/crypto/bcrypt"
	"net/http"
	"sort"
	"strings"
	"time"
)

type endpointLoginRequestPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// endpointLogin handles the 'POST /auth/login' endpoint
func (server *Server) endpointLogin(rw http.ResponseWriter, request *http.Request) {
	payload := new(endpointLoginRequestPayload)
	if err := json.NewDecoder(request.Body).Decode(payload); err != nil {
		server.writer.WriteMessage(rw, http.StatusBadRequest, "Invalid request body")
		return
	}
	if payload.Email == "" {
		server.writer.WriteErrors(rw, http.StatusBadRequest, errMissingParameter("email"))
		return
	}

	txn := server.db.Txn(false)
	obj, err := txn.First(tableUsers, "id", payload.Email)
	if err != nil {
		server.writer.WriteInternalError(rw, err)
		return
	}
	if obj == nil || bcrypt.CompareHashAndPassword(obj.(*userRecord).PasswordHash, []byte(payload.Password)) != nil {
		server.writer.WriteMessage(rw, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	user := obj.(*userRecord)

	raw, err := server.IssueToken(user.Email)
	if err != nil {
		server.writer.WriteInternalError(rw, err)
		return
	}

	response := &remote.LoginResponse{
		Token: raw,
		Role:  user.Role,
		Email: user.Email,
	}
	if record := server.tenant(txn, user.TenantSlug); record != nil {
		response.Tenant = record.toTenant()
	}
	server.writer.WriteJSON(rw, response)
}

// endpointProfile handles the 'GET /auth/me' endpoint
func (server *Server) endpointProfile(rw http.ResponseWriter, request *http.Request) {
	server.mtx.Lock()
	failure := server.profileFailure
	server.mtx.Unlock()
	if failure != 0 {
		server.writer.WriteMessage(rw, failure, http.StatusText(failure))
		return
	}

	user := userFrom(request)
	profile := &remote.Profile{
		Role:  user.Role,
		Email: user.Email,
	}
	if record := server.tenant(server.db.Txn(false), user.TenantSlug); record != nil {
		profile.Tenant = record.toTenant()
	}
	server.writer.WriteJSON(rw, profile)
}

// endpointListNotes handles the 'GET /notes' endpoint
func (server *Server) endpointListNotes(rw http.ResponseWriter, request *http.Request) {
	records := server.notes(server.db.Txn(false), userFrom(request).TenantSlug)
	sort.Slice(records, func(i, j int) bool {
		return records[i].Seq < records[j].Seq
	})

	notes := make([]remote.Note, 0, len(records))
	for _, record := range records {
		notes = append(notes, toNote(record))
	}
	server.writer.WriteJSON(rw, notes)
}

// endpointCreateNote handles the 'POST /notes' endpoint
func (server *Server) endpointCreateNote(rw http.ResponseWriter, request *http.Request) {
	input, ok := server.decodeNoteInput(rw, request)
	if !ok {
		return
	}
	user := userFrom(request)

	txn := server.db.Txn(true)
	defer txn.Abort()

	record := server.tenant(txn, user.TenantSlug)
	if record == nil {
		server.writer.WriteErrors(rw, http.StatusForbidden, errForbidden)
		return
	}
	if !record.Subscription.IsPro() && len(server.notes(txn, user.TenantSlug)) >= FreeNoteLimit {
		server.writer.WriteErrors(rw, http.StatusForbidden, errNoteLimit)
		return
	}

	note := server.newNote(user.TenantSlug, input.Title, input.Content)
	if err := txn.Insert(tableNotes, note); err != nil {
		server.writer.WriteInternalError(rw, err)
		return
	}
	txn.Commit()

	server.writer.WriteJSONCode(rw, http.StatusCreated, toNote(note))
}

// endpointUpdateNote handles the 'PUT /notes/{id}' endpoint
func (server *Server) endpointUpdateNote(rw http.ResponseWriter, request *http.Request) {
	input, ok := server.decodeNoteInput(rw, request)
	if !ok {
		return
	}

	txn := server.db.Txn(true)
	defer txn.Abort()

	existing := server.ownNote(txn, request)
	if existing == nil {
		server.writer.WriteMessage(rw, http.StatusNotFound, "Note not found")
		return
	}
	updated := *existing
	updated.Title = input.Title
	updated.Content = input.Content
	updated.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	if err := txn.Insert(tableNotes, &updated); err != nil {
		server.writer.WriteInternalError(rw, err)
		return
	}
	txn.Commit()

	server.writer.WriteJSON(rw, toNote(&updated))
}

// endpointDeleteNote handles the 'DELETE /notes/{id}' endpoint
func (server *Server) endpointDeleteNote(rw http.ResponseWriter, request *http.Request) {
	txn := server.db.Txn(true)
	defer txn.Abort()

	existing := server.ownNote(txn, request)
	if existing == nil {
		server.writer.WriteMessage(rw, http.StatusNotFound, "Note not found")
		return
	}
	if err := txn.Delete(tableNotes, existing); err != nil {
		server.writer.WriteInternalError(rw, err)
		return
	}
	txn.Commit()

	server.writer.WriteJSON(rw, &remote.Ack{Message: "Note deleted"})
}

// endpointUpgradeTenant handles the 'POST /tenants/{slug}/upgrade' endpoint
func (server *Server) endpointUpgradeTenant(rw http.ResponseWriter, request *http.Request) {
	txn := server.db.Txn(true)
	defer txn.Abort()

	record := server.tenant(txn, chi.URLParam(request, "slug"))
	if record == nil {
		server.writer.WriteErrors(rw, http.StatusNotFound, errNotFound)
		return
	}
	upgraded := *record
	upgraded.Subscription = tenant.SubscriptionPro
	if err := txn.Insert(tableTenants, &upgraded); err != nil {
		server.writer.WriteInternalError(rw, err)
		return
	}
	txn.Commit()

	server.writer.WriteJSON(rw, &remote.Ack{Message: "Tenant upgraded to pro"})
}

type endpointInviteRequestPayload struct {
	Email string      `json:"email"`
	Role  tenant.Role `json:"role"`
}

// endpointInvite handles the 'POST /tenants/{slug}/invite' endpoint
func (server *Server) endpointInvite(rw http.ResponseWriter, request *http.Request) {
	payload := new(endpointInviteRequestPayload)
	if err := json.NewDecoder(request.Body).Decode(payload); err != nil {
		server.writer.WriteMessage(rw, http.StatusBadRequest, "Invalid request body")
		return
	}
	var validationErrs []*remote.Error
	if strings.TrimSpace(payload.Email) == "" {
		validationErrs = append(validationErrs, errMissingParameter("email"))
	}
	if !payload.Role.Known() {
		validationErrs = append(validationErrs, errInvalidParameter("role", "The role must be either 'admin' or 'member'."))
	}
	if len(validationErrs) > 0 {
		server.writer.WriteErrors(rw, http.StatusBadRequest, validationErrs...)
		return
	}

	txn := server.db.Txn(true)
	defer txn.Abort()

	existing, err := txn.First(tableUsers, "id", payload.Email)
	if err != nil {
		server.writer.WriteInternalError(rw, err)
		return
	}
	if existing != nil {
		server.writer.WriteErrors(rw, http.StatusConflict, errInvalidParameter("email", "A user with this email already exists."))
		return
	}
	user := newUser(payload.Email, payload.Role, chi.URLParam(request, "slug"))
	if err := txn.Insert(tableUsers, user); err != nil {
		server.writer.WriteInternalError(rw, err)
		return
	}
	txn.Commit()

	server.writer.WriteJSONCode(rw, http.StatusCreated, &remote.Ack{Message: "User invited"})
}

func (server *Server) decodeNoteInput(rw http.ResponseWriter, request *http.Request) (*remote.NoteInput, bool) {
	input := new(remote.NoteInput)
	if err := json.NewDecoder(request.Body).Decode(input); err != nil {
		server.writer.WriteMessage(rw, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	if strings.TrimSpace(input.Title) == "" {
		server.writer.WriteErrors(rw, http.StatusBadRequest, errMissingParameter("title"))
		return nil, false
	}
	return input, true
}

// ownNote looks up the note addressed by the path within the user's tenant
func (server *Server) ownNote(txn *memdb.Txn, request *http.Request) *noteRecord {
	obj, err := txn.First(tableNotes, "id", chi.URLParam(request, "id"))
	if err != nil || obj == nil {
		return nil
	}
	record := obj.(*noteRecord)
	if record.TenantSlug != userFrom(request).TenantSlug {
		return nil
	}
	return record
}

func toNote(record *noteRecord) remote.Note {
	return remote.Note{
		ID:        record.ID,
		Title:     record.Title,
		Content:   record.Content,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}
