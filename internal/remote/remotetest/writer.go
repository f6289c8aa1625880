package remotetest

import (
	"encoding/json"
	"github.com/rs/zerolog/log"
	"github.com/skybi/tenote/internal/remote"
	"net/http"
)

var (
	errNotFound = &remote.Error{
		Type:    "generic.notFound",
		Message: "Resource not found.",
	}
	errMethodNotAllowed = &remote.Error{
		Type:    "generic.methodNotAllowed",
		Message: "Method not allowed.",
	}
	errForbidden = &remote.Error{
		Type:    "access.forbidden",
		Message: "You are not authorized to access this resource.",
	}
	errNoteLimit = &remote.Error{
		Type:    "quota.noteLimit",
		Message: "Note limit reached. Please upgrade your plan.",
	}
)

func errMissingParameter(name string) *remote.Error {
	return &remote.Error{
		Type:    "validation.missingParameter",
		Message: "The '" + name + "' parameter is required.",
		Details: map[string]any{"parameter": name},
	}
}

func errInvalidParameter(name, message string) *remote.Error {
	return &remote.Error{
		Type:    "validation.invalidParameter",
		Message: message,
		Details: map[string]any{"parameter": name},
	}
}

// writer writes responses in both body shapes the notes API uses
type writer struct{}

func (writer *writer) WriteJSONCode(rw http.ResponseWriter, code int, value any) {
	val, err := json.Marshal(value)
	if err != nil {
		writer.WriteInternalError(rw, err)
		return
	}
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(code)
	rw.Write(val)
}

func (writer *writer) WriteJSON(rw http.ResponseWriter, value any) {
	writer.WriteJSONCode(rw, http.StatusOK, value)
}

// WriteErrors sends a typed error list
func (writer *writer) WriteErrors(rw http.ResponseWriter, code int, errors ...*remote.Error) {
	if errors == nil {
		errors = []*remote.Error{}
	}
	writer.WriteJSONCode(rw, code, &remote.ErrorResponse{
		Status: code,
		Errors: errors,
	})
}

// WriteMessage sends a bare message error like the older endpoints do
func (writer *writer) WriteMessage(rw http.ResponseWriter, code int, message string) {
	writer.WriteJSONCode(rw, code, &remote.ErrorResponse{Message: message})
}

func (writer *writer) WriteInternalError(rw http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("the fake notes API experienced an unexpected error")
	writer.WriteMessage(rw, http.StatusInternalServerError, "internal error")
}
