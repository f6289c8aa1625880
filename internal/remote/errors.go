package remote

import (
	"fmt"
	"net/http"
)

// ErrNotAuthenticated is returned by operations that require a session token when there is none
var ErrNotAuthenticated = &AuthError{Message: "not authenticated"}

// AuthError represents bad credentials, an expired or invalid token or an unreachable auth endpoint
type AuthError struct {
	Status  int
	Message string
	Cause   error
}

func (err *AuthError) Error() string {
	return describe("authentication failed", err.Status, err.Message, err.Cause)
}

func (err *AuthError) Unwrap() error {
	return err.Cause
}

// ValidationError represents content the server (or the client-side required field check) rejected,
// including quota violations
type ValidationError struct {
	Status  int
	Field   string
	Message string
	Cause   error
}

func (err *ValidationError) Error() string {
	message := err.Message
	if err.Field != "" {
		message = err.Field + ": " + message
	}
	return describe("validation failed", err.Status, message, err.Cause)
}

func (err *ValidationError) Unwrap() error {
	return err.Cause
}

// NotFoundError represents an operation on a resource that no longer exists
type NotFoundError struct {
	Resource string
	ID       string
	Message  string
}

func (err *NotFoundError) Error() string {
	if err.ID == "" {
		return describe(err.Resource+" not found", http.StatusNotFound, err.Message, nil)
	}
	return describe(fmt.Sprintf("%s %q not found", err.Resource, err.ID), http.StatusNotFound, err.Message, nil)
}

// TransportError represents a generic network, server or decoding failure
type TransportError struct {
	Op     string
	Status int
	Cause  error
}

func (err *TransportError) Error() string {
	if err.Status > 0 {
		return fmt.Sprintf("%s: unexpected status %d: %v", err.Op, err.Status, err.Cause)
	}
	return fmt.Sprintf("%s: %v", err.Op, err.Cause)
}

func (err *TransportError) Unwrap() error {
	return err.Cause
}

func describe(prefix string, status int, message string, cause error) string {
	out := prefix
	if status > 0 {
		out += fmt.Sprintf(" (%d)", status)
	}
	if message != "" {
		out += ": " + message
	}
	if cause != nil && message == "" {
		out += ": " + cause.Error()
	}
	return out
}

// classifyStatus maps a non-2xx response of a note or tenant call onto the error taxonomy
func classifyStatus(op, resource, id string, status int, message string) error {
	switch {
	case status == http.StatusUnauthorized:
		return &AuthError{Status: status, Message: message}
	case status == http.StatusNotFound:
		return &NotFoundError{Resource: resource, ID: id, Message: message}
	case status >= 400 && status < 500:
		return &ValidationError{Status: status, Message: message}
	default:
		return &TransportError{Op: op, Status: status, Cause: fmt.Errorf("%s", orDefault(message, http.StatusText(status)))}
	}
}

// asAuthError collapses any failure of a session-affecting call into an AuthError
func asAuthError(err error) error {
	if err == nil {
		return nil
	}
	switch typed := err.(type) {
	case *AuthError:
		return typed
	case *ValidationError:
		return &AuthError{Status: typed.Status, Message: typed.Message, Cause: typed}
	case *NotFoundError:
		return &AuthError{Status: http.StatusNotFound, Message: typed.Message, Cause: typed}
	case *TransportError:
		return &AuthError{Status: typed.Status, Cause: typed}
	default:
		return &AuthError{Cause: err}
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
