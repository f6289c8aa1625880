package remote

import (
	"encoding/json"
	"github.com/skybi/tenote/internal/tenant"
	"strings"
)

// Note represents a note record as exchanged with the notes API
type Note struct {
	ID        string `json:"_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// NoteInput is the body of note create and update requests
type NoteInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// LoginResponse represents the result of a successful login
type LoginResponse struct {
	Token  string         `json:"token"`
	Role   tenant.Role    `json:"role"`
	Email  string         `json:"email"`
	Tenant *tenant.Tenant `json:"tenant"`
}

// Profile represents the server's view of the user a token belongs to
type Profile struct {
	Role   tenant.Role    `json:"role"`
	Email  string         `json:"email"`
	Tenant *tenant.Tenant `json:"tenant"`
}

// Ack represents the acknowledgement body of calls without a meaningful result
type Ack struct {
	Message string `json:"message,omitempty"`
}

// ErrorResponse represents the error body sent by the notes API.
// Older endpoints only send a message (or error) field, newer ones a list of typed errors.
type ErrorResponse struct {
	Status  int      `json:"status,omitempty"`
	Message string   `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
	Errors  []*Error `json:"errors,omitempty"`
}

// Error represents a single typed error present in the ErrorResponse
type Error struct {
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Describe flattens the response into a single human readable message
func (response *ErrorResponse) Describe() string {
	if response.Message != "" {
		return response.Message
	}
	if response.Error != "" {
		return response.Error
	}
	messages := make([]string, 0, len(response.Errors))
	for _, err := range response.Errors {
		if err != nil && err.Message != "" {
			messages = append(messages, err.Message)
		}
	}
	return strings.Join(messages, "; ")
}

// field returns the parameter a typed validation error refers to, if any
func (response *ErrorResponse) field() string {
	for _, err := range response.Errors {
		if err == nil {
			continue
		}
		if name, ok := err.Details["parameter"].(string); ok {
			return name
		}
	}
	return ""
}

func parseErrorResponse(body []byte) *ErrorResponse {
	response := new(ErrorResponse)
	if len(body) == 0 {
		return response
	}
	if err := json.Unmarshal(body, response); err != nil {
		// Not JSON; keep a trimmed version of the raw body as the message
		raw := strings.TrimSpace(string(body))
		if len(raw) > 200 {
			raw = raw[:200]
		}
		return &ErrorResponse{Message: raw}
	}
	return response
}
