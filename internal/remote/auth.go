package remote

import (
	"context"
	"errors"
	"net/http"
)

var errMissingToken = errors.New("login response carries no token")

// Login exchanges credentials for a session token.
// Every failure is reported as an AuthError.
func (client *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}
	resp := new(LoginResponse)
	if err := client.call(ctx, "", http.MethodPost, "/auth/login", "account", "", body, resp); err != nil {
		return nil, asAuthError(err)
	}
	if resp.Token == "" {
		return nil, &AuthError{Message: "invalid login response", Cause: errMissingToken}
	}
	return resp, nil
}

// Profile retrieves the profile the given token belongs to.
// Every failure (including a malformed body) is reported as an AuthError.
func (client *Client) Profile(ctx context.Context, token string) (*Profile, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	resp := new(Profile)
	if err := client.call(ctx, token, http.MethodGet, "/auth/me", "profile", "", nil, resp); err != nil {
		return nil, asAuthError(err)
	}
	return resp, nil
}
