// Package token decodes the claims embedded in the bearer tokens issued by the notes API.
//
// Decoding is a convenience for the client: the signature is never verified here and the
// resulting claims must not be used for authorization decisions. The server stays the
// authority on what a token is allowed to do.
package token

import (
	"fmt"
	"github.com/golang-jwt/jwt/v5"
	"github.com/skybi/tenote/internal/tenant"
)

// Claims represents the claims of interest carried by a bearer token
type Claims struct {
	jwt.RegisteredClaims

	TenantSlug         string              `json:"tenantSlug,omitempty"`
	TenantSubscription tenant.Subscription `json:"tenantSubscription,omitempty"`
	Role               tenant.Role         `json:"role,omitempty"`
	Email              string              `json:"email,omitempty"`
}

// HasTenant reports whether the claims name a tenant
func (claims *Claims) HasTenant() bool {
	return claims != nil && claims.TenantSlug != ""
}

// DecodeError is returned whenever a token could not be decoded.
// Callers treat it as "no claims available", never as a fatal condition.
type DecodeError struct {
	Cause error
}

func (err *DecodeError) Error() string {
	return fmt.Sprintf("token: could not decode claims: %v", err.Cause)
}

func (err *DecodeError) Unwrap() error {
	return err.Cause
}

var parser = jwt.NewParser()

// Decode extracts the claims of the given raw token without verifying its signature
func Decode(raw string) (claims *Claims, err error) {
	if raw == "" {
		return nil, &DecodeError{Cause: jwt.ErrTokenMalformed}
	}

	// The parser is not expected to panic, but the token is untrusted input
	defer func() {
		if rec := recover(); rec != nil {
			claims = nil
			err = &DecodeError{Cause: fmt.Errorf("panic while parsing: %v", rec)}
		}
	}()

	parsed := new(Claims)
	if _, _, err := parser.ParseUnverified(raw, parsed); err != nil {
		return nil, &DecodeError{Cause: err}
	}
	return parsed, nil
}
