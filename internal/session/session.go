// Package session holds the authority on who the current user is.
//
// A Session is built from three inconsistent sources: the bearer token (and the claims decoded
// from it), the session snapshot persisted in a storage.SessionStore and the profile served by
// the notes API. State combines them, keeps the snapshot persisted and fails closed whenever the
// server can no longer confirm the session.
package session

import (
	"github.com/skybi/tenote/internal/tenant"
)

// Keys under which the session snapshot is persisted
const (
	KeyToken        = "token"
	KeyRole         = "role"
	KeyEmail        = "email"
	KeyTenant       = "tenant"
	KeySlug         = "slug"
	KeySubscription = "subscription"
)

// Keys lists every persisted key
var Keys = []string{KeyToken, KeyRole, KeyEmail, KeyTenant, KeySlug, KeySubscription}

// Session represents the working state of an authenticated user.
// A session without a token does not exist; State never hands one out.
type Session struct {
	Token  string
	Role   tenant.Role
	Email  string
	Tenant *tenant.Tenant

	// Slug and Subscription are derived from the resolved tenant (and the token claims as a
	// fallback); they are never set independently
	Slug         string
	Subscription tenant.Subscription
}

// Clone returns a deep copy of the session; nil stays nil
func (session *Session) Clone() *Session {
	if session == nil {
		return nil
	}
	cpy := *session
	cpy.Tenant = session.Tenant.Clone()
	return &cpy
}

// EffectiveSubscription returns the subscription entitlement decisions are based on.
// Without a tenant the most restrictive plan applies.
func (session *Session) EffectiveSubscription() tenant.Subscription {
	if session == nil || session.Tenant == nil {
		return tenant.SubscriptionFree
	}
	if session.Tenant.Subscription != "" {
		return session.Tenant.Subscription
	}
	if session.Subscription != "" {
		return session.Subscription
	}
	return tenant.SubscriptionFree
}

// TenantSlug returns the slug of the session's tenant, if known
func (session *Session) TenantSlug() string {
	if session == nil {
		return ""
	}
	if session.Tenant.HasSlug() {
		return session.Tenant.Slug
	}
	return session.Slug
}
