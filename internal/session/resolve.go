package session

import (
	"github.com/skybi/tenote/internal/tenant"
	"github.com/skybi/tenote/internal/token"
)

// Source names where a resolved tenant came from
type Source string

const (
	SourceNone      Source = "none"
	SourceServer    Source = "server"
	SourcePersisted Source = "persisted"
	SourceToken     Source = "token"
)

// Resolution represents the outcome of ResolveTenant
type Resolution struct {
	Tenant       *tenant.Tenant
	Slug         string
	Subscription tenant.Subscription
	Source       Source
}

// ResolveTenant determines the tenant of a session.
//
// The first source carrying a non-empty slug wins: the server profile's tenant, then the
// persisted tenant, then a minimal tenant synthesized from the token claims. If none of them
// names a slug the tenant stays nil, which is a valid (degraded) state. Any argument may be nil.
// The function is pure; the returned tenant never aliases an argument.
func ResolveTenant(persisted *tenant.Tenant, claims *token.Claims, server *tenant.Tenant) Resolution {
	res := Resolution{Source: SourceNone}

	switch {
	case server.HasSlug():
		res.Tenant = server.Clone()
		res.Source = SourceServer
	case persisted.HasSlug():
		res.Tenant = persisted.Clone()
		res.Source = SourcePersisted
	case claims.HasTenant():
		res.Tenant = &tenant.Tenant{
			Slug:         claims.TenantSlug,
			Subscription: claims.TenantSubscription,
		}
		res.Source = SourceToken
	}

	if res.Tenant != nil {
		res.Slug = res.Tenant.Slug
		res.Subscription = res.Tenant.Subscription
	}
	if res.Subscription == "" && claims != nil {
		res.Subscription = claims.TenantSubscription
	}
	return res
}
