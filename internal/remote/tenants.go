package remote

import (
	"context"
	"github.com/skybi/tenote/internal/tenant"
	"net/http"
	"net/url"
)

const resourceTenant = "tenant"

// Upgrade upgrades the tenant to the pro plan
func (client *Client) Upgrade(ctx context.Context, token, slug string) error {
	path := "/tenants/" + url.PathEscape(slug) + "/upgrade"
	return client.call(ctx, token, http.MethodPost, path, resourceTenant, slug, nil, nil)
}

// Invite invites a new user into the tenant
func (client *Client) Invite(ctx context.Context, token, slug, email string, role tenant.Role) error {
	path := "/tenants/" + url.PathEscape(slug) + "/invite"
	body := map[string]string{
		"email": email,
		"role":  string(role),
	}
	return client.call(ctx, token, http.MethodPost, path, resourceTenant, slug, body, nil)
}
