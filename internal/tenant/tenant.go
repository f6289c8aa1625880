package tenant

// Role represents the role a user holds inside their tenant
type Role string

const (
	// RoleAdmin may manage notes, invite users and upgrade the tenant
	RoleAdmin Role = "admin"

	// RoleMember may manage notes but is subject to the free plan quota
	RoleMember Role = "member"
)

// Known reports whether the role is one of the roles this client understands
func (role Role) Known() bool {
	return role == RoleAdmin || role == RoleMember
}

// Subscription represents the subscription tier of a tenant
type Subscription string

const (
	// SubscriptionFree is the quota-limited default plan
	SubscriptionFree Subscription = "free"

	// SubscriptionPro lifts the note quota
	SubscriptionPro Subscription = "pro"
)

// IsPro reports whether the subscription unlocks pro features.
// Every value other than SubscriptionPro (including the empty one) counts as free.
func (sub Subscription) IsPro() bool {
	return sub == SubscriptionPro
}

// Tenant represents an organization-scoped partition of notes and users
type Tenant struct {
	Slug         string       `json:"slug"`
	Subscription Subscription `json:"subscription,omitempty"`
	Name         string       `json:"name,omitempty"`
}

// HasSlug reports whether the tenant is known well enough to address it remotely
func (tenant *Tenant) HasSlug() bool {
	return tenant != nil && tenant.Slug != ""
}

// Clone returns a deep copy of the tenant; nil stays nil
func (tenant *Tenant) Clone() *Tenant {
	if tenant == nil {
		return nil
	}
	cpy := *tenant
	return &cpy
}
