package remotetest

import (
	"github.com/hashicorp/go-memdb"
	"github.com/skybi/tenote/internal/tenant"
)

const (
	tableUsers       = "users"
	tableTenants     = "tenants"
	tableNotes       = "notes"
	tableRevocations = "revocations"
)

var dbSchema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		tableUsers: {
			Name: tableUsers,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "Email", Lowercase: true},
				},
				"tenant": {
					Name:    "tenant",
					Unique:  false,
					Indexer: &memdb.StringFieldIndex{Field: "TenantSlug"},
				},
			},
		},
		tableTenants: {
			Name: tableTenants,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "Slug"},
				},
			},
		},
		tableNotes: {
			Name: tableNotes,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "ID"},
				},
				"tenant": {
					Name:    "tenant",
					Unique:  false,
					Indexer: &memdb.StringFieldIndex{Field: "TenantSlug"},
				},
			},
		},
		tableRevocations: {
			Name: tableRevocations,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "TokenID"},
				},
			},
		},
	},
}

type userRecord struct {
	Email        string
	PasswordHash []byte
	Role       tenant.Role
	TenantSlug string
}

type tenantRecord struct {
	Slug         string
	Name         string
	Subscription tenant.Subscription
}

func (record *tenantRecord) toTenant() *tenant.Tenant {
	return &tenant.Tenant{
		Slug:         record.Slug,
		Subscription: record.Subscription,
		Name:         record.Name,
	}
}

type noteRecord struct {
	ID         string
	TenantSlug string
	Title      string
	Content    string
	CreatedAt  string
	UpdatedAt  string
	Seq        uint64
}

type revocationRecord struct {
	TokenID string
}
