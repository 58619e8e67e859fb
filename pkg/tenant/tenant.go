package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// HostType tells how a tenant is addressed.
type HostType string

const (
	HostTypeSubdomain    HostType = "subdomain"
	HostTypeCustomDomain HostType = "custom_domain"
)

// DomainStatus is the activation state of a custom domain.
// Only StatusCNAMEActive domains are eligible for routing.
type DomainStatus string

const (
	StatusPending     DomainStatus = "pending"
	StatusCNAMEActive DomainStatus = "cname_active"
	StatusFailed      DomainStatus = "failed"
)

// Tenant is a business account addressable by one subdomain or one active custom domain.
// The record is owned by the persistence layer; this package only reads it.
type Tenant struct {
	ID        uuid.UUID    `json:"id" bson:"_id" yaml:"id"`
	Name      string       `json:"name" bson:"name" yaml:"name"`
	HostType  HostType     `json:"host_type" bson:"host_type" yaml:"host_type"`
	Hostname  string       `json:"hostname" bson:"hostname" yaml:"hostname"`
	Subdomain string       `json:"subdomain,omitempty" bson:"subdomain,omitempty" yaml:"subdomain"`
	Status    DomainStatus `json:"status,omitempty" bson:"status,omitempty" yaml:"status"`
	Active    bool         `json:"active" bson:"active" yaml:"active"`
	CreatedAt time.Time    `json:"created_at" bson:"created_at" yaml:"created_at"`
}

// Routable reports whether the tenant may be reached through a custom domain.
func (t *Tenant) Routable() bool {
	return t != nil && t.HostType == HostTypeCustomDomain && t.Status == StatusCNAMEActive
}

// Store is the read-only query surface of the tenant persistence layer.
// Implementations must not filter by the tenant stored in ctx.
type Store interface {
	// FindBySubdomain returns tenants with host_type=subdomain whose hostname
	// or subdomain equals label, compared case-insensitively.
	FindBySubdomain(ctx context.Context, label string) ([]*Tenant, error)

	// FindByCustomDomain returns tenants with host_type=custom_domain and
	// status=cname_active whose lower-cased hostname is one of hosts.
	FindByCustomDomain(ctx context.Context, hosts []string) ([]*Tenant, error)
}
