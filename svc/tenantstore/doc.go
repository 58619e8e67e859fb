// Package tenantstore implements tenant.Store over Postgres, MongoDB and a
// YAML-seeded in-memory table.
//
// Every backend answers the same two queries: tenants with host_type
// subdomain whose hostname or subdomain equals a label case-insensitively,
// and tenants with host_type custom_domain and status cname_active whose
// lower-cased hostname is in a candidate set. None of them filter by the
// tenant in scope; tenant resolution runs before any tenant exists.
//
// The Postgres schema ships as goose migrations in Migrations.
package tenantstore
