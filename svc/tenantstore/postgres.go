package tenantstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/bizdesk/platform/pkg/pg"
	"github.com/bizdesk/platform/pkg/tenant"
)

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Postgres reads tenants from the tenants table.
type Postgres struct {
	db Querier
}

// NewPostgres creates a Postgres-backed tenant.Store.
func NewPostgres(db Querier) *Postgres {
	return &Postgres{db: db}
}

const selectTenant = `SELECT id, name, host_type, hostname, coalesce(subdomain, ''), coalesce(status, ''), active, created_at FROM tenants `

const findBySubdomainSQL = selectTenant +
	`WHERE host_type = 'subdomain' AND (lower(hostname) = lower($1) OR lower(subdomain) = lower($1)) ORDER BY created_at`

const findByCustomDomainSQL = selectTenant +
	`WHERE host_type = 'custom_domain' AND status = 'cname_active' AND lower(hostname) = ANY($1) ORDER BY created_at`

func (s *Postgres) FindBySubdomain(ctx context.Context, label string) ([]*tenant.Tenant, error) {
	return s.query(ctx, findBySubdomainSQL, label)
}

func (s *Postgres) FindByCustomDomain(ctx context.Context, hosts []string) ([]*tenant.Tenant, error) {
	if len(hosts) == 0 {
		return nil, nil
	}
	return s.query(ctx, findByCustomDomainSQL, hosts)
}

func (s *Postgres) query(ctx context.Context, sql string, args ...any) ([]*tenant.Tenant, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapPgError(err)
	}
	tenants, err := pgx.CollectRows(rows, scanTenant)
	if err != nil {
		return nil, wrapPgError(err)
	}
	return tenants, nil
}

func scanTenant(row pgx.CollectableRow) (*tenant.Tenant, error) {
	var (
		id        pgtype.UUID
		t         tenant.Tenant
		hostType  string
		status    string
		createdAt time.Time
	)
	if err := row.Scan(&id, &t.Name, &hostType, &t.Hostname, &t.Subdomain, &status, &t.Active, &createdAt); err != nil {
		return nil, err
	}
	t.ID = uuid.UUID(id.Bytes)
	t.HostType = tenant.HostType(hostType)
	t.Status = tenant.DomainStatus(status)
	t.CreatedAt = createdAt
	return &t, nil
}

func wrapPgError(err error) error {
	if pg.IsUndefinedTableError(err) {
		return errors.Join(ErrSchemaMissing, err)
	}
	return errors.Join(ErrQueryFailed, err)
}
