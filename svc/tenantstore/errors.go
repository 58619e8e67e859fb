package tenantstore

import "errors"

var (
	ErrQueryFailed     = errors.New("tenantstore: query failed")
	ErrSchemaMissing   = errors.New("tenantstore: tenants table missing, run migrations")
	ErrInvalidSeed     = errors.New("tenantstore: invalid seed file")
	ErrUnknownBackend  = errors.New("tenantstore: unknown backend")
	ErrDuplicateTenant = errors.New("tenantstore: duplicate tenant host")
)
