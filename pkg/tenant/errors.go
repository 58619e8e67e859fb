package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when a candidate host resolves to no tenant.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrInactiveTenant is returned when the resolved tenant is disabled.
	ErrInactiveTenant = errors.New("tenant is inactive")

	// ErrNoTenantInContext is returned when no tenant is found in context.
	ErrNoTenantInContext = errors.New("no tenant in context")

	// ErrUnbalancedExit is returned by Scope.Exit when inner scopes were left open.
	ErrUnbalancedExit = errors.New("tenant scope exited out of order")

	// ErrForeignToken is returned by Scope.Exit for a token issued by another scope.
	ErrForeignToken = errors.New("tenant scope token belongs to another scope")

	// ErrInvalidHostConfig is returned when host configuration cannot be loaded.
	ErrInvalidHostConfig = errors.New("invalid host configuration")
)
