package tenant

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

// WithTenant returns a child context in which t is the current tenant.
// A nil t yields a context explicitly scoped to "no tenant".
func WithTenant(ctx context.Context, t *Tenant) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// WithoutTenant returns a child context with no current tenant.
// Lookups use it so the query that determines the tenant is never tenant-filtered.
func WithoutTenant(ctx context.Context) context.Context {
	if t, _ := FromContext(ctx); t == nil {
		return ctx
	}
	return WithTenant(ctx, nil)
}

// FromContext retrieves the current tenant.
// Returns nil, false if no tenant is in scope.
func FromContext(ctx context.Context) (*Tenant, bool) {
	if ctx == nil {
		return nil, false
	}
	t, ok := ctx.Value(contextKey{}).(*Tenant)
	if !ok || t == nil {
		return nil, false
	}
	return t, true
}

// IDFromContext retrieves just the tenant ID from the context.
func IDFromContext(ctx context.Context) (uuid.UUID, bool) {
	t, ok := FromContext(ctx)
	if !ok {
		return uuid.UUID{}, false
	}
	return t.ID, true
}

// MustFromContext panics if no tenant is in scope. Use it only in handlers
// mounted behind the tenant middleware.
func MustFromContext(ctx context.Context) *Tenant {
	t, ok := FromContext(ctx)
	if !ok {
		panic(ErrNoTenantInContext)
	}
	return t
}

// Run calls fn with a context scoped to t. The caller's ctx is never modified,
// so the enclosing tenant is back in effect once fn returns, fails or panics.
func Run(ctx context.Context, t *Tenant, fn func(ctx context.Context) error) error {
	return fn(WithTenant(ctx, t))
}

type resolutionKey struct{}

func withResolution(ctx context.Context, res Resolution) context.Context {
	return context.WithValue(ctx, resolutionKey{}, res)
}

// ResolutionFromContext returns the dispatcher's decision for the request
// being served. It is absent on skipped paths and outside the middleware.
func ResolutionFromContext(ctx context.Context) (Resolution, bool) {
	res, ok := ctx.Value(resolutionKey{}).(Resolution)
	return res, ok
}

// LoggerExtractor returns a logger.ContextExtractor that adds tenant_id.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IDFromContext(ctx); ok {
			return slog.String("tenant_id", id.String()), true
		}
		return slog.Attr{}, false
	}
}
