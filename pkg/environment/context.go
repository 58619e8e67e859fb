package environment

import (
	"context"
	"strings"
)

// Environment is the deployment stage the process runs in.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Parse maps common spellings ("prod", "stage", "dev") onto an Environment.
// Unknown values are returned lower-cased as-is.
func Parse(s string) Environment {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "prod", "production":
		return Production
	case "stage", "staging":
		return Staging
	case "", "dev", "development", "local":
		return Development
	default:
		return Environment(v)
	}
}

// IsProduction reports whether e is Production.
func (e Environment) IsProduction() bool { return e == Production }

// IsDevelopment reports whether e is Development.
func (e Environment) IsDevelopment() bool { return e == Development }

type contextKey struct{}

// WithContext stores env in ctx.
func WithContext(ctx context.Context, env Environment) context.Context {
	return context.WithValue(ctx, contextKey{}, env)
}

// FromContext returns the environment stored in ctx, or "".
func FromContext(ctx context.Context) Environment {
	if ctx == nil {
		return ""
	}
	env, _ := ctx.Value(contextKey{}).(Environment)
	return env
}
