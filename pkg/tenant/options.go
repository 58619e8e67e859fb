package tenant

import (
	"log/slog"
	"net/http"
)

// config holds middleware configuration.
type config struct {
	notFound  http.HandlerFunc
	skipPaths []string
	observer  Observer
	logger    *slog.Logger
}

// Option configures the middleware.
type Option func(*config)

// WithNotFoundHandler replaces the response for candidate hosts with no tenant.
// The handler must not expose tenant data.
func WithNotFoundHandler(h http.HandlerFunc) Option {
	return func(c *config) {
		if h != nil {
			c.notFound = h
		}
	}
}

// WithSkipPaths sets path prefixes served without tenant resolution, such as
// health checks. They run with no tenant in scope.
func WithSkipPaths(paths ...string) Option {
	return func(c *config) {
		c.skipPaths = append(c.skipPaths, paths...)
	}
}

// WithObserver registers an observer for dispatcher decisions.
func WithObserver(o Observer) Option {
	return func(c *config) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithLogger sets a custom logger for the middleware.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}
