package tenant

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// Middleware resolves the tenant of every request from its Host header.
//
// Platform, hosting-preview and malformed hosts pass through untouched and
// without any lookup. Candidate hosts that resolve run the rest of the chain
// with the tenant in the request context; candidate hosts that do not resolve
// get a terminal 404 and the chain is never invoked.
func Middleware(resolver *Resolver, opts ...Option) func(http.Handler) http.Handler {
	cfg := &config{
		notFound: NotFoundHandler,
		observer: noopObserver{},
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			res := resolver.Resolve(r.Context(), r.Host)
			cfg.observer.ObserveResolution(res)

			if res.Host.IsPlatform() {
				next.ServeHTTP(w, r.WithContext(withResolution(r.Context(), res)))
				return
			}

			if !res.Found() {
				cfg.logger.InfoContext(r.Context(), "business not found",
					slog.String("host", res.Host.Name),
					slog.String("label", res.Host.Label),
					slog.Any("error", res.Err()),
				)
				cfg.notFound(w, r)
				return
			}

			_ = Run(r.Context(), res.Tenant, func(ctx context.Context) error {
				next.ServeHTTP(w, r.WithContext(withResolution(ctx, res)))
				return nil
			})
		})
	}
}

// RequireTenant ensures a tenant is in scope, answering 404 otherwise.
// Mount it on route families that only make sense for a resolved tenant.
func RequireTenant(notFound http.HandlerFunc) func(http.Handler) http.Handler {
	if notFound == nil {
		notFound = NotFoundHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := FromContext(r.Context()); !ok {
				notFound(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
