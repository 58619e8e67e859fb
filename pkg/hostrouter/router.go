package hostrouter

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bizdesk/platform/pkg/tenant"
)

// Family is one host-selected group of routes.
type Family struct {
	Name    string
	Guard   tenant.Guard
	Handler http.Handler
}

// Router dispatches requests to the first family whose guard matches.
// Families must be registered before serving; Router is then safe for concurrent use.
type Router struct {
	families []Family
	fallback http.Handler
	logger   *slog.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithFallback sets the handler for requests no family admits.
// Defaults to http.NotFound.
func WithFallback(h http.Handler) Option {
	return func(rt *Router) {
		if h != nil {
			rt.fallback = h
		}
	}
}

// WithLogger sets the logger used for debug output of family selection.
func WithLogger(logger *slog.Logger) Option {
	return func(rt *Router) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

// New creates an empty Router.
func New(opts ...Option) *Router {
	rt := &Router{
		fallback: http.NotFoundHandler(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Family registers a chi-routed family built by fn and returns its router.
func (rt *Router) Family(name string, guard tenant.Guard, fn func(r chi.Router)) chi.Router {
	r := chi.NewRouter()
	if fn != nil {
		fn(r)
	}
	rt.Handle(name, guard, r)
	return r
}

// Handle registers h as a family. A nil guard matches every request.
func (rt *Router) Handle(name string, guard tenant.Guard, h http.Handler) {
	if guard == nil {
		guard = func(*http.Request) bool { return true }
	}
	rt.families = append(rt.families, Family{Name: name, Guard: guard, Handler: h})
}

// Families returns the registered families in evaluation order.
func (rt *Router) Families() []Family {
	out := make([]Family, len(rt.families))
	copy(out, rt.families)
	return out
}

// Match returns the family admitting r.
func (rt *Router) Match(r *http.Request) (Family, bool) {
	for _, f := range rt.families {
		if f.Guard(r) {
			return f, true
		}
	}
	return Family{}, false
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f, ok := rt.Match(r)
	if !ok {
		rt.logger.DebugContext(r.Context(), "no route family matched", slog.String("host", r.Host))
		rt.fallback.ServeHTTP(w, r)
		return
	}
	rt.logger.DebugContext(r.Context(), "route family matched",
		slog.String("host", r.Host), slog.String("family", f.Name))
	f.Handler.ServeHTTP(w, r.WithContext(withFamily(r.Context(), f.Name)))
}

type familyKey struct{}

func withFamily(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, familyKey{}, name)
}

// FamilyFromContext returns the name of the family serving the request.
func FamilyFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(familyKey{}).(string)
	return name, ok && name != ""
}

// LoggerExtractor returns a logger.ContextExtractor that adds route_family.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if name, ok := FamilyFromContext(ctx); ok {
			return slog.String("route_family", name), true
		}
		return slog.Attr{}, false
	}
}

// All admits a request only when every guard does.
func All(guards ...tenant.Guard) tenant.Guard {
	return func(r *http.Request) bool {
		for _, g := range guards {
			if !g(r) {
				return false
			}
		}
		return true
	}
}

// PathPrefix admits requests whose path is prefix or lies below it.
func PathPrefix(prefix string) tenant.Guard {
	prefix = strings.TrimSuffix(prefix, "/")
	return func(r *http.Request) bool {
		p := r.URL.Path
		return p == prefix || strings.HasPrefix(p, prefix+"/")
	}
}
