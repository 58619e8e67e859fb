package tenant

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"
)

// Strategy is one way of turning a candidate host into a tenant.
type Strategy interface {
	// Name identifies the strategy in logs and metrics.
	Name() string
	// Resolve returns the tenant for host, or false when it has no match.
	Resolve(ctx context.Context, host Host) (*Tenant, bool)
}

// CustomDomainStrategy matches the full host against active custom domains.
type CustomDomainStrategy struct {
	Lookup *Lookup
}

func (CustomDomainStrategy) Name() string { return "custom_domain" }

func (s CustomDomainStrategy) Resolve(ctx context.Context, host Host) (*Tenant, bool) {
	if host.Kind != KindCandidate {
		return nil, false
	}
	return s.Lookup.FindByCustomDomain(ctx, host.Name)
}

// SubdomainStrategy matches the leftmost label against tenant subdomains.
// Reserved labels are never looked up.
type SubdomainStrategy struct {
	Lookup *Lookup
}

func (SubdomainStrategy) Name() string { return "subdomain" }

func (s SubdomainStrategy) Resolve(ctx context.Context, host Host) (*Tenant, bool) {
	label := host.SubdomainLabel()
	if label == "" {
		return nil, false
	}
	return s.Lookup.FindBySubdomain(ctx, label)
}

// Resolution is the outcome of resolving one request host.
type Resolution struct {
	Host   Host
	Tenant *Tenant
	// Strategy names the strategy that produced Tenant, or is empty.
	Strategy string
	// Inactive is set when a tenant matched but is disabled and was rejected.
	Inactive bool
}

// Err explains why a candidate host did not resolve: ErrInactiveTenant or
// ErrTenantNotFound. It is nil for platform hosts and resolved tenants.
func (r Resolution) Err() error {
	switch {
	case r.Host.IsPlatform(), r.Found():
		return nil
	case r.Inactive:
		return ErrInactiveTenant
	default:
		return ErrTenantNotFound
	}
}

// Found reports whether a tenant was resolved.
func (r Resolution) Found() bool {
	return r.Tenant != nil
}

// DefaultLookupTimeout bounds a store lookup when WithLookupTimeout is not set.
const DefaultLookupTimeout = 5 * time.Second

// Resolver classifies hosts and runs strategies in a fixed order, first hit wins.
// Both the dispatcher middleware and the route guards use it, so route
// selection and tenant establishment always agree.
type Resolver struct {
	classifier    *Classifier
	strategies    []Strategy
	cache         Cache
	cacheTTL      time.Duration
	lookupTimeout time.Duration
	requireActive bool
	logger        *slog.Logger
	group         singleflight.Group
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithStrategies replaces the default strategy order.
func WithStrategies(strategies ...Strategy) ResolverOption {
	return func(r *Resolver) {
		r.strategies = strategies
	}
}

// WithCache caches positive resolutions for ttl. Misses are never cached.
func WithCache(cache Cache, ttl time.Duration) ResolverOption {
	return func(r *Resolver) {
		if cache != nil {
			r.cache = cache
			r.cacheTTL = ttl
		}
	}
}

// WithLookupTimeout bounds one shared store lookup. Defaults to DefaultLookupTimeout.
func WithLookupTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d > 0 {
			r.lookupTimeout = d
		}
	}
}

// WithRequireActive controls whether disabled tenants are treated as not found.
// Enabled by default.
func WithRequireActive(require bool) ResolverOption {
	return func(r *Resolver) {
		r.requireActive = require
	}
}

// WithResolverLogger sets the logger used by the resolver and its default lookup.
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a Resolver. Without WithStrategies it tries the custom
// domain first and the subdomain second.
func NewResolver(classifier *Classifier, store Store, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		classifier:    classifier,
		cache:         NewNoOpCache(),
		lookupTimeout: DefaultLookupTimeout,
		requireActive: true,
		logger:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.strategies == nil {
		lookup := NewLookup(store, r.logger)
		r.strategies = []Strategy{
			CustomDomainStrategy{Lookup: lookup},
			SubdomainStrategy{Lookup: lookup},
		}
	}
	return r
}

// Classifier returns the classifier shared by the resolver's consumers.
func (r *Resolver) Classifier() *Classifier {
	return r.classifier
}

// Classify is shorthand for r.Classifier().Classify.
func (r *Resolver) Classify(host string) Host {
	return r.classifier.Classify(host)
}

// Resolve classifies host and, for candidates, runs the strategies.
// Platform, preview and malformed hosts never reach the store.
func (r *Resolver) Resolve(ctx context.Context, host string) Resolution {
	h := r.classifier.Classify(host)
	if h.IsPlatform() {
		return Resolution{Host: h}
	}
	return r.resolve(ctx, h)
}

// ResolveRequest returns the decision the dispatcher made for req, so route
// selection never disagrees with the tenant in scope. Without one, for
// example on skipped paths, req.Host is resolved through the cached path.
func (r *Resolver) ResolveRequest(req *http.Request) Resolution {
	if res, ok := ResolutionFromContext(req.Context()); ok && res.Host.Raw == req.Host {
		return res
	}
	return r.Resolve(req.Context(), req.Host)
}

// resolve shares one lookup per host between concurrent callers. The lookup
// runs detached from any single caller, bounded by the lookup timeout, and
// each caller stops waiting when its own ctx is done.
func (r *Resolver) resolve(ctx context.Context, h Host) Resolution {
	if cached, ok := r.cache.Get(ctx, h.Name); ok {
		return cached.withHost(h)
	}

	ch := r.group.DoChan(h.Name, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.lookupTimeout)
		defer cancel()

		res := r.runStrategies(lookupCtx, h)
		if res.Found() {
			if err := r.cache.Set(lookupCtx, h.Name, res, r.cacheTTL); err != nil {
				r.logger.WarnContext(ctx, "tenant cache write failed",
					slog.String("host", h.Name), slog.Any("error", err))
			}
		}
		return res, nil
	})

	select {
	case v := <-ch:
		return v.Val.(Resolution).withHost(h)
	case <-ctx.Done():
		return Resolution{Host: h}
	}
}

func (r *Resolver) runStrategies(ctx context.Context, h Host) Resolution {
	res := Resolution{Host: h}
	for _, s := range r.strategies {
		t, ok := s.Resolve(ctx, h)
		if !ok {
			continue
		}
		if r.requireActive && !t.Active {
			res.Inactive = true
			continue
		}
		res.Tenant = t
		res.Strategy = s.Name()
		return res
	}
	return res
}

func (res Resolution) withHost(h Host) Resolution {
	res.Host = h
	return res
}
