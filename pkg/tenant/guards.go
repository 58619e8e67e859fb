package tenant

import "net/http"

// Guard is a route-matching predicate over a request.
type Guard func(r *http.Request) bool

// Guards are route constraints built on the same Resolver as the middleware.
// Behind the middleware they read its decision from the request context, so
// they never query the store a second time.
type Guards struct {
	resolver *Resolver
}

// NewGuards creates route guards sharing resolver with the dispatcher.
func NewGuards(resolver *Resolver) *Guards {
	return &Guards{resolver: resolver}
}

// Subdomain matches candidate hosts whose non-reserved label resolved to a tenant.
func (g *Guards) Subdomain(r *http.Request) bool {
	return resolvedBy(g.resolver.ResolveRequest(r), SubdomainStrategy{}.Name())
}

// CustomDomain matches hosts configured as an active custom domain.
func (g *Guards) CustomDomain(r *http.Request) bool {
	return resolvedBy(g.resolver.ResolveRequest(r), CustomDomainStrategy{}.Name())
}

// TenantPublic matches tenant-facing hosts: not a canonical platform host and
// resolved to a tenant.
func (g *Guards) TenantPublic(r *http.Request) bool {
	res := g.resolver.ResolveRequest(r)
	if g.resolver.Classifier().IsCanonical(res.Host.Name) {
		return false
	}
	return res.Found()
}

// BusinessDomain admits tenant-management routes on subdomain-shaped or custom
// domain hosts. It intentionally does not require the subdomain to resolve, so
// the not-found decision is left to the dispatcher and controllers.
func (g *Guards) BusinessDomain(r *http.Request) bool {
	h := g.resolver.Classify(r.Host)
	switch {
	case h.Kind == KindHostingPreview:
		return false
	case h.Kind == KindCandidate && h.Label != "" && h.Label != "www":
		return true
	}
	return g.CustomDomain(r)
}

// Not negates a guard.
func Not(g Guard) Guard {
	return func(r *http.Request) bool { return !g(r) }
}

func resolvedBy(res Resolution, strategy string) bool {
	return res.Found() && res.Strategy == strategy
}
