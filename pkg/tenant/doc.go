// Package tenant maps every inbound request host to exactly one business (tenant),
// or explicitly to no tenant for platform traffic, and makes that decision visible
// to all code running on behalf of the request.
//
// # Architecture
//
// The package is built from small pieces that share one resolution path:
//
// 1. Classifier - decides whether a host is platform, hosting preview, malformed or a tenant candidate
// 2. Lookup - read-only queries against a Store for subdomains and active custom domains
// 3. Resolver - runs ordered strategies (custom domain, then subdomain), first hit wins
// 4. Middleware - the dispatcher: pass-through, tenant scope, or a terminal 404
// 5. Guards - route predicates built on the same Resolver, so routing and dispatch agree
//
// # Usage
//
//	classifier := tenant.NewClassifier(hostCfg)
//	resolver := tenant.NewResolver(classifier, store,
//		tenant.WithCache(tenant.NewMemoryCache(time.Minute), 30*time.Second),
//	)
//
//	router.Use(tenant.Middleware(resolver,
//		tenant.WithSkipPaths("/health"),
//		tenant.WithLogger(log),
//	))
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//		biz, ok := tenant.FromContext(r.Context())
//		if !ok {
//			// platform traffic
//			return
//		}
//		// biz scopes every query
//	}
//
// # Context scoping
//
// The current tenant lives in the request context, never in process-wide state.
// Run derives a child context for a block of work; the enclosing context is
// unaffected when the block returns, fails or panics. Scope offers explicit
// Enter/Exit tokens for sequential units of work that switch tenants, such as
// ForEach over several businesses in an administrative job.
//
// # Error Handling
//
// Lookups never fail a request. Store errors are logged with the offending host
// and treated as "no match", so an unreachable database yields "Business not
// found" rather than a site-wide 500. Blank and malformed hosts fail open to the
// marketing site, never to a tenant.
package tenant
