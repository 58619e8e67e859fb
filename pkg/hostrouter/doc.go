// Package hostrouter selects a route family by request host.
//
// A Router holds an ordered list of families, each a guard paired with a
// handler. The first family whose guard admits the request serves it; when
// none matches the fallback runs. Guards are usually the tenant.Guards methods
// so family selection and tenant establishment share one resolver.
//
// Usage:
//
//	guards := tenant.NewGuards(resolver)
//	rt := hostrouter.New(hostrouter.WithFallback(platformRoutes))
//	manage := hostrouter.All(guards.BusinessDomain, hostrouter.PathPrefix("/manage"))
//	rt.Family("business", manage, func(r chi.Router) {
//		r.Get("/manage", dashboard)
//	})
//	rt.Family("tenant-public", guards.TenantPublic, func(r chi.Router) {
//		r.Get("/", bookingHome)
//	})
//
// Each family is a chi router, so families keep their own middleware stacks.
package hostrouter
