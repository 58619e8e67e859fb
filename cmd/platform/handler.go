package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/bizdesk/platform/modules/site"
	"github.com/bizdesk/platform/pkg/clientip"
	"github.com/bizdesk/platform/pkg/environment"
	"github.com/bizdesk/platform/pkg/httpserver"
	"github.com/bizdesk/platform/pkg/requestid"
	"github.com/bizdesk/platform/pkg/tenant"
)

// newHandler assembles the request pipeline: request id, client ip and env
// tagging, then tenant dispatch, then the host-selected route families.
// Health endpoints answer on every host without resolving a tenant.
func newHandler(a *app) http.Handler {
	r := chi.NewRouter()
	r.Use(
		requestid.Middleware,
		clientip.New(a.ipHeads...).Middleware,
		environment.Middleware(a.env),
		tenant.Middleware(a.resolver,
			tenant.WithSkipPaths("/health/", "/metrics"),
			tenant.WithObserver(a.observer),
			tenant.WithLogger(a.log),
		),
	)

	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(a.log, 2*time.Second, a.checks...))
	r.Handle("/metrics", platformOnly(a.resolver, promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	r.Handle("/*", site.Router(tenant.NewGuards(a.resolver), site.RouterOptions{}))

	return otelhttp.NewHandler(r, a.name)
}

// platformOnly hides h from every host that is not one of the platform's own.
func platformOnly(resolver *tenant.Resolver, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if resolver.Classify(r.Host).Kind != tenant.KindPlatform {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}
