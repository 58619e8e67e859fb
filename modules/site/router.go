// Package site mounts the three host-selected route families of the platform:
// tenant-public pages, tenant management and the platform's own site.
package site

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bizdesk/platform/pkg/hostrouter"
	"github.com/bizdesk/platform/pkg/tenant"
)

// Mountable is a handler group contributed to a family.
type Mountable interface {
	Handle() http.Handler
}

// RouterOptions supplies optional extra routes per family. Each family always
// serves its built-in index.
type RouterOptions struct {
	Platform     Mountable
	TenantPublic Mountable
	Business     Mountable
}

// Router builds the host-selected families in their fixed order: business
// management under /manage, then tenant-public pages, with the platform site
// as fallback.
//
// Mount it behind tenant.Middleware so families see the resolved tenant.
func Router(guards *tenant.Guards, opts RouterOptions) *hostrouter.Router {
	platform := chi.NewRouter()
	platform.Get("/", platformIndex)
	if opts.Platform != nil {
		platform.Mount("/app", opts.Platform.Handle())
	}

	rt := hostrouter.New(hostrouter.WithFallback(platform))

	rt.Family("business", hostrouter.All(guards.BusinessDomain, hostrouter.PathPrefix("/manage")), func(r chi.Router) {
		r.Use(tenant.RequireTenant(nil))
		r.Get("/manage", manageIndex)
		if opts.Business != nil {
			r.Mount("/manage/app", opts.Business.Handle())
		}
	})

	rt.Family("tenant-public", guards.TenantPublic, func(r chi.Router) {
		r.Use(tenant.RequireTenant(nil))
		r.Get("/", tenantIndex)
		if opts.TenantPublic != nil {
			r.Mount("/p", opts.TenantPublic.Handle())
		}
	})

	return rt
}

type tenantView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	HostType string `json:"host_type"`
}

func viewOf(t *tenant.Tenant) tenantView {
	return tenantView{ID: t.ID.String(), Name: t.Name, HostType: string(t.HostType)}
}

func platformIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"site": "platform"})
}

func tenantIndex(w http.ResponseWriter, r *http.Request) {
	t := tenant.MustFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"site": "tenant", "tenant": viewOf(t)})
}

func manageIndex(w http.ResponseWriter, r *http.Request) {
	t := tenant.MustFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"site": "manage", "tenant": viewOf(t)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
