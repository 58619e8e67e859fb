package tenant_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizdesk/platform/pkg/tenant"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("establishes subdomain tenant for downstream", func(t *testing.T) {
		t.Parallel()

		acme := subdomainTenant("acme", true)
		acme.Name = "Acme"
		mw := tenant.Middleware(newTestResolver(newFakeStore(acme)))

		var seen *tenant.Tenant
		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = tenant.MustFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "http://acme.platformhost.com/book", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, acme, seen)
		_, ok := tenant.FromContext(req.Context())
		assert.False(t, ok, "tenant must not outlive dispatch")
	})

	t.Run("unknown tenant host gets terminal 404", func(t *testing.T) {
		t.Parallel()

		mw := tenant.Middleware(newTestResolver(newFakeStore(subdomainTenant("acme", true))))
		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be called")
		}))

		req := httptest.NewRequest(http.MethodGet, "http://unknownbiz.platformhost.com/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, tenant.NotFoundMessage+"\n", w.Body.String())
		assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	})

	t.Run("browsers get the static html page", func(t *testing.T) {
		t.Parallel()

		mw := tenant.Middleware(newTestResolver(newFakeStore()))
		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be called")
		}))

		req := httptest.NewRequest(http.MethodGet, "http://unknownbiz.platformhost.com/", nil)
		req.Header.Set("Accept", "text/html,application/xhtml+xml")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), tenant.NotFoundMessage)
		assert.NotContains(t, w.Body.String(), "unknownbiz")
	})

	t.Run("www platform host passes through without lookup", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore(subdomainTenant("www", true))
		mw := tenant.Middleware(newTestResolver(store))

		called := false
		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			_, ok := tenant.FromContext(r.Context())
			assert.False(t, ok)
		}))

		req := httptest.NewRequest(http.MethodGet, "http://www.platformhost.com/pricing", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.True(t, called)
		assert.Zero(t, store.calls())
	})

	t.Run("preview hosts pass through regardless of tenant data", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore(subdomainTenant("myapp", true), customDomainTenant("myapp.onrender.com", tenant.StatusCNAMEActive))
		mw := tenant.Middleware(newTestResolver(store))

		called := false
		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			_, ok := tenant.FromContext(r.Context())
			assert.False(t, ok)
		}))

		req := httptest.NewRequest(http.MethodGet, "http://myapp.onrender.com/health", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.True(t, called)
		assert.Zero(t, store.calls())
	})

	t.Run("platform traffic keeps the inherited context", func(t *testing.T) {
		t.Parallel()

		inherited := subdomainTenant("job", true)
		mw := tenant.Middleware(newTestResolver(newFakeStore()))

		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, inherited, tenant.MustFromContext(r.Context()))
		}))

		req := httptest.NewRequest(http.MethodGet, "http://platformhost.com/", nil)
		req = req.WithContext(tenant.WithTenant(req.Context(), inherited))
		handler.ServeHTTP(httptest.NewRecorder(), req)
	})

	t.Run("custom domain resolves in mixed case", func(t *testing.T) {
		t.Parallel()

		shop := customDomainTenant("shop.example.com", tenant.StatusCNAMEActive)
		mw := tenant.Middleware(newTestResolver(newFakeStore(shop)))

		for _, host := range []string{"shop.example.com", "Shop.Example.COM", "www.shop.example.com"} {
			var seen *tenant.Tenant
			handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = tenant.MustFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Host = host
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code, host)
			assert.Equal(t, shop, seen, host)
		}
	})

	t.Run("store failure degrades to not found", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore(subdomainTenant("acme", true))
		store.setErr(errors.New("database is down"))
		mw := tenant.Middleware(newTestResolver(store))

		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be called")
		}))

		req := httptest.NewRequest(http.MethodGet, "http://acme.platformhost.com/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("downstream panic does not leak the tenant", func(t *testing.T) {
		t.Parallel()

		acme := subdomainTenant("acme", true)
		mw := tenant.Middleware(newTestResolver(newFakeStore(acme)))

		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("booking engine exploded")
		}))

		req := httptest.NewRequest(http.MethodGet, "http://acme.platformhost.com/", nil)
		assert.Panics(t, func() {
			handler.ServeHTTP(httptest.NewRecorder(), req)
		})
		_, ok := tenant.FromContext(req.Context())
		assert.False(t, ok)
	})

	t.Run("nested background scope inside request", func(t *testing.T) {
		t.Parallel()

		acme := subdomainTenant("acme", true)
		other := subdomainTenant("other", true)
		mw := tenant.Middleware(newTestResolver(newFakeStore(acme)))

		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := tenant.Run(r.Context(), other, func(ctx context.Context) error {
				assert.Equal(t, other, tenant.MustFromContext(ctx))
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, acme, tenant.MustFromContext(r.Context()))
		}))

		req := httptest.NewRequest(http.MethodGet, "http://acme.platformhost.com/", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	})

	t.Run("skip paths bypass resolution", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore()
		mw := tenant.Middleware(newTestResolver(store), tenant.WithSkipPaths("/health"))

		called := false
		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))

		req := httptest.NewRequest(http.MethodGet, "http://unknownbiz.platformhost.com/health/ready", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.True(t, called)
		assert.Zero(t, store.calls())
	})

	t.Run("custom not found handler and logging", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		mw := tenant.Middleware(newTestResolver(newFakeStore()),
			tenant.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
			tenant.WithNotFoundHandler(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusGone)
			}),
		)
		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be called")
		}))

		req := httptest.NewRequest(http.MethodGet, "http://ghost.platformhost.com/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusGone, w.Code)
		assert.Contains(t, buf.String(), "business not found")
		assert.Contains(t, buf.String(), "host=ghost.platformhost.com")
	})

	t.Run("observer sees every decision", func(t *testing.T) {
		t.Parallel()

		obs := &recordingObserver{}
		mw := tenant.Middleware(newTestResolver(newFakeStore(subdomainTenant("acme", true))), tenant.WithObserver(obs))
		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		for _, host := range []string{"platformhost.com", "acme.platformhost.com", "nobody.platformhost.com"} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Host = host
			handler.ServeHTTP(httptest.NewRecorder(), req)
		}

		assert.Equal(t, []string{"platform", "found", "not_found"}, obs.outcomes)
	})
}

func TestRequireTenant(t *testing.T) {
	t.Parallel()

	handler := tenant.RequireTenant(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(tenant.WithTenant(req.Context(), subdomainTenant("acme", true)))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

type recordingObserver struct {
	outcomes []string
}

func (o *recordingObserver) ObserveResolution(res tenant.Resolution) {
	o.outcomes = append(o.outcomes, res.Outcome())
}
