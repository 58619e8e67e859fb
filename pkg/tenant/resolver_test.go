package tenant_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizdesk/platform/pkg/tenant"
)

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	t.Run("subdomain tenant resolves in any case", func(t *testing.T) {
		t.Parallel()

		acme := subdomainTenant("acme", true)
		resolver := newTestResolver(newFakeStore(acme))

		for _, host := range []string{"acme.platformhost.com", "ACME.PLATFORMHOST.COM", "Acme.PlatformHost.com:8443"} {
			res := resolver.Resolve(context.Background(), host)
			require.True(t, res.Found(), host)
			assert.Equal(t, acme, res.Tenant)
			assert.Equal(t, "subdomain", res.Strategy)
			assert.Equal(t, host, res.Host.Raw)
		}
	})

	t.Run("custom domain is tried before subdomain", func(t *testing.T) {
		t.Parallel()

		shopBySub := subdomainTenant("shop", true)
		shopByDomain := customDomainTenant("shop.example.com", tenant.StatusCNAMEActive)
		resolver := newTestResolver(newFakeStore(shopBySub, shopByDomain))

		res := resolver.Resolve(context.Background(), "shop.example.com")
		require.True(t, res.Found())
		assert.Equal(t, shopByDomain, res.Tenant)
		assert.Equal(t, "custom_domain", res.Strategy)
	})

	t.Run("falls back to subdomain when custom domain misses", func(t *testing.T) {
		t.Parallel()

		acme := subdomainTenant("acme", true)
		store := newFakeStore(acme)
		resolver := newTestResolver(store)

		res := resolver.Resolve(context.Background(), "acme.platformhost.com")
		require.True(t, res.Found())
		assert.Len(t, store.domainCalls, 1)
		assert.Equal(t, []string{"acme"}, store.subCalls)
	})

	t.Run("platform and preview hosts issue no query", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore(subdomainTenant("www", true), subdomainTenant("myapp", true))
		resolver := newTestResolver(store)

		for _, host := range []string{"", "platformhost.com", "www.platformhost.com", "myapp.onrender.com", "bad_host!.x.com"} {
			res := resolver.Resolve(context.Background(), host)
			assert.False(t, res.Found(), host)
			assert.True(t, res.Host.IsPlatform(), host)
		}
		assert.Zero(t, store.calls())
	})

	t.Run("reserved labels never reach subdomain lookup", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore(subdomainTenant("admin", true), subdomainTenant("api", true), subdomainTenant("www", true))
		resolver := newTestResolver(store)

		for _, host := range []string{"admin.platformhost.com", "api.platformhost.com", "www.acme.platformhost.com"} {
			res := resolver.Resolve(context.Background(), host)
			assert.False(t, res.Found(), host)
		}
		assert.Empty(t, store.subCalls)
		assert.Len(t, store.domainCalls, 3)
	})

	t.Run("reserved label still resolves as custom domain", func(t *testing.T) {
		t.Parallel()

		biz := customDomainTenant("api.example.com", tenant.StatusCNAMEActive)
		resolver := newTestResolver(newFakeStore(biz))

		res := resolver.Resolve(context.Background(), "api.example.com")
		require.True(t, res.Found())
		assert.Equal(t, biz, res.Tenant)
	})

	t.Run("inactive tenant is not found by default", func(t *testing.T) {
		t.Parallel()

		resolver := newTestResolver(newFakeStore(subdomainTenant("sleepy", false)))

		res := resolver.Resolve(context.Background(), "sleepy.platformhost.com")
		assert.False(t, res.Found())
		assert.True(t, res.Inactive)
		assert.Equal(t, "inactive", res.Outcome())
	})

	t.Run("inactive tenant allowed when configured", func(t *testing.T) {
		t.Parallel()

		sleepy := subdomainTenant("sleepy", false)
		resolver := newTestResolver(newFakeStore(sleepy), tenant.WithRequireActive(false))

		res := resolver.Resolve(context.Background(), "sleepy.platformhost.com")
		require.True(t, res.Found())
		assert.Equal(t, sleepy, res.Tenant)
	})

	t.Run("unknown tenant is not found", func(t *testing.T) {
		t.Parallel()

		resolver := newTestResolver(newFakeStore(subdomainTenant("acme", true)))

		res := resolver.Resolve(context.Background(), "unknownbiz.platformhost.com")
		assert.False(t, res.Found())
		assert.Equal(t, "not_found", res.Outcome())
	})
}

func TestResolver_Cache(t *testing.T) {
	t.Parallel()

	t.Run("positive results are cached", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore(subdomainTenant("acme", true))
		resolver := newTestResolver(store, tenant.WithCache(tenant.NewMemoryCache(time.Minute), time.Minute))

		first := resolver.Resolve(context.Background(), "acme.platformhost.com")
		calls := store.calls()
		second := resolver.Resolve(context.Background(), "ACME.platformhost.com")

		require.True(t, second.Found())
		assert.Equal(t, first.Tenant, second.Tenant)
		assert.Equal(t, "subdomain", second.Strategy)
		assert.Equal(t, "ACME.platformhost.com", second.Host.Raw)
		assert.Equal(t, calls, store.calls())
	})

	t.Run("misses are not cached", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore()
		resolver := newTestResolver(store, tenant.WithCache(tenant.NewMemoryCache(time.Minute), time.Minute))

		assert.False(t, resolver.Resolve(context.Background(), "late.platformhost.com").Found())

		store.mu.Lock()
		store.tenants = append(store.tenants, subdomainTenant("late", true))
		store.mu.Unlock()

		assert.True(t, resolver.Resolve(context.Background(), "late.platformhost.com").Found())
	})
}

func TestResolver_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	acme := subdomainTenant("acme", true)
	resolver := newTestResolver(newFakeStore(acme))

	const numGoroutines = 50
	const numOperations = 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for range numGoroutines {
		go func() {
			defer wg.Done()
			for range numOperations {
				res := resolver.Resolve(context.Background(), "acme.platformhost.com")
				assert.Equal(t, acme, res.Tenant)
			}
		}()
	}
	wg.Wait()
}

func TestResolver_ResolveRequest(t *testing.T) {
	t.Parallel()

	acme := subdomainTenant("acme", true)
	store := newFakeStore(acme)
	resolver := newTestResolver(store)

	t.Run("dispatcher decision is reused", func(t *testing.T) {
		t.Parallel()

		var got tenant.Resolution
		handler := tenant.Middleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = resolver.ResolveRequest(r)
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Host = "acme.platformhost.com"
		handler.ServeHTTP(httptest.NewRecorder(), req)

		require.True(t, got.Found())
		assert.Equal(t, acme, got.Tenant)
		assert.Equal(t, "subdomain", got.Strategy)
	})

	t.Run("resolves when no decision is in context", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Host = "acme.platformhost.com"
		res := resolver.ResolveRequest(req)
		require.True(t, res.Found())
		assert.Equal(t, acme, res.Tenant)
	})
}

func TestResolution_Err(t *testing.T) {
	t.Parallel()

	classifier := tenant.NewClassifier(testHostConfig())
	candidate := classifier.Classify("acme.platformhost.com")

	assert.NoError(t, tenant.Resolution{Host: classifier.Classify("platformhost.com")}.Err())
	assert.NoError(t, tenant.Resolution{Host: candidate, Tenant: subdomainTenant("acme", true)}.Err())
	assert.ErrorIs(t, tenant.Resolution{Host: candidate, Inactive: true}.Err(), tenant.ErrInactiveTenant)
	assert.ErrorIs(t, tenant.Resolution{Host: candidate}.Err(), tenant.ErrTenantNotFound)
}

// gatedStore holds custom-domain queries until release is closed or the
// query context ends.
type gatedStore struct {
	*fakeStore
	entered chan struct{}
	release chan struct{}
}

func newGatedStore(tenants ...*tenant.Tenant) *gatedStore {
	return &gatedStore{
		fakeStore: newFakeStore(tenants...),
		entered:   make(chan struct{}, 1),
		release:   make(chan struct{}),
	}
}

func (s *gatedStore) FindByCustomDomain(ctx context.Context, hosts []string) ([]*tenant.Tenant, error) {
	select {
	case s.entered <- struct{}{}:
	default:
	}
	select {
	case <-s.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.fakeStore.FindByCustomDomain(ctx, hosts)
}

func TestResolver_SharedLookupOutlivesCaller(t *testing.T) {
	t.Parallel()

	acme := subdomainTenant("acme", true)
	store := newGatedStore(acme)
	resolver := newTestResolver(store)

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderDone := make(chan tenant.Resolution, 1)
	go func() {
		leaderDone <- resolver.Resolve(leaderCtx, "acme.platformhost.com")
	}()

	<-store.entered
	cancel()
	select {
	case res := <-leaderDone:
		assert.False(t, res.Found())
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting on the shared lookup")
	}

	followerDone := make(chan tenant.Resolution, 1)
	go func() {
		followerDone <- resolver.Resolve(context.Background(), "acme.platformhost.com")
	}()
	// Let the follower join the lookup still held by the gate.
	time.Sleep(20 * time.Millisecond)
	close(store.release)

	select {
	case res := <-followerDone:
		require.True(t, res.Found())
		assert.Equal(t, acme, res.Tenant)
	case <-time.After(time.Second):
		t.Fatal("follower never resolved")
	}
	assert.Len(t, store.domainCalls, 1, "follower shares the leader's lookup")
}

func TestResolver_LookupTimeout(t *testing.T) {
	t.Parallel()

	store := newGatedStore(customDomainTenant("shop.example.com", tenant.StatusCNAMEActive))
	resolver := newTestResolver(store, tenant.WithLookupTimeout(20*time.Millisecond))

	start := time.Now()
	res := resolver.Resolve(context.Background(), "shop.example.com")
	assert.False(t, res.Found())
	assert.Less(t, time.Since(start), time.Second)
}

func TestResolver_CustomStrategies(t *testing.T) {
	t.Parallel()

	fixed := subdomainTenant("fixed", true)
	resolver := tenant.NewResolver(tenant.NewClassifier(testHostConfig()), nil,
		tenant.WithStrategies(staticStrategy{t: fixed}))

	res := resolver.Resolve(context.Background(), "anything.platformhost.com")
	require.True(t, res.Found())
	assert.Equal(t, "static", res.Strategy)
	assert.Equal(t, fixed, res.Tenant)
}

type staticStrategy struct {
	t *tenant.Tenant
}

func (staticStrategy) Name() string { return "static" }

func (s staticStrategy) Resolve(context.Context, tenant.Host) (*tenant.Tenant, bool) {
	return s.t, true
}
