package tenant_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizdesk/platform/pkg/tenant"
)

func TestCandidateHosts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		host string
		want []string
	}{
		{host: "example.com", want: []string{"example.com", "www.example.com"}},
		{host: "www.example.com", want: []string{"www.example.com", "example.com"}},
		{host: "WWW.Example.COM", want: []string{"www.example.com", "example.com"}},
		{host: "shop.example.com", want: []string{"shop.example.com", "www.shop.example.com"}},
		{host: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tenant.CandidateHosts(tt.host))
		})
	}
}

func TestLookup_FindBySubdomain(t *testing.T) {
	t.Parallel()

	t.Run("matches subdomain case-insensitively", func(t *testing.T) {
		t.Parallel()

		acme := subdomainTenant("acme", true)
		acme.Subdomain = "Acme"
		store := newFakeStore(acme)
		lookup := tenant.NewLookup(store, nil)

		got, ok := lookup.FindBySubdomain(context.Background(), "ACME")
		require.True(t, ok)
		assert.Equal(t, acme, got)
		assert.Equal(t, []string{"acme"}, store.subCalls)
	})

	t.Run("matches hostname when subdomain differs", func(t *testing.T) {
		t.Parallel()

		biz := subdomainTenant("acme", true)
		biz.Subdomain = "acme-legacy"
		lookup := tenant.NewLookup(newFakeStore(biz), nil)

		got, ok := lookup.FindBySubdomain(context.Background(), "acme")
		require.True(t, ok)
		assert.Equal(t, biz.ID, got.ID)
	})

	t.Run("blank label issues no query", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore(subdomainTenant("acme", true))
		lookup := tenant.NewLookup(store, nil)

		_, ok := lookup.FindBySubdomain(context.Background(), "  ")
		assert.False(t, ok)
		assert.Zero(t, store.calls())
	})

	t.Run("ignores custom domain rows returned by the store", func(t *testing.T) {
		t.Parallel()

		lookup := tenant.NewLookup(stubStore{rows: []*tenant.Tenant{
			customDomainTenant("acme", tenant.StatusCNAMEActive),
		}}, nil)

		_, ok := lookup.FindBySubdomain(context.Background(), "acme")
		assert.False(t, ok)
	})

	t.Run("multiple matches use the first and log", func(t *testing.T) {
		t.Parallel()

		first := subdomainTenant("acme", true)
		second := subdomainTenant("acme", true)
		var buf bytes.Buffer
		lookup := tenant.NewLookup(newFakeStore(first, second), slog.New(slog.NewTextHandler(&buf, nil)))

		got, ok := lookup.FindBySubdomain(context.Background(), "acme")
		require.True(t, ok)
		assert.Equal(t, first, got)
		assert.Contains(t, buf.String(), "invariant violation")
	})

	t.Run("store error is absent", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore()
		store.setErr(errors.New("connection refused"))
		var buf bytes.Buffer
		lookup := tenant.NewLookup(store, slog.New(slog.NewTextHandler(&buf, nil)))

		got, ok := lookup.FindBySubdomain(context.Background(), "acme")
		assert.False(t, ok)
		assert.Nil(t, got)
		assert.Contains(t, buf.String(), "subdomain lookup failed")
		assert.Contains(t, buf.String(), "connection refused")
	})

	t.Run("query runs outside the active tenant scope", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore(subdomainTenant("acme", true))
		lookup := tenant.NewLookup(store, nil)
		ctx := tenant.WithTenant(context.Background(), subdomainTenant("other", true))

		_, ok := lookup.FindBySubdomain(ctx, "acme")
		assert.True(t, ok)
		assert.False(t, store.scoped)
	})
}

func TestLookup_FindByCustomDomain(t *testing.T) {
	t.Parallel()

	t.Run("root configured resolves root and www", func(t *testing.T) {
		t.Parallel()

		biz := customDomainTenant("example.com", tenant.StatusCNAMEActive)
		lookup := tenant.NewLookup(newFakeStore(biz), nil)

		for _, host := range []string{"example.com", "www.example.com", "WWW.EXAMPLE.COM"} {
			got, ok := lookup.FindByCustomDomain(context.Background(), host)
			require.True(t, ok, host)
			assert.Equal(t, biz, got, host)
		}
	})

	t.Run("www configured resolves root and www", func(t *testing.T) {
		t.Parallel()

		biz := customDomainTenant("www.example.com", tenant.StatusCNAMEActive)
		lookup := tenant.NewLookup(newFakeStore(biz), nil)

		for _, host := range []string{"example.com", "www.example.com"} {
			got, ok := lookup.FindByCustomDomain(context.Background(), host)
			require.True(t, ok, host)
			assert.Equal(t, biz, got, host)
		}
	})

	t.Run("inactive domain status never resolves", func(t *testing.T) {
		t.Parallel()

		for _, status := range []tenant.DomainStatus{tenant.StatusPending, tenant.StatusFailed, ""} {
			biz := customDomainTenant("example.com", status)
			lookup := tenant.NewLookup(stubStore{rows: []*tenant.Tenant{biz}}, nil)

			_, ok := lookup.FindByCustomDomain(context.Background(), "example.com")
			assert.False(t, ok, string(status))
			_, ok = lookup.FindByCustomDomain(context.Background(), "www.example.com")
			assert.False(t, ok, string(status))
		}
	})

	t.Run("hostname outside candidate set is rejected", func(t *testing.T) {
		t.Parallel()

		lookup := tenant.NewLookup(stubStore{rows: []*tenant.Tenant{
			customDomainTenant("other.com", tenant.StatusCNAMEActive),
		}}, nil)

		_, ok := lookup.FindByCustomDomain(context.Background(), "example.com")
		assert.False(t, ok)
	})

	t.Run("sends the deduplicated candidate set", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore()
		lookup := tenant.NewLookup(store, nil)

		_, _ = lookup.FindByCustomDomain(context.Background(), "www.example.com")
		require.Len(t, store.domainCalls, 1)
		assert.Equal(t, []string{"www.example.com", "example.com"}, store.domainCalls[0])
	})

	t.Run("store error is absent and logged with host", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore()
		store.setErr(errors.New(`relation "tenants" does not exist`))
		var buf bytes.Buffer
		lookup := tenant.NewLookup(store, slog.New(slog.NewTextHandler(&buf, nil)))

		_, ok := lookup.FindByCustomDomain(context.Background(), "shop.example.com")
		assert.False(t, ok)
		assert.Contains(t, buf.String(), "custom domain lookup failed")
		assert.Contains(t, buf.String(), "host=shop.example.com")
	})
}

// stubStore returns the same rows for every query, bypassing filtering.
type stubStore struct {
	rows []*tenant.Tenant
}

func (s stubStore) FindBySubdomain(context.Context, string) ([]*tenant.Tenant, error) {
	return s.rows, nil
}

func (s stubStore) FindByCustomDomain(context.Context, []string) ([]*tenant.Tenant, error) {
	return s.rows, nil
}
