package tenant_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bizdesk/platform/pkg/tenant"
)

// fakeStore is an in-memory tenant.Store recording every query it receives.
type fakeStore struct {
	mu          sync.Mutex
	tenants     []*tenant.Tenant
	err         error
	subCalls    []string
	domainCalls [][]string
	scoped      bool // set when a query arrived with a tenant in ctx
}

func newFakeStore(tenants ...*tenant.Tenant) *fakeStore {
	return &fakeStore{tenants: tenants}
}

func (s *fakeStore) FindBySubdomain(ctx context.Context, label string) ([]*tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subCalls = append(s.subCalls, label)
	if _, ok := tenant.FromContext(ctx); ok {
		s.scoped = true
	}
	if s.err != nil {
		return nil, s.err
	}
	var out []*tenant.Tenant
	for _, t := range s.tenants {
		if t.HostType != tenant.HostTypeSubdomain {
			continue
		}
		if strings.EqualFold(t.Hostname, label) || strings.EqualFold(t.Subdomain, label) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeStore) FindByCustomDomain(ctx context.Context, hosts []string) ([]*tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.domainCalls = append(s.domainCalls, hosts)
	if _, ok := tenant.FromContext(ctx); ok {
		s.scoped = true
	}
	if s.err != nil {
		return nil, s.err
	}
	var out []*tenant.Tenant
	for _, t := range s.tenants {
		if t.HostType != tenant.HostTypeCustomDomain || t.Status != tenant.StatusCNAMEActive {
			continue
		}
		for _, h := range hosts {
			if strings.ToLower(t.Hostname) == h {
				out = append(out, t)
				break
			}
		}
	}
	return out, nil
}

func (s *fakeStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subCalls) + len(s.domainCalls)
}

func (s *fakeStore) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

const platformDomain = "platformhost.com"

func testHostConfig() tenant.HostConfig {
	return tenant.HostConfig{
		PlatformDomains: []string{platformDomain},
		PlatformHosts:   []string{"app.platformhost.com"},
		PreviewSuffixes: []string{"onrender.com", "vercel.app", "herokuapp.com"},
		ReservedLabels:  []string{"www", "admin", "api"},
	}
}

func newTestResolver(store tenant.Store, opts ...tenant.ResolverOption) *tenant.Resolver {
	return tenant.NewResolver(tenant.NewClassifier(testHostConfig()), store, opts...)
}

func subdomainTenant(label string, active bool) *tenant.Tenant {
	return &tenant.Tenant{
		ID:        uuid.New(),
		Name:      label + " Corp",
		HostType:  tenant.HostTypeSubdomain,
		Hostname:  label,
		Subdomain: label,
		Active:    active,
		CreatedAt: time.Now(),
	}
}

func customDomainTenant(host string, status tenant.DomainStatus) *tenant.Tenant {
	return &tenant.Tenant{
		ID:        uuid.New(),
		Name:      host,
		HostType:  tenant.HostTypeCustomDomain,
		Hostname:  host,
		Status:    status,
		Active:    true,
		CreatedAt: time.Now(),
	}
}
