package tenantstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/bizdesk/platform/pkg/tenant"
)

// Memory is an in-process tenant table, used for development and tests.
// It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	tenants []*tenant.Tenant
}

// NewMemory creates a store holding tenants.
func NewMemory(tenants ...*tenant.Tenant) *Memory {
	return &Memory{tenants: tenants}
}

// seedFile is the YAML layout accepted by LoadYAML.
type seedFile struct {
	Tenants []*tenant.Tenant `yaml:"tenants"`
}

// LoadFile reads a YAML seed file, see LoadYAML.
func LoadFile(path string) (*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Join(ErrInvalidSeed, err)
	}
	defer f.Close()
	return LoadYAML(f)
}

// LoadYAML builds a store from a document of the form
//
//	tenants:
//	  - name: Acme
//	    host_type: subdomain
//	    hostname: acme
//	    active: true
//
// Missing ids are generated.
func LoadYAML(r io.Reader) (*Memory, error) {
	var seed seedFile
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Join(ErrInvalidSeed, err)
	}
	m := NewMemory()
	for i, t := range seed.Tenants {
		if err := m.Put(t); err != nil {
			return nil, errors.Join(ErrInvalidSeed, fmt.Errorf("tenant %d: %w", i, err))
		}
	}
	return m, nil
}

// Put adds or replaces a tenant by id.
func (m *Memory) Put(t *tenant.Tenant) error {
	if t == nil {
		return errors.New("nil tenant")
	}
	switch t.HostType {
	case tenant.HostTypeSubdomain, tenant.HostTypeCustomDomain:
	default:
		return fmt.Errorf("unknown host_type %q", t.HostType)
	}
	if strings.TrimSpace(t.Hostname) == "" {
		return errors.New("hostname is required")
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.tenants {
		if o.ID != t.ID && sameHost(o, t) {
			return fmt.Errorf("%w: %s", ErrDuplicateTenant, t.Hostname)
		}
	}
	idx := slices.IndexFunc(m.tenants, func(o *tenant.Tenant) bool { return o.ID == t.ID })
	if idx >= 0 {
		m.tenants[idx] = t
		return nil
	}
	m.tenants = append(m.tenants, t)
	return nil
}

// sameHost reports whether a and b would both answer one lookup.
func sameHost(a, b *tenant.Tenant) bool {
	if a.HostType != b.HostType {
		return false
	}
	if a.HostType == tenant.HostTypeSubdomain {
		return strings.EqualFold(a.Hostname, b.Hostname) ||
			(a.Subdomain != "" && strings.EqualFold(a.Subdomain, b.Subdomain))
	}
	return a.Status == tenant.StatusCNAMEActive && b.Status == tenant.StatusCNAMEActive &&
		strings.EqualFold(a.Hostname, b.Hostname)
}

// Len reports how many tenants the store holds.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tenants)
}

func (m *Memory) FindBySubdomain(_ context.Context, label string) ([]*tenant.Tenant, error) {
	return m.filter(func(t *tenant.Tenant) bool {
		return t.HostType == tenant.HostTypeSubdomain &&
			(strings.EqualFold(t.Hostname, label) || strings.EqualFold(t.Subdomain, label))
	}), nil
}

func (m *Memory) FindByCustomDomain(_ context.Context, hosts []string) ([]*tenant.Tenant, error) {
	return m.filter(func(t *tenant.Tenant) bool {
		return t.HostType == tenant.HostTypeCustomDomain &&
			t.Status == tenant.StatusCNAMEActive &&
			slices.Contains(hosts, strings.ToLower(t.Hostname))
	}), nil
}

func (m *Memory) filter(match func(*tenant.Tenant) bool) []*tenant.Tenant {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*tenant.Tenant
	for _, t := range m.tenants {
		if match(t) {
			out = append(out, t)
		}
	}
	return out
}
