package tenant

import (
	"errors"
	"fmt"
	"net"
	"os"
	"slices"
	"strings"

	"golang.org/x/net/idna"
	"gopkg.in/yaml.v3"
)

// Kind is the classification of a request host.
type Kind uint8

const (
	// KindPlatform is the bare platform domain, its www form, another canonical
	// platform host, or a blank host.
	KindPlatform Kind = iota
	// KindHostingPreview is a hosting-provider preview or health-check host.
	KindHostingPreview
	// KindCandidate is eligible for tenant resolution.
	KindCandidate
	// KindMalformed could not be parsed. Consumers treat it as KindPlatform.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindPlatform:
		return "platform"
	case KindHostingPreview:
		return "hosting_preview"
	case KindCandidate:
		return "candidate"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// HostConfig is deployment configuration for host classification.
// Changing it requires a redeploy, never a data migration.
type HostConfig struct {
	// PlatformDomains are bare marketing domains, e.g. "platformhost.com".
	// The www form of each is canonical as well.
	PlatformDomains []string `env:"PLATFORM_DOMAINS" envSeparator:"," envDefault:"platformhost.com" yaml:"platform_domains"`
	// PlatformHosts are additional exact-match platform hostnames.
	PlatformHosts []string `env:"PLATFORM_HOSTS" envSeparator:"," yaml:"platform_hosts"`
	// PreviewSuffixes mark hosting-provider hosts that are never tenant traffic.
	PreviewSuffixes []string `env:"PREVIEW_DOMAIN_SUFFIXES" envSeparator:"," envDefault:"onrender.com,vercel.app,herokuapp.com" yaml:"preview_suffixes"`
	// ReservedLabels never resolve as tenant subdomains.
	ReservedLabels []string `env:"RESERVED_SUBDOMAINS" envSeparator:"," envDefault:"www,admin,api" yaml:"reserved_labels"`
	// File optionally points to a YAML document overriding the values above.
	File string `env:"HOSTS_CONFIG_FILE" yaml:"-"`
}

// WithFile returns cfg with every non-empty list from the YAML file at cfg.File applied.
// A config without File is returned unchanged.
func (cfg HostConfig) WithFile() (HostConfig, error) {
	if cfg.File == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(cfg.File)
	if err != nil {
		return cfg, errors.Join(ErrInvalidHostConfig, err)
	}
	var override HostConfig
	if err := yaml.Unmarshal(data, &override); err != nil {
		return cfg, errors.Join(ErrInvalidHostConfig, fmt.Errorf("parse %s: %w", cfg.File, err))
	}
	if len(override.PlatformDomains) > 0 {
		cfg.PlatformDomains = override.PlatformDomains
	}
	if len(override.PlatformHosts) > 0 {
		cfg.PlatformHosts = override.PlatformHosts
	}
	if len(override.PreviewSuffixes) > 0 {
		cfg.PreviewSuffixes = override.PreviewSuffixes
	}
	if len(override.ReservedLabels) > 0 {
		cfg.ReservedLabels = override.ReservedLabels
	}
	return cfg, nil
}

// Host is a request host after classification.
type Host struct {
	// Raw is the header value as received.
	Raw string
	// Name is the normalized host: lower-cased, without port or trailing dot.
	Name string
	// Label is the leftmost subdomain label of a candidate host, or empty.
	Label string
	Kind  Kind

	reserved bool
}

// IsPlatform reports whether the host is platform traffic and must not be
// resolved to a tenant. Malformed hosts fail open to the platform.
func (h Host) IsPlatform() bool {
	return h.Kind != KindCandidate
}

// SubdomainLabel returns the label to offer to subdomain lookup,
// or an empty string when the label is blank or reserved.
func (h Host) SubdomainLabel() string {
	if h.Kind != KindCandidate || h.reserved {
		return ""
	}
	return h.Label
}

// Classifier decides whether a host is platform traffic or a tenant candidate.
// It is safe for concurrent use.
type Classifier struct {
	domains   []string
	canonical map[string]struct{}
	previews  []string
	reserved  map[string]struct{}
}

// NewClassifier builds a classifier from cfg. Values are lower-cased.
func NewClassifier(cfg HostConfig) *Classifier {
	c := &Classifier{
		canonical: make(map[string]struct{}),
		reserved:  make(map[string]struct{}),
	}
	for _, d := range cfg.PlatformDomains {
		d = strings.TrimPrefix(cleanEntry(d), "www.")
		if d == "" {
			continue
		}
		c.domains = append(c.domains, d)
		c.canonical[d] = struct{}{}
		c.canonical["www."+d] = struct{}{}
	}
	for _, h := range cfg.PlatformHosts {
		if h = cleanEntry(h); h != "" {
			c.canonical[h] = struct{}{}
		}
	}
	for _, s := range cfg.PreviewSuffixes {
		if s = strings.TrimPrefix(cleanEntry(s), "."); s != "" {
			c.previews = append(c.previews, s)
		}
	}
	for _, l := range cfg.ReservedLabels {
		if l = cleanEntry(l); l != "" {
			c.reserved[l] = struct{}{}
		}
	}
	// www is structurally reserved regardless of configuration.
	c.reserved["www"] = struct{}{}
	// Longest domain first so nested platform domains pick the most specific suffix.
	slices.SortFunc(c.domains, func(a, b string) int { return len(b) - len(a) })
	return c
}

// Classify never fails: unparseable hosts come back as KindMalformed.
func (c *Classifier) Classify(raw string) Host {
	h := Host{Raw: raw}

	name, ok := normalizeHost(raw)
	h.Name = name
	switch {
	case !ok:
		h.Kind = KindMalformed
		return h
	case name == "":
		h.Kind = KindPlatform
		return h
	case c.IsCanonical(name):
		h.Kind = KindPlatform
		return h
	case c.isPreview(name):
		h.Kind = KindHostingPreview
		return h
	}

	h.Kind = KindCandidate
	h.Label = c.label(name)
	_, h.reserved = c.reserved[h.Label]
	return h
}

// IsCanonical reports whether name (already normalized) is one of the
// platform's own hostnames.
func (c *Classifier) IsCanonical(name string) bool {
	_, ok := c.canonical[name]
	return ok
}

// isPreview matches preview suffixes on a label boundary, so "myonrender.community"
// stays a candidate while "app.onrender.com" does not.
func (c *Classifier) isPreview(name string) bool {
	for _, s := range c.previews {
		if name == s || strings.HasSuffix(name, "."+s) {
			return true
		}
	}
	return false
}

// label extracts the subdomain label. Under a platform domain it is the leftmost
// label of the prefix; elsewhere a host needs at least three labels to have one.
func (c *Classifier) label(name string) string {
	for _, d := range c.domains {
		if prefix, ok := strings.CutSuffix(name, "."+d); ok {
			first, _, _ := strings.Cut(prefix, ".")
			return first
		}
	}
	parts := strings.Split(name, ".")
	if len(parts) < 3 {
		return ""
	}
	return parts[0]
}

// normalizeHost lower-cases the host and strips port and trailing dot.
// IP literals normalize to an empty host so they are served as platform traffic.
func normalizeHost(raw string) (string, bool) {
	h := strings.ToLower(strings.TrimSpace(raw))
	if h == "" {
		return "", true
	}
	if host, _, err := net.SplitHostPort(h); err == nil {
		h = host
	}
	h = strings.TrimSuffix(h, ".")
	if h == "" {
		return "", false
	}
	if net.ParseIP(strings.Trim(h, "[]")) != nil {
		return "", true
	}
	ascii, err := idna.Lookup.ToASCII(h)
	if err != nil || ascii == "" {
		return h, false
	}
	return ascii, true
}

func cleanEntry(s string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), ".")
}
