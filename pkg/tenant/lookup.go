package tenant

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/bizdesk/platform/pkg/tenant"

// Lookup resolves candidate subdomains and custom domains against a Store.
// It has no knowledge of HTTP and never returns store errors: a failing store
// is logged and reported as "no match".
type Lookup struct {
	store  Store
	logger *slog.Logger
	tracer trace.Tracer
}

// NewLookup creates a Lookup over store. A nil logger discards output.
func NewLookup(store Store, logger *slog.Logger) *Lookup {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Lookup{
		store:  store,
		logger: logger,
		tracer: otel.Tracer(tracerName),
	}
}

// FindBySubdomain returns the subdomain tenant whose hostname or subdomain equals label.
func (l *Lookup) FindBySubdomain(ctx context.Context, label string) (*Tenant, bool) {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return nil, false
	}

	ctx, span := l.tracer.Start(WithoutTenant(ctx), "tenant.FindBySubdomain",
		trace.WithAttributes(attribute.String("tenant.label", label)))
	defer span.End()

	rows, err := l.store.FindBySubdomain(ctx, label)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store lookup failed")
		l.logger.ErrorContext(ctx, "subdomain lookup failed",
			slog.String("label", label), slog.Any("error", err))
		return nil, false
	}

	matches := rows[:0:0]
	for _, t := range rows {
		if t != nil && t.HostType == HostTypeSubdomain &&
			(strings.EqualFold(t.Hostname, label) || strings.EqualFold(t.Subdomain, label)) {
			matches = append(matches, t)
		}
	}
	return l.pick(ctx, span, matches, slog.String("label", label))
}

// FindByCustomDomain returns the active custom-domain tenant configured for host
// in any of its www/root forms.
func (l *Lookup) FindByCustomDomain(ctx context.Context, host string) (*Tenant, bool) {
	candidates := CandidateHosts(host)
	if len(candidates) == 0 {
		return nil, false
	}

	ctx, span := l.tracer.Start(WithoutTenant(ctx), "tenant.FindByCustomDomain",
		trace.WithAttributes(attribute.StringSlice("tenant.hosts", candidates)))
	defer span.End()

	rows, err := l.store.FindByCustomDomain(ctx, candidates)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store lookup failed")
		l.logger.ErrorContext(ctx, "custom domain lookup failed",
			slog.String("host", host), slog.Any("error", err))
		return nil, false
	}

	matches := rows[:0:0]
	for _, t := range rows {
		if t.Routable() && containsFold(candidates, t.Hostname) {
			matches = append(matches, t)
		}
	}
	return l.pick(ctx, span, matches, slog.String("host", host))
}

func (l *Lookup) pick(ctx context.Context, span trace.Span, matches []*Tenant, key slog.Attr) (*Tenant, bool) {
	span.SetAttributes(attribute.Int("tenant.matches", len(matches)))
	switch len(matches) {
	case 0:
		return nil, false
	case 1:
	default:
		ids := make([]string, 0, len(matches))
		for _, t := range matches {
			ids = append(ids, t.ID.String())
		}
		l.logger.WarnContext(ctx, "tenant invariant violation: host matches several tenants",
			key, slog.Any("tenant_ids", ids))
	}
	return matches[0], true
}

// CandidateHosts returns host, its root without a leading "www." and the root
// with "www." re-added, lower-cased and deduplicated.
func CandidateHosts(host string) []string {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return nil
	}
	root := strings.TrimPrefix(host, "www.")
	out := make([]string, 0, 3)
	for _, h := range []string{host, root, "www." + root} {
		if h != "" && h != "www." && !containsFold(out, h) {
			out = append(out, h)
		}
	}
	return out
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
