package tenant

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Observer is notified of every dispatcher decision.
type Observer interface {
	ObserveResolution(res Resolution)
}

// Outcome labels a dispatcher decision.
func (r Resolution) Outcome() string {
	switch {
	case r.Host.IsPlatform():
		return "platform"
	case r.Found():
		return "found"
	case r.Inactive:
		return "inactive"
	default:
		return "not_found"
	}
}

type noopObserver struct{}

func (noopObserver) ObserveResolution(Resolution) {}

// PrometheusObserver counts resolutions by host kind, outcome and strategy.
type PrometheusObserver struct {
	resolutions *prometheus.CounterVec
}

// NewPrometheusObserver registers the tenant_resolutions_total counter with reg.
func NewPrometheusObserver(reg prometheus.Registerer) (*PrometheusObserver, error) {
	o := &PrometheusObserver{
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tenant_resolutions_total",
				Help: "Tenant resolutions performed by the host dispatcher.",
			},
			[]string{"kind", "outcome", "strategy"},
		),
	}
	if err := reg.Register(o.resolutions); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *PrometheusObserver) ObserveResolution(res Resolution) {
	o.resolutions.WithLabelValues(res.Host.Kind.String(), res.Outcome(), res.Strategy).Inc()
}
