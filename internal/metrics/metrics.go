package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts endpoint resolutions performed by the service.
type Metrics struct {
	resolutions *prometheus.CounterVec
	failures    *prometheus.CounterVec
	reloads     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apibase_resolutions_total",
				Help: "Total successful endpoint resolutions.",
			},
			[]string{"profile", "source"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apibase_resolution_failures_total",
				Help: "Total failed endpoint resolutions.",
			},
			[]string{"profile", "reason"},
		),
		reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apibase_reloads_total",
				Help: "Total reloads of the active endpoint.",
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(m.resolutions, m.failures, m.reloads)
	return m
}

// IncResolution counts a successful resolution by profile and source.
func (m *Metrics) IncResolution(profile, source string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(profile, source).Inc()
}

// IncFailure counts a failed resolution by profile and reason.
func (m *Metrics) IncFailure(profile, reason string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(profile, reason).Inc()
}

// IncReload counts a reload request by result.
func (m *Metrics) IncReload(result string) {
	if m == nil {
		return
	}
	m.reloads.WithLabelValues(result).Inc()
}
