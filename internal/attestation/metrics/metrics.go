package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the attestation workflow.
type Metrics struct {
	// Claim transitions by action and resulting state
	Transitions *prometheus.CounterVec

	// Plugin dispatches by attestor plugin and outcome
	Dispatches *prometheus.CounterVec

	// Invalidation pass decisions per record
	Invalidations *prometheus.CounterVec

	SigningLatency prometheus.Histogram

	// File uploads and URL signing failures by operation
	FileFailures *prometheus.CounterVec
}

// New registers the workflow metrics with the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the workflow metrics with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "claimflow_claim_transitions_total",
			Help: "Claim state transitions by action and resulting state",
		}, []string{"action", "state"}),

		Dispatches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "claimflow_plugin_dispatches_total",
			Help: "Plugin requests routed by attestor plugin and outcome",
		}, []string{"plugin", "outcome"}), // outcome: "routed", "failed"

		Invalidations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "claimflow_invalidations_total",
			Help: "Attestation records touched by invalidation passes",
		}, []string{"outcome"}), // outcome: "invalidated", "drafted", "unchanged"

		SigningLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "claimflow_signing_duration_seconds",
			Help:    "Duration of credential signing calls",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		FileFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "claimflow_file_failures_total",
			Help: "Attested file operations that failed",
		}, []string{"operation"}), // operation: "save", "sign_url"
	}
}

// IncrementTransition records a claim transition.
func (m *Metrics) IncrementTransition(action, state string) {
	if m != nil {
		m.Transitions.WithLabelValues(action, state).Inc()
	}
}

// IncrementDispatch records a routed plugin request.
func (m *Metrics) IncrementDispatch(plugin, outcome string) {
	if m != nil {
		m.Dispatches.WithLabelValues(plugin, outcome).Inc()
	}
}

func (m *Metrics) IncrementInvalidation(outcome string) {
	if m != nil {
		m.Invalidations.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) ObserveSigningLatency(d time.Duration) {
	if m != nil {
		m.SigningLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementFileFailure(operation string) {
	if m != nil {
		m.FileFailures.WithLabelValues(operation).Inc()
	}
}
