// Package metrics provides the Prometheus instruments for soft-limit
// counters, save checks and the HTTP component. Instruments are registered on
// a caller-supplied registry so tests and embedders stay isolated.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-softlimit/pkg/counter"
	"github.com/goliatone/go-softlimit/pkg/engine"
	"github.com/goliatone/go-softlimit/pkg/marker"
	"github.com/goliatone/go-softlimit/pkg/validation"
)

const namespace = "softlimit"

// Metrics holds every instrument.
type Metrics struct {
	registry *prometheus.Registry

	// BindingTransitions counts binding state changes by from/to state.
	BindingTransitions *prometheus.CounterVec
	// BindingsActive tracks bindings currently in the bound state.
	BindingsActive prometheus.Gauge
	// BindingsAbandoned counts placeholders whose input never appeared.
	BindingsAbandoned prometheus.Counter
	// ResolveAttempts observes how many attempts an abandoned binding made.
	ResolveAttempts prometheus.Histogram
	// CounterUpdates counts display refreshes by status.
	CounterUpdates *prometheus.CounterVec

	// SaveChecks counts save validations by result (valid, invalid).
	SaveChecks *prometheus.CounterVec
	// SaveIssues counts save issues by field and code.
	SaveIssues *prometheus.CounterVec
	// RenderClamps counts markers clamped at render time by mode.
	RenderClamps *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New creates the instruments on reg. A nil reg gets a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		BindingTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "binding_transitions_total",
			Help:      "Binding state changes by source and target state",
		}, []string{"from", "to"}),
		BindingsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bindings_active",
			Help:      "Bindings currently counting an input",
		}),
		BindingsAbandoned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bindings_abandoned_total",
			Help:      "Placeholders abandoned after the retry cap",
		}),
		ResolveAttempts: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "abandoned_resolve_attempts",
			Help:      "Resolution attempts made before abandoning a placeholder",
			Buckets:   []float64{1, 2, 5, 10, 20, 50},
		}),
		CounterUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "counter_updates_total",
			Help:      "Counter display refreshes by status",
		}, []string{"status"}),

		SaveChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "save_checks_total",
			Help:      "Save validations by result",
		}, []string{"result"}),
		SaveIssues: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "save_issues_total",
			Help:      "Save validation issues by field and code",
		}, []string{"field", "code"}),
		RenderClamps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_clamps_total",
			Help:      "Out-of-range markers clamped at render time",
		}, []string{"mode"}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code",
		}, []string{"route", "method", "code"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "code"}),
	}
}

// Registry returns the registry the instruments live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Instrument wraps next with request counting and timing under route.
func (m *Metrics) Instrument(route string, next http.Handler) http.Handler {
	labels := prometheus.Labels{"route": route}
	return promhttp.InstrumentHandlerDuration(m.HTTPDuration.MustCurryWith(labels),
		promhttp.InstrumentHandlerCounter(m.HTTPRequests.MustCurryWith(labels), next))
}

// StateChanged implements engine.Observer.
func (m *Metrics) StateChanged(_ *engine.Binding, from, to engine.State) {
	m.BindingTransitions.WithLabelValues(string(from), string(to)).Inc()
	if to == engine.StateBound {
		m.BindingsActive.Inc()
	}
	if from == engine.StateBound {
		m.BindingsActive.Dec()
	}
}

// Updated implements engine.Observer.
func (m *Metrics) Updated(_ *engine.Binding, reading counter.Reading) {
	m.CounterUpdates.WithLabelValues(string(reading.Status)).Inc()
}

// Abandoned implements engine.Observer.
func (m *Metrics) Abandoned(_ *engine.Binding, attempts int) {
	m.BindingsAbandoned.Inc()
	m.ResolveAttempts.Observe(float64(attempts))
}

// SaveChecked implements validation.Reporter.
func (m *Metrics) SaveChecked(_ string, issues []validation.Issue) {
	if len(issues) == 0 {
		m.SaveChecks.WithLabelValues("valid").Inc()
		return
	}
	m.SaveChecks.WithLabelValues("invalid").Inc()
	for _, issue := range issues {
		m.SaveIssues.WithLabelValues(issue.Field, issue.Code).Inc()
	}
}

// Clamped is a marker.ClampFunc.
func (m *Metrics) Clamped(_ string, spec marker.LimitSpec) {
	m.RenderClamps.WithLabelValues(string(spec.Mode())).Inc()
}

var (
	_ engine.Observer     = (*Metrics)(nil)
	_ validation.Reporter = (*Metrics)(nil)
	_ marker.ClampFunc    = (*Metrics)(nil).Clamped
)
