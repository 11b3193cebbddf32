package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "veridian"

// Metrics holds the Prometheus counters, histograms, and gauges for the view service.
type Metrics struct {
	// Backend API metrics.
	BackendRequests *prometheus.CounterVec   // labels: endpoint, outcome={success,network_error,status_error,decode_error}
	BackendDuration *prometheus.HistogramVec // labels: endpoint
	CacheLookups    *prometheus.CounterVec   // labels: endpoint, result={hit,miss}

	// Fetch state metrics.
	StaleResponsesDiscarded *prometheus.CounterVec // labels: view

	// Simulation metrics.
	SimulationUnitsPlaced prometheus.Counter
	SimulationEvents      *prometheus.CounterVec // labels: kind, outcome={published,error}

	ActiveSessions prometheus.Gauge
	ResearchLogins *prometheus.CounterVec // labels: outcome={granted,denied}
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)

	prometheus.MustRegister(
		m.BackendRequests,
		m.BackendDuration,
		m.CacheLookups,
		m.StaleResponsesDiscarded,
		m.SimulationUnitsPlaced,
		m.SimulationEvents,
		m.ActiveSessions,
		m.ResearchLogins,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

// NewUnregisteredMetrics creates Metrics that are never exposed, for
// short-lived processes such as the CLI that do not serve /metrics.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics(true)
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}
	return &Metrics{
		BackendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      help("Prediction API requests by endpoint and outcome."),
		}, []string{"endpoint", "outcome"}),
		BackendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      help("Prediction API request duration in seconds."),
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      help("Response cache lookups by endpoint and result."),
		}, []string{"endpoint", "result"}),
		StaleResponsesDiscarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_responses_discarded_total",
			Help:      help("Responses dropped because a newer request was issued."),
		}, []string{"view"}),
		SimulationUnitsPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulation_units_placed_total",
			Help:      help("Mitigation units placed, manually or by auto-deploy."),
		}),
		SimulationEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulation_events_total",
			Help:      help("Simulation state-change events by kind and publish outcome."),
		}, []string{"kind", "outcome"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      help("View sessions currently held in memory."),
		}),
		ResearchLogins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "research_logins_total",
			Help:      help("Researcher access attempts by outcome."),
		}, []string{"outcome"}),
	}
}
