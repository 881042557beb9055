// Package metrics holds the Prometheus instruments of the tool server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK          = "ok"
	OutcomeError       = "error"
	OutcomeBadRequest  = "bad_request"
	OutcomeRateLimited = "rate_limited"
)

// =============================================================================
// Prometheus Metrics for Tool Calls
// =============================================================================

type Metrics struct {
	gatherer prometheus.Gatherer

	// calls counts tool calls.
	// Labels: tool, outcome (ok, error, bad_request)
	calls *prometheus.CounterVec

	// latency measures tool call duration.
	// Labels: tool
	latency *prometheus.HistogramVec

	// rejected counts requests refused before dispatch.
	// Labels: reason (rate_limited, bad_request)
	rejected *prometheus.CounterVec
}

// New registers the instruments on a fresh registry, so several servers
// (or tests) never collide.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		calls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gocalc",
			Subsystem: "tool",
			Name:      "calls_total",
			Help:      "Total tool calls by tool and outcome",
		}, []string{"tool", "outcome"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gocalc",
			Subsystem: "tool",
			Name:      "duration_seconds",
			Help:      "Tool call latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"tool"}),
		rejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gocalc",
			Subsystem: "http",
			Name:      "rejected_total",
			Help:      "Requests rejected before reaching a tool",
		}, []string{"reason"}),
	}
}

// ObserveCall records one dispatched tool call.
func (m *Metrics) ObserveCall(tool, outcome string, elapsed time.Duration) {
	m.calls.WithLabelValues(tool, outcome).Inc()
	m.latency.WithLabelValues(tool).Observe(elapsed.Seconds())
}

// Reject records a request refused for reason.
func (m *Metrics) Reject(reason string) {
	m.rejected.WithLabelValues(reason).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Gatherer exposes the registry, mainly for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer { return m.gatherer }
