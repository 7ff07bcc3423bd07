// Package metrics implements secondary.MetricsRecorder with Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/fitout/internal/ports/secondary"
)

const namespace = "fitout"

// Recorder holds fitout's collectors on its own registry.
type Recorder struct {
	registry     *prometheus.Registry
	gate         *prometheus.CounterVec
	transactions *prometheus.CounterVec
	failures     *prometheus.CounterVec
	requests     *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with Go runtime and process collectors
// registered alongside fitout's own.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		gate: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_decisions_total",
			Help:      "Stage moves and approvals by outcome.",
		}, []string{"op", "reason"}),
		transactions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_transactions_total",
			Help:      "Transactions appended to client ledgers.",
		}, []string{"kind"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "command_failures_total",
			Help:      "Commands that failed in persistence.",
		}, []string{"op"}),
		requests: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// GateDecision counts a move or approval decision.
func (r *Recorder) GateDecision(op, reason string) {
	r.gate.WithLabelValues(op, reason).Inc()
}

// TransactionsRecorded counts appended transactions.
func (r *Recorder) TransactionsRecorded(kind string, n int) {
	r.transactions.WithLabelValues(kind).Add(float64(n))
}

// CommandFailed counts a failed command.
func (r *Recorder) CommandFailed(op string) {
	r.failures.WithLabelValues(op).Inc()
}

// ObserveRequest records one HTTP request's latency.
func (r *Recorder) ObserveRequest(method, route, status string, seconds float64) {
	r.requests.WithLabelValues(method, route, status).Observe(seconds)
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Ensure Recorder implements the interface
var _ secondary.MetricsRecorder = (*Recorder)(nil)
