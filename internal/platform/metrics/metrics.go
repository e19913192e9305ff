package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the portal.
// All record methods are nil-safe so tests can pass a nil *Metrics.
type Metrics struct {
	LookupsTotal     *prometheus.CounterVec // client lookups by outcome (success, not_found, error)
	UpstreamAttempts *prometheus.CounterVec // upstream HTTP attempts by operation
	UpstreamRetries  *prometheus.CounterVec // transport-failure retries by operation
	UpstreamLatency  *prometheus.HistogramVec
	StatusProbes     *prometheus.CounterVec // status probe results (OK, ERROR)
	ProxyRequests    *prometheus.CounterVec // relay outcomes by route (relayed, upstream_error, no_response, local_error)
	ProductSwitches  prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		LookupsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sigportal_lookups_total",
			Help: "Total number of client lookups by outcome",
		}, []string{"outcome"}),
		UpstreamAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sigportal_upstream_attempts_total",
			Help: "Total number of upstream HTTP attempts by operation",
		}, []string{"operation"}),
		UpstreamRetries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sigportal_upstream_retries_total",
			Help: "Total number of transport-failure retries by operation",
		}, []string{"operation"}),
		UpstreamLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sigportal_upstream_request_duration_seconds",
			Help:    "Latency of upstream API requests by operation",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		StatusProbes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sigportal_status_probes_total",
			Help: "Total number of upstream status probes by result",
		}, []string{"status"}),
		ProxyRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sigportal_proxy_requests_total",
			Help: "Total number of proxied requests by route and outcome",
		}, []string{"route", "outcome"}),
		ProductSwitches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sigportal_product_switches_total",
			Help: "Total number of current-product switches",
		}),
	}
}

// RecordLookup records a client lookup result.
func (m *Metrics) RecordLookup(outcome string) {
	if m == nil {
		return
	}
	m.LookupsTotal.WithLabelValues(outcome).Inc()
}

// RecordUpstreamAttempt records a single upstream HTTP attempt.
func (m *Metrics) RecordUpstreamAttempt(operation string) {
	if m == nil {
		return
	}
	m.UpstreamAttempts.WithLabelValues(operation).Inc()
}

// RecordUpstreamRetry records a retry after a transport failure.
func (m *Metrics) RecordUpstreamRetry(operation string) {
	if m == nil {
		return
	}
	m.UpstreamRetries.WithLabelValues(operation).Inc()
}

// ObserveUpstreamLatency records the duration of an upstream call.
func (m *Metrics) ObserveUpstreamLatency(operation string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.UpstreamLatency.WithLabelValues(operation).Observe(durationSeconds)
}

// RecordStatusProbe records a status probe result.
func (m *Metrics) RecordStatusProbe(status string) {
	if m == nil {
		return
	}
	m.StatusProbes.WithLabelValues(status).Inc()
}

// RecordProxyRequest records the outcome of a relayed request.
func (m *Metrics) RecordProxyRequest(route, outcome string) {
	if m == nil {
		return
	}
	m.ProxyRequests.WithLabelValues(route, outcome).Inc()
}

// RecordProductSwitch increments the product switch counter.
func (m *Metrics) RecordProductSwitch() {
	if m == nil {
		return
	}
	m.ProductSwitches.Inc()
}
