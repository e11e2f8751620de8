// Package metrics exposes the Prometheus counters and histograms the
// registry and disclosure-tracker daemons publish on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry groups the counters and histograms one service instance
// publishes. Each daemon constructs its own with a distinct subsystem name
// so txregistryd and disclosuretrackerd can share a process without
// colliding on metric names.
type Registry struct {
	reg *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	StoreErrors     *prometheus.CounterVec
}

// New builds a Registry for the given subsystem ("tx_registry" or
// "disclosure_tracker") and registers its collectors.
func New(subsystem string) *Registry {
	reg := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dvpguard",
		Subsystem: subsystem,
		Name:      "requests_total",
		Help:      "Total HTTP requests handled, by route and status class.",
	}, []string{"route", "status"})

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dvpguard",
		Subsystem: subsystem,
		Name:      "request_duration_seconds",
		Help:      "HTTP request handling latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	storeErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dvpguard",
		Subsystem: subsystem,
		Name:      "store_errors_total",
		Help:      "Backing-store errors, by operation.",
	}, []string{"operation"})

	reg.MustRegister(requestsTotal, requestDuration, storeErrors, prometheus.NewGoCollector())

	return &Registry{
		reg:             reg,
		RequestsTotal:   requestsTotal,
		RequestDuration: requestDuration,
		StoreErrors:     storeErrors,
	}
}

// Gatherer exposes the underlying prometheus.Gatherer for wiring into an
// HTTP handler (promhttp.HandlerFor).
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// ObserveRequest records one request's outcome and latency.
func (r *Registry) ObserveRequest(route, statusClass string, elapsed time.Duration) {
	r.RequestsTotal.WithLabelValues(route, statusClass).Inc()
	r.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveStoreError records a failure talking to the backing store.
func (r *Registry) ObserveStoreError(operation string) {
	r.StoreErrors.WithLabelValues(operation).Inc()
}
