// Package metrics defines the Prometheus instrumentation for the canary.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all Prometheus metrics for the canary service.
//
// Each Registry owns its own prometheus.Registry rather than the global
// default, so multiple canary instances (and tests) can coexist in one
// process without duplicate-registration panics.
type Registry struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Ingestion metrics
	PingsAcceptedTotal prometheus.Counter
	PingsRejectedTotal *prometheus.CounterVec

	// History metrics
	HistorySize prometheus.Gauge
}

// NewRegistry initializes and returns a new Registry with all metrics
// registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		registry: reg,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "canary_http_requests_total",
				Help: "Total HTTP requests processed by route, method, and status code",
			},
			[]string{"route", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "canary_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"route", "method"},
		),

		PingsAcceptedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "canary_pings_accepted_total",
				Help: "Total liveness pings accepted and recorded",
			},
		),
		PingsRejectedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "canary_pings_rejected_total",
				Help: "Total liveness pings rejected, by reason",
			},
			[]string{"reason"},
		),

		HistorySize: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "canary_history_size",
				Help: "Current number of pings held in the history",
			},
		),
	}
}

// Gatherer returns the underlying prometheus registry for exposition.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
