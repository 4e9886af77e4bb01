// Package metrics exposes the Prometheus instrumentation for the mesh
// event pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for the application
type Registry struct {
	// Event metrics
	EventsTotal          *prometheus.CounterVec
	EventProcessDuration *prometheus.HistogramVec
	BroadcastRecipients  prometheus.Histogram

	// Graph metrics
	GraphNodes prometheus.Gauge
	GraphLinks prometheus.Gauge

	// Observer metrics
	ObserversActive   *prometheus.GaugeVec
	ObserversDetached *prometheus.CounterVec
	MessagesDelivered *prometheus.CounterVec
	MessagesDropped   *prometheus.CounterVec

	// Packet metrics
	PacketsInFlight prometheus.Gauge
	PacketsSettled  *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initEventMetrics()
	r.initObserverMetrics()
	r.initHTTPMetrics()

	return r
}

// WithRuntimeCollectors adds the Go runtime and process collectors.
func (r *Registry) WithRuntimeCollectors() *Registry {
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Gatherer returns the underlying Prometheus registry
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
