package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "meshviz"

func (r *Registry) initEventMetrics() {
	r.EventsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Total number of input events by kind and outcome",
		},
		[]string{"event_type", "status"},
	)

	r.EventProcessDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "event_process_duration_seconds",
			Help:      "Time spent applying an event to the graph and queueing its broadcast",
			Buckets:   []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .025, .1},
		},
		[]string{"event_type"},
	)

	r.BroadcastRecipients = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "broadcast_recipients",
			Help:      "Number of observers that accepted each broadcast",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		},
	)

	r.GraphNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_nodes",
			Help:      "Current number of nodes in the topology graph",
		},
	)

	r.GraphLinks = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_links",
			Help:      "Current number of links in the topology graph",
		},
	)

	r.PacketsInFlight = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "packets_in_flight",
			Help:      "Packets sent but not yet received, dropped or expired",
		},
	)

	r.PacketsSettled = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_settled_total",
			Help:      "Tracked packets by how they left the in-flight set",
		},
		[]string{"outcome"},
	)
}

func (r *Registry) initObserverMetrics() {
	r.ObserversActive = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "observers_active",
			Help:      "Currently attached observers",
		},
		[]string{"transport"},
	)

	r.ObserversDetached = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observers_detached_total",
			Help:      "Observers removed from the registry by reason",
		},
		[]string{"transport", "reason"},
	)

	r.MessagesDelivered = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_delivered_total",
			Help:      "Output events written to observers",
		},
		[]string{"transport", "event_type"},
	)

	r.MessagesDropped = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_dropped_total",
			Help:      "Output events that could not be delivered",
		},
		[]string{"transport", "event_type", "reason"},
	)
}

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
}
