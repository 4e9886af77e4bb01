package metrics

import (
	"time"

	"github.com/specialistvlad/meshviz/internal/events"
	"github.com/specialistvlad/meshviz/internal/observer"
)

var _ observer.Recorder = (*Registry)(nil)

// RecordEvent records one processed input event.
func (r *Registry) RecordEvent(kind events.Kind, status string, duration time.Duration) {
	if kind == "" {
		kind = "unknown"
	}
	r.EventsTotal.WithLabelValues(string(kind), status).Inc()
	r.EventProcessDuration.WithLabelValues(string(kind)).Observe(duration.Seconds())
}

// RecordBroadcast records how many observers accepted one broadcast.
func (r *Registry) RecordBroadcast(recipients int) {
	r.BroadcastRecipients.Observe(float64(recipients))
}

// SetGraphSize updates the graph gauges.
func (r *Registry) SetGraphSize(nodes, links int) {
	r.GraphNodes.Set(float64(nodes))
	r.GraphLinks.Set(float64(links))
}

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func (r *Registry) ObserverAttached(transport string) {
	r.ObserversActive.WithLabelValues(transport).Inc()
}

func (r *Registry) ObserverDetached(transport, reason string) {
	r.ObserversActive.WithLabelValues(transport).Dec()
	r.ObserversDetached.WithLabelValues(transport, reason).Inc()
}

func (r *Registry) MessageDelivered(transport string, kind events.Kind) {
	r.MessagesDelivered.WithLabelValues(transport, string(kind)).Inc()
}

func (r *Registry) MessageDropped(transport string, kind events.Kind, reason string) {
	r.MessagesDropped.WithLabelValues(transport, string(kind), reason).Inc()
}

// PacketSent records a packet entering the in-flight set.
func (r *Registry) PacketSent() {
	r.PacketsInFlight.Inc()
}

// PacketSettled records a packet leaving the in-flight set.
func (r *Registry) PacketSettled(outcome string) {
	r.PacketsInFlight.Dec()
	r.PacketsSettled.WithLabelValues(outcome).Inc()
}
