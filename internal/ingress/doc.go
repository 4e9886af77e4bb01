// Package ingress is the HTTP surface for event producers and read-only
// clients.
//
//	POST /events   apply one input event, reply with its output event
//	GET  /graph    current graph as an update_graph event
//	GET  /packets  packets currently in flight
//	GET  /health   liveness
//	GET  /         welcome message
//
// Every decode or processing failure is answered with the same 400 body so
// producers cannot probe the graph through error details.
package ingress
