// Package events defines the closed sets of input and output events that
// flow through the mesh engine.
//
// Input events are decoded from JSON by Decode and dispatched to a Handler,
// which has one method per input kind. Because Input is sealed and Handler
// is an interface, adding a new kind fails to compile until every Handler
// implementation handles it.
//
// Output events are immutable values built once per processed input. They
// encode to the wire payload delivered to observers:
//
//	{"event_type": "...", "timestamp": "...", ...kind-specific fields}
package events
