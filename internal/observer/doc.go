// Package observer tracks the set of attached observers and delivers output
// events to them.
//
// The registry owns membership, not the channels themselves: a transport
// (websocket, socket.io) performs its handshake, wraps the connection in a
// Conn and attaches it. From then on every observer has its own bounded
// queue drained by a dedicated writer goroutine, so one slow or broken
// observer never holds up delivery to the others. An observer whose queue
// overflows, or whose write fails or exceeds the write timeout, is detached
// and closed. Delivery is at-most-once and never retried.
//
// Broadcast copies the member list under a read lock and enqueues outside
// it, so attach and detach may run concurrently with a broadcast.
package observer
