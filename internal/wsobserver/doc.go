// Package wsobserver attaches websocket clients as observers. Each client
// receives the current graph as its first text frame and then every
// broadcast event, one JSON object per frame. Frames sent by the client are
// read and discarded; they only serve to notice that the client went away.
package wsobserver
