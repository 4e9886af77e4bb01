// Package inmemorytopology provides a simple, thread-safe, in-memory
// implementation of the topologystore.Store interface, backed by a
// technology-keyed undirected multigraph.
package inmemorytopology
