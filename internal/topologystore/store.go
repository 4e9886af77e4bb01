// Package topologystore defines the contract for the authoritative mesh
// topology: the single mutable graph of nodes and technology-keyed links.
//
// # Why Topology Store Exists
//
// Every processed event reads and writes the same graph, while any number of
// observers need consistent copies of it. The store isolates the mutable
// graph behind a mutual-exclusion boundary and only ever hands out
// snapshots, so no caller can hold a reference into live state.
//
// # Transactions
//
// A single event may touch the graph several times (add both endpoints, add
// the link, then snapshot). Those steps run inside Update, which holds the
// write lock for the whole callback. Readers calling Snapshot never observe a
// half-applied transition.
//
// Failed callbacks are not rolled back. Transitions are written so that the
// failing step is always the first mutation (see processor), which makes a
// rollback unnecessary.
package topologystore

import (
	"context"

	"github.com/specialistvlad/meshviz/internal/mesh"
)

// Graph is the mutable view of the topology passed to Update callbacks. It is
// only valid for the duration of the callback and must not be retained.
type Graph interface {
	// HasNode reports whether id is present.
	HasNode(id mesh.NodeID) bool

	// AddNode inserts id. Adding an existing node is a no-op and reports
	// false.
	AddNode(id mesh.NodeID) bool

	// RemoveNode deletes id and every link incident to it. Removing an
	// absent node is a no-op and reports false.
	RemoveNode(id mesh.NodeID) bool

	// AddLink inserts the link (a,b,t), adding either endpoint if it is
	// missing. The link is keyed by the unordered pair plus technology, so
	// adding it again in any orientation is a no-op and reports false.
	AddLink(a, b mesh.NodeID, t mesh.Technology) bool

	// RemoveLink deletes the link (a,b,t). It returns an error wrapping
	// mesh.ErrNotFound when no link joins a and b at all, or when none of the
	// links between them uses technology t. The graph is unchanged on error.
	RemoveLink(a, b mesh.NodeID, t mesh.Technology) error

	// Snapshot returns a deep copy of the current nodes and links.
	Snapshot() mesh.Snapshot

	// NodeCount and LinkCount report the current graph size.
	NodeCount() int
	LinkCount() int
}

// Store owns the topology graph and serializes access to it.
//
// # Thread-Safety Requirements
//
// Implementations MUST allow Update and Snapshot to be called from any number
// of goroutines. Update callbacks run one at a time; Snapshot may run
// concurrently with other Snapshot calls but never concurrently with an
// Update callback.
//
// # Typical Implementation
//
// See internal/inmemorytopology for the in-memory implementation using maps
// and sync.RWMutex.
type Store interface {
	// Update runs fn with exclusive access to the graph and returns fn's
	// error. It returns ctx.Err() without calling fn if ctx is already done.
	Update(ctx context.Context, fn func(g Graph) error) error

	// Snapshot returns a consistent deep copy of the graph.
	Snapshot(ctx context.Context) mesh.Snapshot

	// Stats returns the current node and link counts.
	Stats(ctx context.Context) (nodes, links int)
}
