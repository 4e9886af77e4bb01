package inmemorytopology

import (
	"context"
	"sync"

	"github.com/specialistvlad/meshviz/internal/mesh"
	"github.com/specialistvlad/meshviz/internal/topologystore"
)

// Store implements the topologystore.Store interface by guarding a Graph
// with a sync.RWMutex.
type Store struct {
	mu    sync.RWMutex
	graph *Graph
}

// New creates a new, empty in-memory topology store.
func New() *Store {
	return &Store{graph: NewGraph()}
}

var _ topologystore.Store = (*Store)(nil)

// Update runs fn while holding the write lock.
func (s *Store) Update(ctx context.Context, fn func(g topologystore.Graph) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(s.graph)
}

// Snapshot returns a deep copy of the graph taken under the read lock.
func (s *Store) Snapshot(ctx context.Context) mesh.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.graph.Snapshot()
}

// Stats returns the node and link counts.
func (s *Store) Stats(ctx context.Context) (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.graph.NodeCount(), s.graph.LinkCount()
}
