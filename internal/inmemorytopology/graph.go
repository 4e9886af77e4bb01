package inmemorytopology

import (
	"fmt"
	"sort"

	"github.com/specialistvlad/meshviz/internal/mesh"
	"github.com/specialistvlad/meshviz/internal/topologystore"
)

type linkEntry struct {
	seq    uint64
	source mesh.NodeID
	target mesh.NodeID
}

// Graph is an undirected multigraph whose parallel edges are distinguished by
// technology. It is not safe for concurrent use; Store provides the locking.
type Graph struct {
	seq   uint64
	nodes map[mesh.NodeID]uint64 // insertion sequence
	links map[mesh.LinkKey]linkEntry
	adj   map[mesh.NodeID]map[mesh.LinkKey]struct{} // incident links per node
}

var _ topologystore.Graph = (*Graph)(nil)

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[mesh.NodeID]uint64),
		links: make(map[mesh.LinkKey]linkEntry),
		adj:   make(map[mesh.NodeID]map[mesh.LinkKey]struct{}),
	}
}

func (g *Graph) next() uint64 {
	g.seq++
	return g.seq
}

// HasNode reports whether id is present.
func (g *Graph) HasNode(id mesh.NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// AddNode inserts id if it is absent.
func (g *Graph) AddNode(id mesh.NodeID) bool {
	if _, exists := g.nodes[id]; exists {
		return false
	}
	g.nodes[id] = g.next()
	return true
}

// RemoveNode deletes id along with all incident links.
func (g *Graph) RemoveNode(id mesh.NodeID) bool {
	if _, exists := g.nodes[id]; !exists {
		return false
	}
	for key := range g.adj[id] {
		g.dropLink(key)
	}
	delete(g.adj, id)
	delete(g.nodes, id)
	return true
}

// AddLink inserts (a,b,t), creating missing endpoints.
func (g *Graph) AddLink(a, b mesh.NodeID, t mesh.Technology) bool {
	g.AddNode(a)
	g.AddNode(b)

	key := mesh.NewLinkKey(a, b, t)
	if _, exists := g.links[key]; exists {
		return false
	}
	g.links[key] = linkEntry{seq: g.next(), source: a, target: b}
	g.attach(a, key)
	g.attach(b, key)
	return true
}

// RemoveLink deletes (a,b,t) or fails with mesh.ErrNotFound.
func (g *Graph) RemoveLink(a, b mesh.NodeID, t mesh.Technology) error {
	key := mesh.NewLinkKey(a, b, t)
	if _, exists := g.links[key]; exists {
		g.dropLink(key)
		return nil
	}
	if !g.connected(a, b) {
		return fmt.Errorf("no link between %s and %s: %w", a, b, mesh.ErrNotFound)
	}
	return fmt.Errorf("no %s link between %s and %s: %w", t, a, b, mesh.ErrNotFound)
}

// Snapshot returns the nodes and links in insertion order.
func (g *Graph) Snapshot() mesh.Snapshot {
	type seqNode struct {
		seq uint64
		id  mesh.NodeID
	}
	nodes := make([]seqNode, 0, len(g.nodes))
	for id, seq := range g.nodes {
		nodes = append(nodes, seqNode{seq: seq, id: id})
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].seq < nodes[j].seq })

	type seqLink struct {
		seq  uint64
		view mesh.LinkView
	}
	links := make([]seqLink, 0, len(g.links))
	for key, e := range g.links {
		links = append(links, seqLink{
			seq:  e.seq,
			view: mesh.LinkView{Source: e.source, Target: e.target, Technology: key.Technology},
		})
	}
	sort.Slice(links, func(i, j int) bool { return links[i].seq < links[j].seq })

	snap := mesh.EmptySnapshot()
	for _, n := range nodes {
		snap.Nodes = append(snap.Nodes, mesh.NodeView{ID: n.id})
	}
	for _, l := range links {
		snap.Links = append(snap.Links, l.view)
	}
	return snap
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// LinkCount returns the number of links.
func (g *Graph) LinkCount() int { return len(g.links) }

func (g *Graph) attach(id mesh.NodeID, key mesh.LinkKey) {
	if g.adj[id] == nil {
		g.adj[id] = make(map[mesh.LinkKey]struct{})
	}
	g.adj[id][key] = struct{}{}
}

func (g *Graph) dropLink(key mesh.LinkKey) {
	delete(g.links, key)
	if set := g.adj[key.A]; set != nil {
		delete(set, key)
	}
	if set := g.adj[key.B]; set != nil {
		delete(set, key)
	}
}

// connected reports whether any link, of any technology, joins a and b.
func (g *Graph) connected(a, b mesh.NodeID) bool {
	pair := mesh.NewLinkKey(a, b, "").Pair()
	for key := range g.adj[a] {
		if key.Pair() == pair {
			return true
		}
	}
	return false
}
