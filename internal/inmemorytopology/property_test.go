package inmemorytopology

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/specialistvlad/meshviz/internal/mesh"
)

var propNodes = []mesh.NodeID{"n0", "n1", "n2", "n3", "n4"}

// applyOps decodes each integer into one graph operation so gopter can
// shrink failing sequences.
func applyOps(g *Graph, ops []int) {
	for _, v := range ops {
		a := propNodes[(v/4)%len(propNodes)]
		b := propNodes[(v/20)%len(propNodes)]
		tech := mesh.Technologies[(v/100)%len(mesh.Technologies)]
		switch v % 4 {
		case 0:
			g.AddNode(a)
		case 1:
			g.RemoveNode(a)
		case 2:
			g.AddLink(a, b, tech)
		case 3:
			_ = g.RemoveLink(a, b, tech)
		}
	}
}

// TestGraphInvariants checks invariants that must hold after any sequence of
// operations.
func TestGraphInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	opsGen := gen.SliceOf(gen.IntRange(0, 999))

	properties.Property("every link endpoint exists as a node", prop.ForAll(
		func(ops []int) bool {
			g := NewGraph()
			applyOps(g, ops)
			snap := g.Snapshot()
			for _, l := range snap.Links {
				if !snap.HasNode(l.Source) || !snap.HasNode(l.Target) {
					return false
				}
			}
			return true
		},
		opsGen,
	))

	properties.Property("snapshot has no duplicate nodes or link keys", prop.ForAll(
		func(ops []int) bool {
			g := NewGraph()
			applyOps(g, ops)
			snap := g.Snapshot()
			seenNodes := make(map[mesh.NodeID]bool)
			for _, n := range snap.Nodes {
				if seenNodes[n.ID] {
					return false
				}
				seenNodes[n.ID] = true
			}
			seenLinks := make(map[mesh.LinkKey]bool)
			for _, l := range snap.Links {
				if seenLinks[l.Key()] {
					return false
				}
				seenLinks[l.Key()] = true
			}
			return len(snap.Nodes) == g.NodeCount() && len(snap.Links) == g.LinkCount()
		},
		opsGen,
	))

	properties.Property("removing a node leaves no incident link", prop.ForAll(
		func(ops []int, victim int) bool {
			g := NewGraph()
			applyOps(g, ops)
			id := propNodes[victim%len(propNodes)]
			g.RemoveNode(id)
			for _, l := range g.Snapshot().Links {
				if l.Source == id || l.Target == id {
					return false
				}
			}
			return !g.HasNode(id)
		},
		opsGen,
		gen.IntRange(0, 100),
	))

	properties.Property("failed link removal leaves the graph unchanged", prop.ForAll(
		func(ops []int, probe int) bool {
			g := NewGraph()
			applyOps(g, ops)
			a := propNodes[probe%len(propNodes)]
			b := propNodes[(probe/5)%len(propNodes)]
			tech := mesh.Technologies[(probe/25)%len(mesh.Technologies)]
			before := g.Snapshot()
			if err := g.RemoveLink(a, b, tech); err == nil {
				return true
			}
			after := g.Snapshot()
			return len(before.Nodes) == len(after.Nodes) && len(before.Links) == len(after.Links)
		},
		opsGen,
		gen.IntRange(0, 124),
	))

	properties.TestingRun(t)
}
