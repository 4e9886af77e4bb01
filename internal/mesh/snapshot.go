package mesh

// NodeView is the serialized form of a node.
type NodeView struct {
	ID NodeID `json:"id"`
}

// LinkView is the serialized form of a link. Source and Target keep the
// orientation the link was first created with.
type LinkView struct {
	Source     NodeID     `json:"source"`
	Target     NodeID     `json:"target"`
	Technology Technology `json:"technology"`
}

// Key returns the normalized key of the link.
func (l LinkView) Key() LinkKey {
	return NewLinkKey(l.Source, l.Target, l.Technology)
}

// Snapshot is an immutable copy of the graph at one instant, in the
// node/link representation sent to observers. Nodes and links are listed in
// insertion order.
type Snapshot struct {
	Nodes []NodeView `json:"nodes"`
	Links []LinkView `json:"links"`
}

// EmptySnapshot returns a snapshot with non-nil, empty slices so it encodes
// as {"nodes":[],"links":[]}.
func EmptySnapshot() Snapshot {
	return Snapshot{Nodes: []NodeView{}, Links: []LinkView{}}
}

// HasNode reports whether the snapshot contains id.
func (s Snapshot) HasNode(id NodeID) bool {
	for _, n := range s.Nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

// HasLink reports whether the snapshot contains the link (a,b,t) in either
// orientation.
func (s Snapshot) HasLink(a, b NodeID, t Technology) bool {
	want := NewLinkKey(a, b, t)
	for _, l := range s.Links {
		if l.Key() == want {
			return true
		}
	}
	return false
}
