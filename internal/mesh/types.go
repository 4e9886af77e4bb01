package mesh

import "fmt"

// NodeID is the opaque identity of a mesh node.
type NodeID string

// String implements fmt.Stringer.
func (id NodeID) String() string { return string(id) }

// Technology distinguishes parallel links between the same pair of nodes.
type Technology string

const (
	TechRadio     Technology = "radio"
	TechWired     Technology = "wired"
	TechWiFi      Technology = "wifi"
	TechBluetooth Technology = "bluetooth"
	TechLoRa      Technology = "lora"
)

// Technologies lists every known technology in a stable order.
var Technologies = []Technology{TechRadio, TechWired, TechWiFi, TechBluetooth, TechLoRa}

// Valid reports whether t is one of the known technologies.
func (t Technology) Valid() bool {
	for _, known := range Technologies {
		if t == known {
			return true
		}
	}
	return false
}

// LinkKey identifies a link independently of the order its endpoints were
// given in. A and B are always stored with A <= B.
type LinkKey struct {
	A, B       NodeID
	Technology Technology
}

// NewLinkKey normalizes the endpoint order so that (a,b,t) and (b,a,t)
// produce the same key.
func NewLinkKey(a, b NodeID, t Technology) LinkKey {
	if b < a {
		a, b = b, a
	}
	return LinkKey{A: a, B: b, Technology: t}
}

// Pair returns the normalized endpoint pair without the technology.
func (k LinkKey) Pair() [2]NodeID {
	return [2]NodeID{k.A, k.B}
}

func (k LinkKey) String() string {
	return fmt.Sprintf("%s<->%s/%s", k.A, k.B, k.Technology)
}
