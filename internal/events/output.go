package events

import (
	"encoding/json"
	"time"

	"github.com/specialistvlad/meshviz/internal/mesh"
)

// Output is one event ready for delivery to observers.
type Output interface {
	Kind() Kind
	sealedOutput()
}

// Header holds the fields shared by every output event.
type Header struct {
	EventType Kind   `json:"event_type"`
	Timestamp string `json:"timestamp"`
}

// NewHeader stamps an output header with the given time in RFC 3339 UTC.
func NewHeader(kind Kind, at time.Time) Header {
	return Header{EventType: kind, Timestamp: FormatTime(at)}
}

func (h Header) Kind() Kind  { return h.EventType }
func (Header) sealedOutput() {}

// FormatTime renders t the way every timestamp on the wire is rendered.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

type ConnectNeighborOutput struct {
	Header
	NodeID     mesh.NodeID     `json:"node_id"`
	NeighborID mesh.NodeID     `json:"neighbor_id"`
	Technology mesh.Technology `json:"technology"`
	Graph      mesh.Snapshot   `json:"graph"`
}

type DisconnectNeighborOutput struct {
	Header
	NodeID     mesh.NodeID     `json:"node_id"`
	NeighborID mesh.NodeID     `json:"neighbor_id"`
	Technology mesh.Technology `json:"technology"`
	Graph      mesh.Snapshot   `json:"graph"`
}

type HeartbeatOutput struct {
	Header
	NodeID        mesh.NodeID     `json:"node_id"`
	PacketID      string          `json:"packet_id"`
	DestinationID mesh.NodeID     `json:"destination_id"`
	Technology    mesh.Technology `json:"technology"`
}

type TurnedOnOutput struct {
	Header
	NodeID mesh.NodeID   `json:"node_id"`
	Graph  mesh.Snapshot `json:"graph"`
}

type TurnedOffOutput struct {
	Header
	NodeID mesh.NodeID   `json:"node_id"`
	Graph  mesh.Snapshot `json:"graph"`
}

type SendPacketOutput struct {
	Header
	NodeID        mesh.NodeID     `json:"node_id"`
	DestinationID mesh.NodeID     `json:"destination_id"`
	PacketID      string          `json:"packet_id"`
	Technology    mesh.Technology `json:"technology"`
}

type ReceivePacketOutput struct {
	Header
	NodeID     mesh.NodeID     `json:"node_id"`
	PacketID   string          `json:"packet_id"`
	Technology mesh.Technology `json:"technology"`
}

type DropPacketOutput struct {
	Header
	NodeID   mesh.NodeID `json:"node_id"`
	PacketID string      `json:"packet_id"`
	Reason   string      `json:"reason"`
}

// UpdateGraphOutput carries the full graph to a newly attached observer.
type UpdateGraphOutput struct {
	Header
	Graph mesh.Snapshot `json:"graph"`
}

// Encode renders an output event as its JSON wire payload.
func Encode(out Output) ([]byte, error) {
	return json.Marshal(out)
}
