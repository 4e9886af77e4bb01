package events

import (
	"context"

	"github.com/specialistvlad/meshviz/internal/mesh"
)

// Input is one decoded input event. The set of implementations is closed.
type Input interface {
	Kind() Kind
	Source() mesh.NodeID
	At() string

	// Dispatch calls the Handler method matching the concrete kind.
	Dispatch(ctx context.Context, h Handler) (Output, error)

	sealed()
}

// Handler has one method per input kind.
type Handler interface {
	HandleConnectNeighbor(ctx context.Context, in ConnectNeighbor) (Output, error)
	HandleDisconnectNeighbor(ctx context.Context, in DisconnectNeighbor) (Output, error)
	HandleHeartbeat(ctx context.Context, in Heartbeat) (Output, error)
	HandleTurnedOn(ctx context.Context, in TurnedOn) (Output, error)
	HandleTurnedOff(ctx context.Context, in TurnedOff) (Output, error)
	HandleSendPacket(ctx context.Context, in SendPacket) (Output, error)
	HandleReceivePacket(ctx context.Context, in ReceivePacket) (Output, error)
	HandleDropPacket(ctx context.Context, in DropPacket) (Output, error)
}

// Envelope holds the fields shared by every input event.
type Envelope struct {
	SourceID  mesh.NodeID `json:"source_id" validate:"required"`
	Timestamp string      `json:"timestamp,omitempty"`
}

func (e Envelope) Source() mesh.NodeID { return e.SourceID }
func (e Envelope) At() string          { return e.Timestamp }
func (Envelope) sealed()               {}

// ConnectNeighbor reports a new link between source and neighbor.
type ConnectNeighbor struct {
	Envelope
	NeighborID mesh.NodeID     `json:"neighbor_id" validate:"required"`
	Technology mesh.Technology `json:"technology" validate:"required,technology"`
}

func (ConnectNeighbor) Kind() Kind { return KindConnect }
func (e ConnectNeighbor) Dispatch(ctx context.Context, h Handler) (Output, error) {
	return h.HandleConnectNeighbor(ctx, e)
}

// DisconnectNeighbor reports that a link between source and neighbor is gone.
type DisconnectNeighbor struct {
	Envelope
	NeighborID mesh.NodeID     `json:"neighbor_id" validate:"required"`
	Technology mesh.Technology `json:"technology" validate:"required,technology"`
}

func (DisconnectNeighbor) Kind() Kind { return KindDisconnect }
func (e DisconnectNeighbor) Dispatch(ctx context.Context, h Handler) (Output, error) {
	return h.HandleDisconnectNeighbor(ctx, e)
}

// Heartbeat is a liveness probe sent by source towards destination.
type Heartbeat struct {
	Envelope
	DestinationID mesh.NodeID     `json:"destination_id" validate:"required"`
	PacketID      string          `json:"packet_id" validate:"required"`
	Technology    mesh.Technology `json:"technology" validate:"required,technology"`
}

func (Heartbeat) Kind() Kind { return KindHeartbeat }
func (e Heartbeat) Dispatch(ctx context.Context, h Handler) (Output, error) {
	return h.HandleHeartbeat(ctx, e)
}

// TurnedOn reports that source powered on.
type TurnedOn struct {
	Envelope
}

func (TurnedOn) Kind() Kind { return KindTurnedOn }
func (e TurnedOn) Dispatch(ctx context.Context, h Handler) (Output, error) {
	return h.HandleTurnedOn(ctx, e)
}

// TurnedOff reports that source powered off.
type TurnedOff struct {
	Envelope
}

func (TurnedOff) Kind() Kind { return KindTurnedOff }
func (e TurnedOff) Dispatch(ctx context.Context, h Handler) (Output, error) {
	return h.HandleTurnedOff(ctx, e)
}

// SendPacket reports that source put a packet on the air.
type SendPacket struct {
	Envelope
	DestinationID mesh.NodeID     `json:"destination_id" validate:"required"`
	PacketID      string          `json:"packet_id" validate:"required"`
	Technology    mesh.Technology `json:"technology" validate:"required,technology"`
}

func (SendPacket) Kind() Kind { return KindSendPacket }
func (e SendPacket) Dispatch(ctx context.Context, h Handler) (Output, error) {
	return h.HandleSendPacket(ctx, e)
}

// ReceivePacket reports that destination received a packet.
type ReceivePacket struct {
	Envelope
	DestinationID mesh.NodeID     `json:"destination_id" validate:"required"`
	PacketID      string          `json:"packet_id" validate:"required"`
	Technology    mesh.Technology `json:"technology" validate:"required,technology"`
}

func (ReceivePacket) Kind() Kind { return KindReceivePacket }
func (e ReceivePacket) Dispatch(ctx context.Context, h Handler) (Output, error) {
	return h.HandleReceivePacket(ctx, e)
}

// DefaultDropReason is used when a drop_packet event carries no reason.
const DefaultDropReason = "Unspecified reason for dropping the packet"

// DropPacket reports that source discarded a packet.
type DropPacket struct {
	Envelope
	PacketID string `json:"packet_id" validate:"required"`
	Reason   string `json:"reason,omitempty"`
}

func (DropPacket) Kind() Kind { return KindDropPacket }
func (e DropPacket) Dispatch(ctx context.Context, h Handler) (Output, error) {
	return h.HandleDropPacket(ctx, e)
}
