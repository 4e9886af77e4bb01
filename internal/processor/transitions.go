package processor

import (
	"context"

	"github.com/specialistvlad/meshviz/internal/events"
	"github.com/specialistvlad/meshviz/internal/topologystore"
)

func (p *Processor) HandleConnectNeighbor(ctx context.Context, in events.ConnectNeighbor) (events.Output, error) {
	out := events.ConnectNeighborOutput{
		Header:     p.header(events.KindConnect),
		NodeID:     in.SourceID,
		NeighborID: in.NeighborID,
		Technology: in.Technology,
	}
	err := p.store.Update(ctx, func(g topologystore.Graph) error {
		g.AddNode(in.SourceID)
		g.AddNode(in.NeighborID)
		g.AddLink(in.SourceID, in.NeighborID, in.Technology)
		out.Graph = g.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Processor) HandleDisconnectNeighbor(ctx context.Context, in events.DisconnectNeighbor) (events.Output, error) {
	out := events.DisconnectNeighborOutput{
		Header:     p.header(events.KindDisconnect),
		NodeID:     in.SourceID,
		NeighborID: in.NeighborID,
		Technology: in.Technology,
	}
	err := p.store.Update(ctx, func(g topologystore.Graph) error {
		if err := g.RemoveLink(in.SourceID, in.NeighborID, in.Technology); err != nil {
			return err
		}
		out.Graph = g.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Processor) HandleHeartbeat(ctx context.Context, in events.Heartbeat) (events.Output, error) {
	if err := p.ensureNode(ctx, in.SourceID); err != nil {
		return nil, err
	}
	return events.HeartbeatOutput{
		Header:        p.header(events.KindHeartbeat),
		NodeID:        in.SourceID,
		PacketID:      in.PacketID,
		DestinationID: in.DestinationID,
		Technology:    in.Technology,
	}, nil
}

func (p *Processor) HandleTurnedOn(ctx context.Context, in events.TurnedOn) (events.Output, error) {
	out := events.TurnedOnOutput{
		Header: p.header(events.KindTurnedOn),
		NodeID: in.SourceID,
	}
	err := p.store.Update(ctx, func(g topologystore.Graph) error {
		g.AddNode(in.SourceID)
		out.Graph = g.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Processor) HandleTurnedOff(ctx context.Context, in events.TurnedOff) (events.Output, error) {
	out := events.TurnedOffOutput{
		Header: p.header(events.KindTurnedOff),
		NodeID: in.SourceID,
	}
	err := p.store.Update(ctx, func(g topologystore.Graph) error {
		g.RemoveNode(in.SourceID)
		out.Graph = g.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Processor) HandleSendPacket(ctx context.Context, in events.SendPacket) (events.Output, error) {
	if err := p.ensureNode(ctx, in.SourceID); err != nil {
		return nil, err
	}
	return events.SendPacketOutput{
		Header:        p.header(events.KindSendPacket),
		NodeID:        in.SourceID,
		DestinationID: in.DestinationID,
		PacketID:      in.PacketID,
		Technology:    in.Technology,
	}, nil
}

func (p *Processor) HandleReceivePacket(ctx context.Context, in events.ReceivePacket) (events.Output, error) {
	if err := p.ensureNode(ctx, in.DestinationID); err != nil {
		return nil, err
	}
	return events.ReceivePacketOutput{
		Header:     p.header(events.KindReceivePacket),
		NodeID:     in.DestinationID,
		PacketID:   in.PacketID,
		Technology: in.Technology,
	}, nil
}

func (p *Processor) HandleDropPacket(ctx context.Context, in events.DropPacket) (events.Output, error) {
	if err := p.ensureNode(ctx, in.SourceID); err != nil {
		return nil, err
	}
	reason := in.Reason
	if reason == "" {
		reason = events.DefaultDropReason
	}
	return events.DropPacketOutput{
		Header:   p.header(events.KindDropPacket),
		NodeID:   in.SourceID,
		PacketID: in.PacketID,
		Reason:   reason,
	}, nil
}
