package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/meshviz/internal/events"
	"github.com/specialistvlad/meshviz/internal/inmemorytopology"
	"github.com/specialistvlad/meshviz/internal/mesh"
	"github.com/specialistvlad/meshviz/internal/topologystore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestProcessor(t *testing.T) (*Processor, *inmemorytopology.Store) {
	t.Helper()
	store := inmemorytopology.New()
	return New(store, WithClock(func() time.Time { return fixedNow })), store
}

func seed(t *testing.T, store topologystore.Store, fn func(g topologystore.Graph)) {
	t.Helper()
	require.NoError(t, store.Update(context.Background(), func(g topologystore.Graph) error {
		fn(g)
		return nil
	}))
}

func env(source mesh.NodeID) events.Envelope {
	return events.Envelope{SourceID: source, Timestamp: "t0"}
}

func TestProcess_ConnectNeighbor(t *testing.T) {
	t.Parallel()
	p, store := newTestProcessor(t)

	// --- Act ---
	out, err := p.Process(context.Background(), events.ConnectNeighbor{
		Envelope:   env("n1"),
		NeighborID: "n2",
		Technology: mesh.TechRadio,
	})

	// --- Assert ---
	require.NoError(t, err)
	want := events.ConnectNeighborOutput{
		Header:     events.NewHeader(events.KindConnect, fixedNow),
		NodeID:     "n1",
		NeighborID: "n2",
		Technology: mesh.TechRadio,
		Graph: mesh.Snapshot{
			Nodes: []mesh.NodeView{{ID: "n1"}, {ID: "n2"}},
			Links: []mesh.LinkView{{Source: "n1", Target: "n2", Technology: mesh.TechRadio}},
		},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("unexpected output (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.Graph, store.Snapshot(context.Background())); diff != "" {
		t.Errorf("store diverged from output graph (-want +got):\n%s", diff)
	}
}

func TestProcess_TurnedOffCascades(t *testing.T) {
	t.Parallel()
	p, store := newTestProcessor(t)
	seed(t, store, func(g topologystore.Graph) { g.AddLink("n1", "n2", mesh.TechRadio) })

	out, err := p.Process(context.Background(), events.TurnedOff{Envelope: env("n1")})

	require.NoError(t, err)
	got, ok := out.(events.TurnedOffOutput)
	require.True(t, ok, "unexpected output type %T", out)
	assert.Equal(t, mesh.NodeID("n1"), got.NodeID)
	assert.Equal(t, []mesh.NodeView{{ID: "n2"}}, got.Graph.Nodes)
	assert.Empty(t, got.Graph.Links)
}

func TestProcess_TurnedOffUnknownNodeIsNoop(t *testing.T) {
	t.Parallel()
	p, _ := newTestProcessor(t)

	out, err := p.Process(context.Background(), events.TurnedOff{Envelope: env("ghost")})

	require.NoError(t, err)
	assert.Empty(t, out.(events.TurnedOffOutput).Graph.Nodes)
}

func TestProcess_TurnedOn(t *testing.T) {
	t.Parallel()
	p, _ := newTestProcessor(t)

	out, err := p.Process(context.Background(), events.TurnedOn{Envelope: env("n7")})

	require.NoError(t, err)
	got := out.(events.TurnedOnOutput)
	assert.Equal(t, events.KindTurnedOn, got.Kind())
	assert.Equal(t, []mesh.NodeView{{ID: "n7"}}, got.Graph.Nodes)
}

func TestProcess_HeartbeatAddsOnlySource(t *testing.T) {
	t.Parallel()
	p, store := newTestProcessor(t)

	out, err := p.Process(context.Background(), events.Heartbeat{
		Envelope:      env("n3"),
		DestinationID: "n4",
		PacketID:      "p1",
		Technology:    mesh.TechWired,
	})

	require.NoError(t, err)
	assert.Equal(t, events.HeartbeatOutput{
		Header:        events.NewHeader(events.KindHeartbeat, fixedNow),
		NodeID:        "n3",
		PacketID:      "p1",
		DestinationID: "n4",
		Technology:    mesh.TechWired,
	}, out)

	snap := store.Snapshot(context.Background())
	assert.True(t, snap.HasNode("n3"))
	assert.False(t, snap.HasNode("n4"))
}

func TestProcess_PacketEvents(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		in        events.Input
		want      events.Output
		wantNodes []mesh.NodeID
	}{
		{
			name: "send adds source",
			in: events.SendPacket{
				Envelope: env("a"), DestinationID: "b", PacketID: "p1", Technology: mesh.TechLoRa,
			},
			want: events.SendPacketOutput{
				Header: events.NewHeader(events.KindSendPacket, fixedNow),
				NodeID: "a", DestinationID: "b", PacketID: "p1", Technology: mesh.TechLoRa,
			},
			wantNodes: []mesh.NodeID{"a"},
		},
		{
			name: "receive adds destination and reports it as node",
			in: events.ReceivePacket{
				Envelope: env("a"), DestinationID: "b", PacketID: "p1", Technology: mesh.TechLoRa,
			},
			want: events.ReceivePacketOutput{
				Header: events.NewHeader(events.KindReceivePacket, fixedNow),
				NodeID: "b", PacketID: "p1", Technology: mesh.TechLoRa,
			},
			wantNodes: []mesh.NodeID{"b"},
		},
		{
			name: "drop keeps reason",
			in:   events.DropPacket{Envelope: env("a"), PacketID: "p1", Reason: "queue full"},
			want: events.DropPacketOutput{
				Header: events.NewHeader(events.KindDropPacket, fixedNow),
				NodeID: "a", PacketID: "p1", Reason: "queue full",
			},
			wantNodes: []mesh.NodeID{"a"},
		},
		{
			name: "drop defaults reason",
			in:   events.DropPacket{Envelope: env("a"), PacketID: "p1"},
			want: events.DropPacketOutput{
				Header: events.NewHeader(events.KindDropPacket, fixedNow),
				NodeID: "a", PacketID: "p1", Reason: events.DefaultDropReason,
			},
			wantNodes: []mesh.NodeID{"a"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p, store := newTestProcessor(t)

			out, err := p.Process(context.Background(), tc.in)

			require.NoError(t, err)
			assert.Equal(t, tc.want, out)
			snap := store.Snapshot(context.Background())
			require.Len(t, snap.Nodes, len(tc.wantNodes))
			for _, id := range tc.wantNodes {
				assert.True(t, snap.HasNode(id), "missing node %s", id)
			}
		})
	}
}

func TestProcess_DisconnectNeighbor(t *testing.T) {
	t.Parallel()
	p, store := newTestProcessor(t)
	seed(t, store, func(g topologystore.Graph) {
		g.AddLink("n1", "n2", mesh.TechRadio)
		g.AddLink("n1", "n2", mesh.TechWired)
	})

	out, err := p.Process(context.Background(), events.DisconnectNeighbor{
		Envelope:   env("n2"),
		NeighborID: "n1",
		Technology: mesh.TechRadio,
	})

	require.NoError(t, err)
	got := out.(events.DisconnectNeighborOutput)
	assert.Equal(t, mesh.TechRadio, got.Technology)
	assert.Equal(t, []mesh.LinkView{{Source: "n1", Target: "n2", Technology: mesh.TechWired}}, got.Graph.Links)
}

func TestProcess_DisconnectMissingLinkFails(t *testing.T) {
	t.Parallel()
	p, store := newTestProcessor(t)
	seed(t, store, func(g topologystore.Graph) { g.AddNode("n1"); g.AddNode("n2") })
	before := store.Snapshot(context.Background())

	out, err := p.Process(context.Background(), events.DisconnectNeighbor{
		Envelope:   env("n1"),
		NeighborID: "n2",
		Technology: mesh.TechRadio,
	})

	require.Error(t, err)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, mesh.ErrNotFound)
	var perr *Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, events.KindDisconnect, perr.Kind)
	assert.Equal(t, mesh.NodeID("n1"), perr.Source)
	assert.Equal(t, before, store.Snapshot(context.Background()))
}

func TestProcess_UnknownKindLeavesGraphUnchanged(t *testing.T) {
	t.Parallel()
	p, store := newTestProcessor(t)
	seed(t, store, func(g topologystore.Graph) { g.AddLink("a", "b", mesh.TechWiFi) })
	before := store.Snapshot(context.Background())

	out, err := p.Process(context.Background(), nil)

	assert.Nil(t, out)
	require.ErrorIs(t, err, events.ErrUnknownEventKind)
	var perr *Error
	assert.ErrorAs(t, err, &perr)
	assert.Equal(t, before, store.Snapshot(context.Background()))
}

func TestProcess_CancelledContext(t *testing.T) {
	t.Parallel()
	p, store := newTestProcessor(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Process(ctx, events.TurnedOn{Envelope: env("n1")})

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.Snapshot(context.Background()).Nodes)
}

func TestSnapshot_BuildsUpdateGraph(t *testing.T) {
	t.Parallel()
	p, store := newTestProcessor(t)
	seed(t, store, func(g topologystore.Graph) { g.AddLink("a", "b", mesh.TechBluetooth) })

	out := p.Snapshot(context.Background())

	assert.Equal(t, events.KindUpdateGraph, out.Kind())
	assert.Equal(t, "2024-05-01T12:00:00Z", out.Timestamp)
	assert.True(t, out.Graph.HasLink("b", "a", mesh.TechBluetooth))
}

func TestSnapshot_IsolatedFromLaterEvents(t *testing.T) {
	t.Parallel()
	p, _ := newTestProcessor(t)
	ctx := context.Background()
	_, err := p.Process(ctx, events.ConnectNeighbor{Envelope: env("a"), NeighborID: "b", Technology: mesh.TechRadio})
	require.NoError(t, err)

	snap := p.Snapshot(ctx)
	_, err = p.Process(ctx, events.TurnedOff{Envelope: env("a")})
	require.NoError(t, err)

	assert.Len(t, snap.Graph.Nodes, 2)
	assert.Len(t, snap.Graph.Links, 1)
}
