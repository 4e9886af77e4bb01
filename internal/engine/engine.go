package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/specialistvlad/meshviz/internal/ctxlog"
	"github.com/specialistvlad/meshviz/internal/events"
	"github.com/specialistvlad/meshviz/internal/observer"
	"github.com/specialistvlad/meshviz/internal/processor"
	"github.com/specialistvlad/meshviz/internal/topologystore"
	"github.com/specialistvlad/meshviz/internal/traffic"
)

// Recorder receives per-event measurements.
type Recorder interface {
	RecordEvent(kind events.Kind, status string, duration time.Duration)
	RecordBroadcast(recipients int)
	SetGraphSize(nodes, links int)
}

type nopRecorder struct{}

func (nopRecorder) RecordEvent(events.Kind, string, time.Duration) {}
func (nopRecorder) RecordBroadcast(int)                            {}
func (nopRecorder) SetGraphSize(int, int)                          {}

// Event statuses passed to the Recorder.
const (
	StatusOK       = "ok"
	StatusRejected = "rejected"
)

// Engine serializes event processing and observer attachment.
type Engine struct {
	store     topologystore.Store
	processor *processor.Processor
	registry  *observer.Registry
	tracker   *traffic.Tracker
	recorder  Recorder
	now       func() time.Time

	// seq orders "apply then broadcast" against "attach then snapshot".
	seq sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithTracker enables in-flight packet tracking.
func WithTracker(t *traffic.Tracker) Option {
	return func(e *Engine) { e.tracker = t }
}

// WithRecorder installs a Recorder.
func WithRecorder(rec Recorder) Option {
	return func(e *Engine) {
		if rec != nil {
			e.recorder = rec
		}
	}
}

// WithClock overrides the clock used to stamp output events.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine over store that delivers to registry.
func New(store topologystore.Store, registry *observer.Registry, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		registry: registry,
		recorder: nopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.processor = processor.New(store, processor.WithClock(e.now))
	return e
}

// Ingest applies in to the graph and queues the resulting output event for
// every attached observer. On failure nothing is broadcast and the returned
// error is a *processor.Error.
func (e *Engine) Ingest(ctx context.Context, in events.Input) (events.Output, error) {
	start := time.Now()
	var kind events.Kind
	if in != nil {
		kind = in.Kind()
	}

	e.seq.Lock()
	defer e.seq.Unlock()

	out, err := e.processor.Process(ctx, in)
	if err != nil {
		e.recorder.RecordEvent(kind, StatusRejected, time.Since(start))
		return nil, err
	}
	e.track(in)

	recipients, err := e.registry.Broadcast(out)
	if err != nil {
		e.recorder.RecordEvent(kind, StatusRejected, time.Since(start))
		return nil, fmt.Errorf("failed to broadcast %s event: %w", kind, err)
	}

	nodes, links := e.store.Stats(ctx)
	e.recorder.SetGraphSize(nodes, links)
	e.recorder.RecordBroadcast(recipients)
	e.recorder.RecordEvent(kind, StatusOK, time.Since(start))
	ctxlog.FromContext(ctx).Debug("Event broadcast.", "event_type", kind, "recipients", recipients)
	return out, nil
}

// track updates the in-flight packet set. It never affects the graph.
func (e *Engine) track(in events.Input) {
	if e.tracker == nil {
		return
	}
	switch ev := in.(type) {
	case events.SendPacket:
		e.tracker.Sent(ev.PacketID, ev.SourceID, ev.DestinationID, ev.Technology)
	case events.ReceivePacket:
		e.tracker.Received(ev.PacketID)
	case events.DropPacket:
		e.tracker.Dropped(ev.PacketID)
	}
}

// Attach registers conn and queues the current graph snapshot as its first
// message.
func (e *Engine) Attach(ctx context.Context, conn observer.Conn) error {
	e.seq.Lock()
	defer e.seq.Unlock()

	if err := e.registry.Attach(conn); err != nil {
		return err
	}
	if err := e.registry.Unicast(conn.ID(), e.processor.Snapshot(ctx)); err != nil {
		e.registry.Detach(conn.ID())
		return fmt.Errorf("failed to send snapshot to observer %s: %w", conn.ID(), err)
	}
	return nil
}

// Detach removes an observer. It is safe to call more than once.
func (e *Engine) Detach(id string) bool {
	return e.registry.Detach(id)
}

// Snapshot returns the current graph as an update_graph event.
func (e *Engine) Snapshot(ctx context.Context) events.UpdateGraphOutput {
	return e.processor.Snapshot(ctx)
}

// InFlight lists packets sent but not yet settled. It is empty when
// tracking is disabled.
func (e *Engine) InFlight() []traffic.Flight {
	if e.tracker == nil {
		return nil
	}
	return e.tracker.InFlight()
}

// Observers returns the number of attached observers.
func (e *Engine) Observers() int {
	return e.registry.Len()
}

// Close detaches every observer and stops packet tracking.
func (e *Engine) Close() {
	e.registry.Close()
	if e.tracker != nil {
		e.tracker.Close()
	}
}
