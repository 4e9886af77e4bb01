package processor

import (
	"context"
	"time"

	"github.com/specialistvlad/meshviz/internal/ctxlog"
	"github.com/specialistvlad/meshviz/internal/events"
	"github.com/specialistvlad/meshviz/internal/mesh"
	"github.com/specialistvlad/meshviz/internal/topologystore"
)

// Processor applies input events to the topology store.
type Processor struct {
	store topologystore.Store
	now   func() time.Time
}

var _ events.Handler = (*Processor)(nil)

// Option configures a Processor.
type Option func(*Processor)

// WithClock overrides the clock used to stamp output events.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// New creates a processor over store.
func New(store topologystore.Store, opts ...Option) *Processor {
	p := &Processor{store: store, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process applies one input event and returns the output event to
// broadcast. Every failure is returned as *Error.
func (p *Processor) Process(ctx context.Context, in events.Input) (events.Output, error) {
	if in == nil {
		return nil, &Error{Err: events.ErrUnknownEventKind}
	}
	logger := ctxlog.FromContext(ctx).With("event_type", in.Kind(), "source_id", in.Source())
	logger.Debug("Processing event.", "timestamp", in.At())

	out, err := in.Dispatch(ctx, p)
	if err != nil {
		logger.Debug("Event rejected.", "error", err)
		return nil, &Error{Kind: in.Kind(), Source: in.Source(), Err: err}
	}
	return out, nil
}

// Snapshot builds the update_graph event sent to newly attached observers.
func (p *Processor) Snapshot(ctx context.Context) events.UpdateGraphOutput {
	return events.UpdateGraphOutput{
		Header: p.header(events.KindUpdateGraph),
		Graph:  p.store.Snapshot(ctx),
	}
}

func (p *Processor) header(kind events.Kind) events.Header {
	return events.NewHeader(kind, p.now())
}

// ensureNode adds id if it is absent.
func (p *Processor) ensureNode(ctx context.Context, id mesh.NodeID) error {
	return p.store.Update(ctx, func(g topologystore.Graph) error {
		if g.AddNode(id) {
			ctxlog.FromContext(ctx).Debug("Node created implicitly.", "node_id", id)
		}
		return nil
	})
}
