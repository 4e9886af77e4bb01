// Package traffic keeps track of packets that were sent but have not yet
// been received or dropped. Entries expire after a TTL and are then counted
// as lost. The tracker never influences the topology graph.
package traffic

import (
	"context"
	"sort"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/specialistvlad/meshviz/internal/ctxlog"
	"github.com/specialistvlad/meshviz/internal/mesh"
)

const (
	DefaultTTL      = 30 * time.Second
	DefaultCapacity = 100_000
)

// Outcomes reported to the Recorder when a packet leaves the in-flight set.
const (
	OutcomeReceived = "received"
	OutcomeDropped  = "dropped"
	OutcomeLost     = "lost"
)

// Flight describes one packet in transit.
type Flight struct {
	PacketID    string          `json:"packet_id"`
	Source      mesh.NodeID     `json:"source_id"`
	Destination mesh.NodeID     `json:"destination_id"`
	Technology  mesh.Technology `json:"technology"`
	SentAt      time.Time       `json:"sent_at"`
}

// Recorder is notified when packets enter and leave the in-flight set.
type Recorder interface {
	PacketSent()
	PacketSettled(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) PacketSent()          {}
func (nopRecorder) PacketSettled(string) {}

// Tracker is safe for concurrent use.
type Tracker struct {
	cache    *ttlcache.Cache[string, Flight]
	recorder Recorder
	now      func() time.Time
}

// Option configures a Tracker.
type Option func(*config)

type config struct {
	ttl      time.Duration
	capacity uint64
	recorder Recorder
	now      func() time.Time
}

// WithTTL sets how long a packet may stay in flight before it is lost.
func WithTTL(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithCapacity bounds the number of tracked packets. The oldest entry is
// evicted, and counted as lost, when the bound is reached.
func WithCapacity(n uint64) Option {
	return func(c *config) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithRecorder installs a Recorder.
func WithRecorder(rec Recorder) Option {
	return func(c *config) {
		if rec != nil {
			c.recorder = rec
		}
	}
}

// WithClock overrides the clock used for Flight.SentAt.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// New creates a tracker and starts its expiry loop. ctx supplies the
// logger. Call Close to stop it.
func New(ctx context.Context, opts ...Option) *Tracker {
	cfg := config{ttl: DefaultTTL, capacity: DefaultCapacity, recorder: nopRecorder{}, now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}

	t := &Tracker{
		cache: ttlcache.New[string, Flight](
			ttlcache.WithTTL[string, Flight](cfg.ttl),
			ttlcache.WithCapacity[string, Flight](cfg.capacity),
			ttlcache.WithDisableTouchOnHit[string, Flight](),
		),
		recorder: cfg.recorder,
		now:      cfg.now,
	}

	logger := ctxlog.FromContext(ctx)
	t.cache.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, Flight]) {
		if reason == ttlcache.EvictionReasonDeleted {
			return
		}
		f := item.Value()
		logger.Debug("Packet lost.", "packet_id", f.PacketID, "source_id", f.Source, "destination_id", f.Destination)
		t.recorder.PacketSettled(OutcomeLost)
	})

	go t.cache.Start()
	return t
}

// Sent registers a packet. Sending an id that is already in flight
// restarts its TTL.
func (t *Tracker) Sent(id string, source, destination mesh.NodeID, tech mesh.Technology) {
	f := Flight{PacketID: id, Source: source, Destination: destination, Technology: tech, SentAt: t.now()}
	if _, found := t.cache.GetOrSet(id, f); found {
		t.cache.Set(id, f, ttlcache.DefaultTTL)
		return
	}
	t.recorder.PacketSent()
}

// Received settles a packet as delivered. It reports whether the packet was
// in flight.
func (t *Tracker) Received(id string) bool {
	return t.settle(id, OutcomeReceived)
}

// Dropped settles a packet as dropped. It reports whether the packet was in
// flight.
func (t *Tracker) Dropped(id string) bool {
	return t.settle(id, OutcomeDropped)
}

func (t *Tracker) settle(id, outcome string) bool {
	if _, ok := t.cache.GetAndDelete(id); !ok {
		return false
	}
	t.recorder.PacketSettled(outcome)
	return true
}

// Len returns the number of packets in flight.
func (t *Tracker) Len() int {
	return t.cache.Len()
}

// InFlight lists the packets in flight, oldest first.
func (t *Tracker) InFlight() []Flight {
	items := t.cache.Items()
	out := make([]Flight, 0, len(items))
	for _, item := range items {
		if item.IsExpired() {
			continue
		}
		out = append(out, item.Value())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SentAt.Equal(out[j].SentAt) {
			return out[i].PacketID < out[j].PacketID
		}
		return out[i].SentAt.Before(out[j].SentAt)
	})
	return out
}

// Close stops the expiry loop.
func (t *Tracker) Close() {
	t.cache.Stop()
}
