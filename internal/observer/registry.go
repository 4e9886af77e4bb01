package observer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/specialistvlad/meshviz/internal/ctxlog"
	"github.com/specialistvlad/meshviz/internal/events"
)

const (
	DefaultQueueSize    = 64
	DefaultWriteTimeout = 5 * time.Second
)

// Registry is the set of attached observers.
type Registry struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	members map[string]*member
	closed  bool
	writers sync.WaitGroup

	queueSize    int
	writeTimeout time.Duration
	recorder     Recorder
}

type member struct {
	conn      Conn
	ctx       context.Context
	cancel    context.CancelFunc
	queue     chan Message
	done      chan struct{}
	closeOnce sync.Once
}

// Option configures a Registry.
type Option func(*Registry)

// WithQueueSize sets how many messages may wait for one observer before it
// is considered too slow and detached.
func WithQueueSize(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.queueSize = n
		}
	}
}

// WithWriteTimeout bounds a single write to one observer.
func WithWriteTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.writeTimeout = d
		}
	}
}

// WithRecorder installs a Recorder.
func WithRecorder(rec Recorder) Option {
	return func(r *Registry) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// New creates an empty registry. ctx supplies the logger and bounds the
// lifetime of the writer goroutines.
func New(ctx context.Context, opts ...Option) *Registry {
	ctx, cancel := context.WithCancel(ctx)
	r := &Registry{
		ctx:          ctx,
		cancel:       cancel,
		members:      make(map[string]*member),
		queueSize:    DefaultQueueSize,
		writeTimeout: DefaultWriteTimeout,
		recorder:     nopRecorder{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Attach adds conn to the active set and starts its writer.
func (r *Registry) Attach(conn Conn) error {
	ctx, cancel := context.WithCancel(r.ctx)
	m := &member{
		conn:   conn,
		ctx:    ctx,
		cancel: cancel,
		queue:  make(chan Message, r.queueSize),
		done:   make(chan struct{}),
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		cancel()
		return ErrRegistryClosed
	}
	if _, exists := r.members[conn.ID()]; exists {
		r.mu.Unlock()
		cancel()
		return fmt.Errorf("%w: %s", ErrAlreadyAttached, conn.ID())
	}
	r.members[conn.ID()] = m
	r.writers.Add(1)
	r.mu.Unlock()

	go r.writeLoop(m)

	r.recorder.ObserverAttached(conn.Transport())
	ctxlog.FromContext(r.ctx).Info("Observer attached.", "observer_id", conn.ID(), "transport", conn.Transport())
	return nil
}

// Detach removes the observer and closes its channel. Detaching an unknown
// id is a no-op and reports false.
func (r *Registry) Detach(id string) bool {
	r.mu.RLock()
	m, ok := r.members[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	return r.detach(m, ReasonClosed, nil)
}

// Unicast queues out for one observer. It is a silent no-op if the observer
// is not attached.
func (r *Registry) Unicast(id string, out events.Output) error {
	msg, err := encode(out)
	if err != nil {
		return err
	}

	r.mu.RLock()
	m, ok := r.members[id]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	r.enqueue(m, msg)
	return nil
}

// Broadcast queues out for every attached observer and returns how many
// accepted it. The payload is encoded once.
func (r *Registry) Broadcast(out events.Output) (int, error) {
	msg, err := encode(out)
	if err != nil {
		return 0, err
	}

	r.mu.RLock()
	targets := make([]*member, 0, len(r.members))
	for _, m := range r.members {
		targets = append(targets, m)
	}
	r.mu.RUnlock()

	queued := 0
	for _, m := range targets {
		if r.enqueue(m, msg) {
			queued++
		}
	}
	return queued, nil
}

// Len returns the number of attached observers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// Close detaches every observer, refuses further attachments and waits for
// all writers to exit.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	all := make([]*member, 0, len(r.members))
	for _, m := range r.members {
		all = append(all, m)
	}
	r.mu.Unlock()

	for _, m := range all {
		r.detach(m, ReasonShutdown, nil)
	}
	r.cancel()
	r.writers.Wait()
}

// enqueue hands msg to m's writer without blocking. A full queue means the
// observer cannot keep up; it is detached.
func (r *Registry) enqueue(m *member, msg Message) bool {
	select {
	case <-m.done:
		return false
	default:
	}

	select {
	case m.queue <- msg:
		return true
	default:
		r.recorder.MessageDropped(m.conn.Transport(), msg.Kind, ReasonSlow)
		r.detach(m, ReasonSlow, fmt.Errorf("outbound queue full (%d messages)", cap(m.queue)))
		return false
	}
}

func (r *Registry) writeLoop(m *member) {
	defer r.writers.Done()
	for {
		select {
		case <-m.done:
			return
		case <-m.ctx.Done():
			return
		case msg := <-m.queue:
			ctx, cancel := context.WithTimeout(m.ctx, r.writeTimeout)
			err := m.conn.Write(ctx, msg)
			cancel()
			if err != nil {
				r.recorder.MessageDropped(m.conn.Transport(), msg.Kind, ReasonWriteError)
				r.detach(m, ReasonWriteError, err)
				return
			}
			r.recorder.MessageDelivered(m.conn.Transport(), msg.Kind)
		}
	}
}

// detach removes m if it is still the member registered under its id, then
// closes it. A newer observer that reused the id is left alone.
func (r *Registry) detach(m *member, reason string, cause error) bool {
	id := m.conn.ID()
	r.mu.Lock()
	cur, ok := r.members[id]
	if ok && cur == m {
		delete(r.members, id)
	}
	r.mu.Unlock()
	if !ok || cur != m {
		return false
	}

	m.closeOnce.Do(func() {
		m.cancel()
		close(m.done)
		if err := m.conn.Close(); err != nil {
			ctxlog.FromContext(r.ctx).Debug("Observer close failed.", "observer_id", id, "error", err)
		}
	})

	r.recorder.ObserverDetached(m.conn.Transport(), reason)
	logger := ctxlog.FromContext(r.ctx)
	if cause != nil {
		logger.Warn("Observer detached.", "observer_id", id, "transport", m.conn.Transport(), "reason", reason, "error", cause)
	} else {
		logger.Info("Observer detached.", "observer_id", id, "transport", m.conn.Transport(), "reason", reason)
	}
	return true
}

func encode(out events.Output) (Message, error) {
	payload, err := events.Encode(out)
	if err != nil {
		return Message{}, fmt.Errorf("failed to encode %s event: %w", out.Kind(), err)
	}
	return Message{Kind: out.Kind(), Payload: payload}, nil
}
