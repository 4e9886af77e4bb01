package testutil

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/specialistvlad/meshviz/internal/observer"
)

// FakeObserver is an in-memory observer.Conn that records every message it
// is given.
type FakeObserver struct {
	id       string
	received chan observer.Message

	mu       sync.Mutex
	messages []observer.Message
	closed   bool
	writeErr error
	block    chan struct{}
}

var _ observer.Conn = (*FakeObserver)(nil)

// NewFakeObserver creates an open fake observer.
func NewFakeObserver(id string) *FakeObserver {
	return &FakeObserver{id: id, received: make(chan observer.Message, 256)}
}

// NewClosedObserver creates a fake whose channel is already broken.
func NewClosedObserver(id string) *FakeObserver {
	f := NewFakeObserver(id)
	f.closed = true
	return f
}

// NewBlockedObserver creates a fake whose writes hang until the write
// context expires or Unblock is called.
func NewBlockedObserver(id string) *FakeObserver {
	f := NewFakeObserver(id)
	f.block = make(chan struct{})
	return f
}

func (f *FakeObserver) ID() string        { return f.id }
func (f *FakeObserver) Transport() string { return "fake" }

// Write records msg unless the fake is closed, failing or blocked.
func (f *FakeObserver) Write(ctx context.Context, msg observer.Message) error {
	f.mu.Lock()
	closed, writeErr, block := f.closed, f.writeErr, f.block
	f.mu.Unlock()

	if closed {
		return observer.ErrObserverClosed
	}
	if writeErr != nil {
		return writeErr
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	f.messages = append(f.messages, msg)
	f.mu.Unlock()
	f.received <- msg
	return nil
}

// Close marks the fake closed.
func (f *FakeObserver) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// FailWrites makes every later write return err.
func (f *FakeObserver) FailWrites(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeErr = err
}

// Unblock releases a blocked observer.
func (f *FakeObserver) Unblock() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.block != nil {
		close(f.block)
		f.block = nil
	}
}

// Closed reports whether Close was called.
func (f *FakeObserver) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Messages returns a copy of everything written so far.
func (f *FakeObserver) Messages() []observer.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]observer.Message, len(f.messages))
	copy(out, f.messages)
	return out
}

// Next waits for the next delivered message.
func (f *FakeObserver) Next(t *testing.T, timeout time.Duration) observer.Message {
	t.Helper()
	select {
	case msg := <-f.received:
		return msg
	case <-time.After(timeout):
		t.Fatalf("observer %s: timed out after %s waiting for a message", f.id, timeout)
		return observer.Message{}
	}
}

// ExpectNone fails if a message arrives within wait.
func (f *FakeObserver) ExpectNone(t *testing.T, wait time.Duration) {
	t.Helper()
	select {
	case msg := <-f.received:
		t.Fatalf("observer %s: unexpected message %s", f.id, msg.Payload)
	case <-time.After(wait):
	}
}

// DecodePayload unmarshals a delivered message into a generic map.
func DecodePayload(t *testing.T, msg observer.Message) map[string]any {
	t.Helper()
	var fields map[string]any
	if err := json.Unmarshal(msg.Payload, &fields); err != nil {
		t.Fatalf("payload is not JSON: %v\n%s", err, msg.Payload)
	}
	return fields
}
