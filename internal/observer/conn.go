package observer

import (
	"context"
	"errors"

	"github.com/specialistvlad/meshviz/internal/events"
)

var (
	// ErrAlreadyAttached is returned when attaching an id that is already a
	// member.
	ErrAlreadyAttached = errors.New("observer already attached")

	// ErrRegistryClosed is returned when attaching to a closed registry.
	ErrRegistryClosed = errors.New("observer registry closed")

	// ErrObserverClosed is returned by Conn implementations after Close.
	ErrObserverClosed = errors.New("observer closed")
)

// Message is one encoded output event.
type Message struct {
	Kind    events.Kind
	Payload []byte
}

// Conn is a live channel to one observer.
type Conn interface {
	// ID uniquely identifies the observer within the registry.
	ID() string

	// Transport names the channel type, e.g. "websocket" or "socketio".
	Transport() string

	// Write delivers one message. Implementations must honor ctx's deadline.
	Write(ctx context.Context, msg Message) error

	// Close releases the channel. It may be called more than once.
	Close() error
}

// Detach reasons reported to the Recorder.
const (
	ReasonClosed     = "closed"
	ReasonWriteError = "write_error"
	ReasonSlow       = "slow"
	ReasonShutdown   = "shutdown"
)

// Recorder receives membership and delivery notifications, typically to
// update metrics.
type Recorder interface {
	ObserverAttached(transport string)
	ObserverDetached(transport, reason string)
	MessageDelivered(transport string, kind events.Kind)
	MessageDropped(transport string, kind events.Kind, reason string)
}

type nopRecorder struct{}

func (nopRecorder) ObserverAttached(string)                    {}
func (nopRecorder) ObserverDetached(string, string)            {}
func (nopRecorder) MessageDelivered(string, events.Kind)       {}
func (nopRecorder) MessageDropped(string, events.Kind, string) {}
