// Package socketio attaches socket.io clients as observers. Every output
// event, the initial snapshot included, is emitted under EventName with the
// JSON payload as its single string argument.
package socketio

import (
	"context"
	"net/http"
	"sync"

	"github.com/specialistvlad/meshviz/internal/ctxlog"
	"github.com/specialistvlad/meshviz/internal/observer"
	"github.com/zishang520/socket.io/v2/socket"
)

const (
	// EventName is the socket.io event every output event is emitted as.
	EventName = "mesh_event"

	// Transport is the name reported for socket.io observers.
	Transport = "socketio"

	// Path is where the server is mounted.
	Path = "/socket.io/"
)

// Attacher is the part of the engine a transport needs.
type Attacher interface {
	Attach(ctx context.Context, conn observer.Conn) error
	Detach(id string) bool
}

// Server accepts socket.io observers.
type Server struct {
	io       *socket.Server
	attacher Attacher
	ctx      context.Context
}

// NewServer creates a socket.io server whose connections are attached to
// a. ctx supplies the logger.
func NewServer(ctx context.Context, a Attacher) *Server {
	s := &Server{
		io:       socket.NewServer(nil, nil),
		attacher: a,
		ctx:      ctx,
	}
	s.io.On("connection", s.onConnection)
	return s
}

// Handler returns the HTTP handler to mount at Path.
func (s *Server) Handler() http.Handler {
	return s.io.ServeHandler(nil)
}

// Close disconnects every client.
func (s *Server) Close() {
	s.io.Close(nil)
}

func (s *Server) onConnection(clients ...any) {
	client, ok := clients[0].(*socket.Socket)
	if !ok {
		return
	}
	id := string(client.Id())
	ctx := ctxlog.With(s.ctx, "observer_id", id, "transport", Transport)
	logger := ctxlog.FromContext(ctx)

	conn := newConn(client)
	client.On("disconnect", func(reason ...any) {
		logger.Debug("Socket.io client disconnected.", "reason", reason)
		s.attacher.Detach(id)
	})
	if err := s.attacher.Attach(ctx, conn); err != nil {
		logger.Warn("Failed to attach socket.io observer.", "error", err)
		_ = conn.Close()
	}
}

// conn adapts a socket.io socket to observer.Conn.
type conn struct {
	client *socket.Socket

	mu     sync.Mutex
	closed bool
}

var _ observer.Conn = (*conn)(nil)

func newConn(client *socket.Socket) *conn {
	return &conn{client: client}
}

func (c *conn) ID() string        { return string(c.client.Id()) }
func (c *conn) Transport() string { return Transport }

// Write emits msg. The socket.io socket buffers outgoing packets, so the
// call returns once the packet is queued.
func (c *conn) Write(ctx context.Context, msg observer.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.client.Connected() {
		return observer.ErrObserverClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.client.Emit(EventName, string(msg.Payload))
}

func (c *conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.client.Disconnect(true)
	return nil
}
