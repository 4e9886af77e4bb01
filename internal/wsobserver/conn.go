package wsobserver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/specialistvlad/meshviz/internal/observer"
)

const (
	// Transport is the name reported for websocket observers.
	Transport = "websocket"

	closeGrace = time.Second
)

// Conn adapts a websocket connection to observer.Conn.
type Conn struct {
	id string
	ws *websocket.Conn

	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
	closeErr  error
}

var _ observer.Conn = (*Conn)(nil)

// NewConn wraps ws under the given observer id.
func NewConn(id string, ws *websocket.Conn) *Conn {
	return &Conn{id: id, ws: ws}
}

func (c *Conn) ID() string        { return c.id }
func (c *Conn) Transport() string { return Transport }

// Write sends msg as one text frame. The write deadline follows ctx.
func (c *Conn) Write(ctx context.Context, msg observer.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return observer.ErrObserverClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Time{}
	}
	if err := c.ws.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}
	if err := c.ws.WriteMessage(websocket.TextMessage, msg.Payload); err != nil {
		return fmt.Errorf("failed to write %s frame: %w", msg.Kind, err)
	}
	return nil
}

// Close sends a close frame, best effort, and closes the connection.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()

		_ = c.ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeGrace),
		)
		c.closeErr = c.ws.Close()
	})
	return c.closeErr
}
