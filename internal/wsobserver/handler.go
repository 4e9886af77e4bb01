package wsobserver

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/specialistvlad/meshviz/internal/ctxlog"
	"github.com/specialistvlad/meshviz/internal/observer"
)

const maxInboundFrame = 64 << 10

// Attacher is the part of the engine a transport needs.
type Attacher interface {
	Attach(ctx context.Context, conn observer.Conn) error
	Detach(id string) bool
}

// Handler upgrades requests to websocket observers.
type Handler struct {
	attacher Attacher
	upgrader websocket.Upgrader
	newID    func() string
}

// NewHandler creates a Handler that attaches clients to a.
func NewHandler(a Attacher) *Handler {
	return &Handler{
		attacher: a,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		newID: uuid.NewString,
	}
}

// ServeHTTP holds the connection open until the client goes away or the
// observer is detached.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := h.newID()
	ctx := ctxlog.With(r.Context(), "observer_id", id, "transport", Transport, "remote_addr", r.RemoteAddr)
	logger := ctxlog.FromContext(ctx)

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		logger.Debug("Websocket upgrade failed.", "error", err)
		return
	}
	ws.SetReadLimit(maxInboundFrame)

	conn := NewConn(id, ws)
	if err := h.attacher.Attach(ctx, conn); err != nil {
		logger.Warn("Failed to attach websocket observer.", "error", err)
		_ = conn.Close()
		return
	}
	defer h.attacher.Detach(id)

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				logger.Debug("Websocket read ended.", "error", err)
			}
			return
		}
	}
}
