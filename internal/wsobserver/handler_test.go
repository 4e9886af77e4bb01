package wsobserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/specialistvlad/meshviz/internal/engine"
	"github.com/specialistvlad/meshviz/internal/events"
	"github.com/specialistvlad/meshviz/internal/inmemorytopology"
	"github.com/specialistvlad/meshviz/internal/mesh"
	"github.com/specialistvlad/meshviz/internal/observer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) (*engine.Engine, string) {
	t.Helper()
	e := engine.New(inmemorytopology.New(), observer.New(context.Background()))
	srv := httptest.NewServer(NewHandler(e))
	t.Cleanup(func() {
		e.Close()
		srv.Close()
	})
	return e, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func readEvent(t *testing.T, ws *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	kind, data, err := ws.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.TextMessage, kind)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields), "frame: %s", data)
	return fields
}

func TestHandler_SnapshotThenBroadcast(t *testing.T) {
	// --- Arrange ---
	e, url := newServer(t)
	ctx := context.Background()
	_, err := e.Ingest(ctx, events.TurnedOn{Envelope: events.Envelope{SourceID: "A"}})
	require.NoError(t, err)

	// --- Act ---
	ws := dial(t, url)
	snapshot := readEvent(t, ws)
	_, err = e.Ingest(ctx, events.ConnectNeighbor{
		Envelope:   events.Envelope{SourceID: "A"},
		NeighborID: "B",
		Technology: mesh.TechBluetooth,
	})
	require.NoError(t, err)
	connect := readEvent(t, ws)

	// --- Assert ---
	assert.Equal(t, "update_graph", snapshot["event_type"])
	assert.Len(t, snapshot["graph"].(map[string]any)["nodes"], 1)
	assert.Equal(t, "connect", connect["event_type"])
	assert.Equal(t, "bluetooth", connect["technology"])
}

func TestHandler_InboundFramesAreIgnored(t *testing.T) {
	e, url := newServer(t)
	ws := dial(t, url)
	readEvent(t, ws)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{"event_type":"turned_on","source_id":"X"}`)))
	_, err := e.Ingest(context.Background(), events.TurnedOn{Envelope: events.Envelope{SourceID: "A"}})
	require.NoError(t, err)

	next := readEvent(t, ws)
	assert.Equal(t, "A", next["node_id"])
	assert.Equal(t, 1, len(e.Snapshot(context.Background()).Graph.Nodes))
}

func TestHandler_ClientCloseDetaches(t *testing.T) {
	e, url := newServer(t)
	ws := dial(t, url)
	readEvent(t, ws)
	require.Eventually(t, func() bool { return e.Observers() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	_ = ws.Close()

	require.Eventually(t, func() bool { return e.Observers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_EngineCloseDisconnectsClients(t *testing.T) {
	e, url := newServer(t)
	ws := dial(t, url)
	readEvent(t, ws)

	e.Close()

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := ws.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestHandler_PlainRequestIsRejected(t *testing.T) {
	e := engine.New(inmemorytopology.New(), observer.New(context.Background()))
	defer e.Close()
	rec := httptest.NewRecorder()

	NewHandler(e).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, e.Observers())
}
