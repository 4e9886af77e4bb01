package ingress

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/specialistvlad/meshviz/internal/ctxlog"
	"github.com/specialistvlad/meshviz/internal/engine"
	"github.com/specialistvlad/meshviz/internal/events"
	"github.com/specialistvlad/meshviz/internal/inmemorytopology"
	"github.com/specialistvlad/meshviz/internal/observer"
	"github.com/specialistvlad/meshviz/internal/testutil"
	"github.com/specialistvlad/meshviz/internal/traffic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*http.ServeMux, *engine.Engine, *testutil.SafeBuffer) {
	t.Helper()
	logger, logs := testutil.NewLogger()
	ctx := ctxlog.WithLogger(context.Background(), logger)
	e := engine.New(
		inmemorytopology.New(),
		observer.New(ctx),
		engine.WithTracker(traffic.New(ctx)),
	)
	t.Cleanup(e.Close)

	mux := http.NewServeMux()
	New(ctx, e).Register(mux)
	return mux, e, logs
}

func do(t *testing.T, mux http.Handler, method, path, body string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	var fields map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fields), "body: %s", rec.Body.String())
	}
	return rec.Code, fields
}

func TestPostEvent_Connect(t *testing.T) {
	// --- Arrange ---
	mux, e, _ := newTestServer(t)

	// --- Act ---
	code, out := do(t, mux, http.MethodPost, "/events",
		`{"event_type":"connect","source_id":"A","neighbor_id":"B","technology":"radio"}`)

	// --- Assert ---
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "connect", out["event_type"])
	assert.Equal(t, "A", out["node_id"])
	assert.Equal(t, "B", out["neighbor_id"])
	assert.Equal(t, "radio", out["technology"])
	graph := out["graph"].(map[string]any)
	assert.Len(t, graph["nodes"], 2)
	assert.Len(t, graph["links"], 1)
	assert.Len(t, e.Snapshot(context.Background()).Graph.Links, 1)
}

func TestPostEvent_Failures(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "unknown kind", body: `{"event_type":"explode","source_id":"A"}`},
		{name: "missing kind", body: `{"source_id":"A"}`},
		{name: "not json", body: `hello`},
		{name: "missing source", body: `{"event_type":"turned_on"}`},
		{name: "bad technology", body: `{"event_type":"connect","source_id":"A","neighbor_id":"B","technology":"carrier_pigeon"}`},
		{name: "disconnect other technology", body: `{"event_type":"disconnect","source_id":"A","neighbor_id":"B","technology":"wired"}`},
		{name: "disconnect without link", body: `{"event_type":"disconnect","source_id":"A","neighbor_id":"C","technology":"radio"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			mux, e, _ := newTestServer(t)
			code, _ := do(t, mux, http.MethodPost, "/events",
				`{"event_type":"connect","source_id":"A","neighbor_id":"B","technology":"radio"}`)
			require.Equal(t, http.StatusOK, code)
			before := e.Snapshot(context.Background()).Graph

			// --- Act ---
			code, out := do(t, mux, http.MethodPost, "/events", tc.body)

			// --- Assert ---
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, map[string]any{"detail": "failed to handle event"}, out)
			after := e.Snapshot(context.Background()).Graph
			assert.Equal(t, before, after)
			assert.Len(t, after.Links, 1)
		})
	}
}

func TestPostEvent_BroadcastsToObservers(t *testing.T) {
	mux, e, _ := newTestServer(t)
	obs := testutil.NewFakeObserver("o1")
	require.NoError(t, e.Attach(context.Background(), obs))
	require.Equal(t, events.KindUpdateGraph, obs.Next(t, time.Second).Kind)

	code, out := do(t, mux, http.MethodPost, "/events", `{"event_type":"turned_on","source_id":"A"}`)
	require.Equal(t, http.StatusOK, code)

	delivered := testutil.DecodePayload(t, obs.Next(t, time.Second))
	assert.Equal(t, out, delivered)
}

func TestPostEvent_ReceiveKeepsWireSpelling(t *testing.T) {
	for _, kind := range []string{"recieve_packet", "receive_packet"} {
		t.Run(kind, func(t *testing.T) {
			mux, _, _ := newTestServer(t)

			code, out := do(t, mux, http.MethodPost, "/events",
				`{"event_type":"`+kind+`","source_id":"A","destination_id":"B","packet_id":"p1","technology":"lora"}`)

			require.Equal(t, http.StatusOK, code)
			assert.Equal(t, "recieve_packet", out["event_type"])
			assert.Equal(t, "B", out["node_id"])
			assert.NotContains(t, out, "source_id")
		})
	}
}

func TestGetGraph(t *testing.T) {
	mux, _, _ := newTestServer(t)
	code, _ := do(t, mux, http.MethodPost, "/events", `{"event_type":"turned_on","source_id":"A"}`)
	require.Equal(t, http.StatusOK, code)

	code, out := do(t, mux, http.MethodGet, "/graph", "")

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "update_graph", out["event_type"])
	assert.Equal(t, map[string]any{
		"nodes": []any{map[string]any{"id": "A"}},
		"links": []any{},
	}, out["graph"])
}

func TestGetPackets(t *testing.T) {
	mux, _, _ := newTestServer(t)
	code, _ := do(t, mux, http.MethodPost, "/events",
		`{"event_type":"send_packet","source_id":"A","destination_id":"B","packet_id":"p1","technology":"wifi"}`)
	require.Equal(t, http.StatusOK, code)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/packets", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var packets []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &packets), "body: %s", rec.Body.String())
	require.Len(t, packets, 1)
	assert.Equal(t, "p1", packets[0]["packet_id"])
	assert.Equal(t, "A", packets[0]["source_id"])
	assert.Equal(t, "B", packets[0]["destination_id"])
	assert.Equal(t, "wifi", packets[0]["technology"])
	assert.Contains(t, packets[0], "sent_at")
}

func TestGetPackets_EmptyIsArray(t *testing.T) {
	mux, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/packets", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHealthAndWelcome(t *testing.T) {
	mux, _, logs := newTestServer(t)

	code, health := do(t, mux, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"status": "healthy"}, health)
	assert.Contains(t, logs.String(), "Health check endpoint hit.")

	code, root := do(t, mux, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"message": "Welcome to the Mesh Visualizer API!"}, root)
}

func TestUnknownRoute(t *testing.T) {
	mux, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
