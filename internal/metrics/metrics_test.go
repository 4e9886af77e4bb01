package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/specialistvlad/meshviz/internal/events"
	"github.com/specialistvlad/meshviz/internal/observer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()

	require.NotNil(t, r.EventsTotal)
	require.NotNil(t, r.ObserversActive)
	require.NotNil(t, r.PacketsInFlight)
	require.NotNil(t, r.HTTPRequestsTotal)
	assert.NotNil(t, r.Gatherer())
}

func TestRecordEvent(t *testing.T) {
	r := NewRegistry()

	r.RecordEvent(events.KindConnect, "ok", time.Millisecond)
	r.RecordEvent(events.KindConnect, "ok", time.Millisecond)
	r.RecordEvent(events.KindDisconnect, "rejected", time.Millisecond)
	r.RecordEvent("", "rejected", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.EventsTotal.WithLabelValues("connect", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.EventsTotal.WithLabelValues("disconnect", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.EventsTotal.WithLabelValues("unknown", "rejected")))
	assert.Equal(t, 3, testutil.CollectAndCount(r.EventProcessDuration))
}

func TestRecorder_ObserverLifecycle(t *testing.T) {
	var rec observer.Recorder = NewRegistry()
	r := rec.(*Registry)

	rec.ObserverAttached("websocket")
	rec.ObserverAttached("websocket")
	rec.ObserverAttached("socketio")
	rec.ObserverDetached("websocket", observer.ReasonSlow)
	rec.MessageDelivered("socketio", events.KindTurnedOn)
	rec.MessageDropped("websocket", events.KindTurnedOn, observer.ReasonSlow)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.ObserversActive.WithLabelValues("websocket")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ObserversActive.WithLabelValues("socketio")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ObserversDetached.WithLabelValues("websocket", observer.ReasonSlow)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.MessagesDelivered.WithLabelValues("socketio", "turned_on")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.MessagesDropped.WithLabelValues("websocket", "turned_on", observer.ReasonSlow)))
}

func TestPackets(t *testing.T) {
	r := NewRegistry()

	r.PacketSent()
	r.PacketSent()
	r.PacketSent()
	r.PacketSettled("received")
	r.PacketSettled("lost")

	assert.Equal(t, 1.0, testutil.ToFloat64(r.PacketsInFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.PacketsSettled.WithLabelValues("received")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.PacketsSettled.WithLabelValues("lost")))
}

func TestSetGraphSize(t *testing.T) {
	r := NewRegistry()

	r.SetGraphSize(4, 3)

	assert.Equal(t, 4.0, testutil.ToFloat64(r.GraphNodes))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.GraphLinks))
}

func TestMiddleware_RecordsStatus(t *testing.T) {
	r := NewRegistry()
	h := r.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/events", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.HTTPRequestsTotal.WithLabelValues("POST", "/events", "400")))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	r := NewRegistry()
	r.SetGraphSize(2, 1)
	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "meshviz_graph_nodes 2"), "body:\n%s", body)
}
