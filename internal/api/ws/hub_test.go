package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/events"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/session"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/shared/types"
)

func setup(t *testing.T) (*workspace.Manager, *Hub, *websocket.Conn) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	bus := events.NewBus()
	m := workspace.NewManager(session.DefaultState(time.Now()), nil).WithEvents(bus)
	hub := NewHub(m).WithMetrics(monitoring.NewMetrics())
	t.Cleanup(hub.Attach(bus))

	router := gin.New()
	router.GET("/stream", hub.HandleConnection)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	welcome := read(t, conn)
	require.Equal(t, "system", welcome.Type)
	return m, hub, conn
}

func read(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var f Frame
	require.NoError(t, sonic.Unmarshal(raw, &f))
	return f
}

func TestEventsAreStreamed(t *testing.T) {
	m, hub, conn := setup(t)
	assert.Equal(t, 1, hub.Clients())

	w, err := m.CreateWindow(context.Background(), types.CreateWindowRequest{Type: types.WindowChat})
	require.NoError(t, err)

	var got []events.Type
	for len(got) < 2 {
		f := read(t, conn)
		require.Equal(t, "event", f.Type)
		require.NotNil(t, f.Event)
		assert.Equal(t, w.ID, f.Event.WindowID)
		got = append(got, f.Event.Type)
	}
	assert.Contains(t, got, events.WindowCreated)
}

func TestPingAndState(t *testing.T) {
	_, _, conn := setup(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	assert.Equal(t, "pong", read(t, conn).Type)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"state"}`)))
	f := read(t, conn)
	require.Equal(t, "state", f.Type)
	require.NotNil(t, f.State)
	assert.Equal(t, types.HomeWorkspaceID, f.State.ActiveWorkspaceID)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"dance"}`)))
	assert.Equal(t, "error", read(t, conn).Type)
}

func TestDisconnectRemovesClient(t *testing.T) {
	_, hub, conn := setup(t)
	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestSlowClientIsDropped(t *testing.T) {
	hub := NewHub(nil)
	cl := &client{send: make(chan []byte, 1)}
	hub.add(cl)

	hub.Broadcast(Frame{Type: "event"})
	assert.Equal(t, 1, hub.Clients())
	hub.Broadcast(Frame{Type: "event"})
	assert.Equal(t, 0, hub.Clients())

	_, open := <-cl.send
	assert.True(t, open, "queued frame is still delivered")
	_, open = <-cl.send
	assert.False(t, open)
}

func TestDroppedClientReleasesConnectionGauge(t *testing.T) {
	metrics := monitoring.NewMetrics()
	hub := NewHub(nil).WithMetrics(metrics)

	slow := &client{send: make(chan []byte)}
	steady := &client{send: make(chan []byte, 4)}
	hub.add(slow)
	hub.add(steady)
	require.Equal(t, 2.0, testutil.ToFloat64(metrics.WSConnections))

	hub.Broadcast(Frame{Type: "event"})
	assert.Equal(t, 1, hub.Clients())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.WSConnections))

	// the read loop of the dropped client still cleans up afterwards
	hub.remove(slow)
	hub.remove(steady)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.WSConnections))
	assert.Equal(t, int64(0), metrics.Snapshot().ActiveConnections)
}
