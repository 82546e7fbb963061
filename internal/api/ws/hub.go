package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/events"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/shared/types"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // desktop UI is served from another origin
	},
}

// StateSource provides the desktop snapshot sent on request
type StateSource interface {
	Snapshot() types.State
}

// Frame is a server to client message
type Frame struct {
	Type    string        `json:"type"`
	Message string        `json:"message,omitempty"`
	Event   *events.Event `json:"event,omitempty"`
	State   *types.State  `json:"state,omitempty"`
}

type client struct {
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub pushes desktop events to every connected UI
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}

	state   StateSource
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// NewHub creates a hub
func NewHub(state StateSource) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		state:   state,
		logger:  zap.NewNop(),
	}
}

// WithMetrics counts connections and messages
func (h *Hub) WithMetrics(m *monitoring.Metrics) *Hub {
	h.metrics = m
	return h
}

// WithLogger sets the logger
func (h *Hub) WithLogger(l *zap.Logger) *Hub {
	if l != nil {
		h.logger = l
	}
	return h
}

// Attach forwards every bus event to connected clients
func (h *Hub) Attach(bus *events.Bus) func() {
	return bus.Subscribe(func(e events.Event) {
		h.Broadcast(Frame{Type: "event", Event: &e})
	})
}

// Broadcast queues f for every client. Clients whose buffer is full are
// disconnected.
func (h *Hub) Broadcast(f Frame) {
	data, err := sonic.Marshal(f)
	if err != nil {
		h.logger.Error("encode frame", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
			h.record("out", f.Type)
		default:
			h.logger.Warn("dropping slow websocket client")
			h.dropLocked(c)
		}
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.IncWSConnections()
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	h.dropLocked(c)
	h.mu.Unlock()
}

// dropLocked disconnects c once; the connection gauge falls with it
func (h *Hub) dropLocked(c *client) {
	c.close()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	if h.metrics != nil {
		h.metrics.DecWSConnections()
	}
}

func (h *Hub) record(direction, msgType string) {
	if h.metrics != nil {
		h.metrics.RecordWSMessage(direction, msgType)
	}
}

func (h *Hub) reply(c *client, f Frame) {
	data, err := sonic.Marshal(f)
	if err != nil {
		h.logger.Error("encode frame", zap.Error(err))
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- data:
		h.record("out", f.Type)
	default:
	}
}

// HandleConnection upgrades the request and serves the client until it leaves
func (h *Hub) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{send: make(chan []byte, sendBuffer)}
	h.add(cl)
	go h.writePump(conn, cl)

	h.reply(cl, Frame{Type: "system", Message: "Connected to AgentDesk"})
	h.readPump(conn, cl)
}

func (h *Hub) readPump(conn *websocket.Conn, cl *client) {
	defer h.remove(cl)

	conn.SetReadLimit(64 * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}

		var msg types.WSMessage
		if err := sonic.Unmarshal(raw, &msg); err != nil {
			h.reply(cl, Frame{Type: "error", Message: "invalid message"})
			continue
		}
		h.record("in", msg.Type)

		switch msg.Type {
		case "ping":
			h.reply(cl, Frame{Type: "pong"})
		case "state":
			state := h.state.Snapshot()
			h.reply(cl, Frame{Type: "state", State: &state})
		default:
			h.reply(cl, Frame{Type: "error", Message: "unknown message type"})
		}
	}
}

func (h *Hub) writePump(conn *websocket.Conn, cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case data, ok := <-cl.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
