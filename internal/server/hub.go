package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/thurmanmarka/moonglide/internal/metrics"
)

const (
	sendBuffer   = 16
	writeWait    = 5 * time.Second
	pingInterval = 30 * time.Second
	readLimit    = 512
)

// message is the envelope for everything pushed to websocket clients.
type message struct {
	Type string      `json:"type"` // moon, times, event
	Data interface{} `json:"data"`
}

type client struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte
}

// hub tracks live websocket clients and fans messages out to them.
type hub struct {
	mu      sync.Mutex
	clients map[uuid.UUID]*client

	log     *zap.Logger
	metrics *metrics.Metrics
}

func newHub(log *zap.Logger, m *metrics.Metrics) *hub {
	return &hub{
		clients: make(map[uuid.UUID]*client),
		log:     log,
		metrics: m,
	}
}

func (h *hub) add(c *client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	h.metrics.RecordWSConnection()
}

// remove drops the client and closes its send channel. It reports whether
// the client was still registered.
func (h *hub) remove(id uuid.UUID) bool {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
		close(c.send)
	}
	h.mu.Unlock()

	if ok {
		h.metrics.RecordWSDisconnect()
	}
	return ok
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *hub) closeAll() {
	h.mu.Lock()
	ids := make([]uuid.UUID, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	h.mu.Unlock()

	for _, id := range ids {
		h.remove(id)
	}
}

func encode(msgType string, data interface{}) ([]byte, error) {
	return json.Marshal(message{Type: msgType, Data: data})
}

// broadcast queues a message for every client. Clients whose queue is full
// are disconnected.
func (h *hub) broadcast(msgType string, data interface{}) {
	b, err := encode(msgType, data)
	if err != nil {
		h.log.Error("encoding websocket message", zap.String("type", msgType), zap.Error(err))
		return
	}

	var slow []uuid.UUID
	h.mu.Lock()
	for id, c := range h.clients {
		select {
		case c.send <- b:
			h.metrics.RecordWSMessageSent(msgType)
		default:
			slow = append(slow, id)
		}
	}
	h.mu.Unlock()

	for _, id := range slow {
		h.log.Warn("dropping slow websocket client", zap.String("client", id.String()))
		h.remove(id)
	}
}

// writeLoop owns all writes to the connection. It returns when the send
// channel is closed or a write fails.
func (h *hub) writeLoop(c *client) {
	ping := time.NewTicker(pingInterval)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.log.Debug("websocket write failed", zap.String("client", c.id.String()), zap.Error(err))
				return
			}
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				h.log.Debug("websocket ping failed", zap.String("client", c.id.String()), zap.Error(err))
				return
			}
		}
	}
}

// readLoop discards client input until the connection drops, then
// unregisters the client.
func (h *hub) readLoop(c *client) {
	c.conn.SetReadLimit(readLimit)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
	if h.remove(c.id) {
		h.log.Info("websocket client disconnected", zap.String("client", c.id.String()))
	}
}
