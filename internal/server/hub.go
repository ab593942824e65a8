package server

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 16
)

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// blinkWait tracks the renderers that still have to confirm one suppress message.
type blinkWait struct {
	pending map[*client]struct{}
	done    chan struct{}
}

func (w *blinkWait) resolve(c *client) {
	if _, ok := w.pending[c]; !ok {
		return
	}
	delete(w.pending, c)
	if len(w.pending) == 0 {
		close(w.done)
	}
}

// hub fans messages out to renderers. Sends never block: a renderer whose buffer is
// full misses the message.
type hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	waits   map[uint64]*blinkWait
	seq     atomic.Uint64
}

func newHub() *hub {
	return &hub{
		clients: make(map[*client]struct{}),
		waits:   make(map[uint64]*blinkWait),
	}
}

func (h *hub) register(conn *websocket.Conn) *client {
	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	websocketConnections.Inc()
	return c
}

func (h *hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	h.drop(c)
}

// drop removes c and releases any blink it was holding up. Callers hold mu.
func (h *hub) drop(c *client) {
	delete(h.clients, c)
	for _, w := range h.waits {
		w.resolve(c)
	}
	close(c.send)
	websocketConnections.Dec()
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.drop(c)
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// enqueue queues data for c. Callers hold mu.
func (h *hub) enqueue(c *client, data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		slog.Warn("Renderer send buffer full, message dropped", "client", c.id)
		return false
	}
}

// sendTo queues one message for a single client.
func (h *hub) sendTo(c *client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("Failed to encode websocket message", "type", msg.Type, "error", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		h.enqueue(c, data)
	}
}

func (h *hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("Failed to encode websocket message", "type", msg.Type, "error", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.enqueue(c, data)
	}
}

// broadcastAndWait sends msg with a fresh sequence number and waits until every
// renderer connected at send time acked it or disconnected, or timeout elapsed.
// It reports whether all acks arrived; with no renderers it returns true at once.
func (h *hub) broadcastAndWait(msg Message, timeout time.Duration) bool {
	msg.Seq = h.seq.Add(1)
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("Failed to encode websocket message", "type", msg.Type, "error", err)
		return false
	}

	h.mu.Lock()
	w := &blinkWait{pending: make(map[*client]struct{}, len(h.clients)), done: make(chan struct{})}
	for c := range h.clients {
		if h.enqueue(c, data) {
			w.pending[c] = struct{}{}
		}
	}
	if len(w.pending) == 0 {
		h.mu.Unlock()
		return true
	}
	h.waits[msg.Seq] = w
	h.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	acked := false
	select {
	case <-w.done:
		acked = true
	case <-timer.C:
	}

	h.mu.Lock()
	delete(h.waits, msg.Seq)
	h.mu.Unlock()
	return acked
}

func (h *hub) ack(c *client, seq uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if w, ok := h.waits[seq]; ok {
		w.resolve(c)
	}
}

// writePump is the only writer on c.conn.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
			websocketMessagesTotal.WithLabelValues("sent").Inc()
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
