package hub

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 5 * time.Second
	sendBufferSize = 16
)

// Message is the envelope every control client receives.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// SnapshotProvider returns the full state for a newly connected client, or
// ok=false when nothing is loaded yet.
type SnapshotProvider func() (snapshot any, ok bool)

// Hub fans engine state out to every connected control client. A client that
// cannot keep up is dropped; it reconnects and receives a fresh snapshot.
type Hub struct {
	upgrader websocket.Upgrader
	provider SnapshotProvider

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func New(provider SnapshotProvider) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		provider: provider,
		clients:  make(map[*client]struct{}),
	}
}

// Serve upgrades the request and registers the client. The one-time full
// snapshot (or the explicit nothing-loaded signal) is queued before the
// client sees any broadcast.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("[hub] websocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBufferSize)}

	var welcome Message
	if snapshot, ok := h.provider(); ok {
		welcome = Message{Type: "state", Data: snapshot}
	} else {
		welcome = Message{Type: "clear"}
	}
	if payload, err := json.Marshal(welcome); err == nil {
		c.send <- payload
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	log.Info().Int("clients", count).Msg("[hub] control client connected")

	go c.writePump(h)
	go c.readPump(h)
}

// Notify fans the snapshot out to every connected client.
func (h *Hub) Notify(snapshot any) {
	payload, err := json.Marshal(Message{Type: "state", Data: snapshot})
	if err != nil {
		log.Error().Err(err).Msg("[hub] snapshot marshal failed")
		return
	}
	h.broadcast(payload)
}

// NotifyClear tells every client that nothing is loaded.
func (h *Hub) NotifyClear() {
	payload, _ := json.Marshal(Message{Type: "clear"})
	h.broadcast(payload)
}

func (h *Hub) broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			// slow client; drop it rather than block the fan-out
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (c *client) writePump(h *Hub) {
	defer c.conn.Close()
	for payload := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.remove(c)
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (c *client) readPump(h *Hub) {
	defer func() {
		h.remove(c)
		c.conn.Close()
		log.Debug().Msg("[hub] control client disconnected")
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
