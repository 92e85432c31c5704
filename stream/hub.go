// Package stream serves simulation snapshots to remote viewers over websockets.
package stream

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Command is a control message sent by a viewer.
type Command struct {
	Type string `json:"type"` // "pause", "resume", "swap_boundary" or "restart"
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub fans messages out to connected websocket clients.
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	hello    any
	commands chan Command
}

// NewHub creates a hub. hello is sent to every client on connect.
func NewHub(hello any) *Hub {
	return &Hub{
		clients:  make(map[*client]struct{}),
		hello:    hello,
		commands: make(chan Command, 16),
	}
}

// SetHello replaces the message sent to clients that connect from now on.
func (h *Hub) SetHello(hello any) {
	h.mu.Lock()
	h.hello = hello
	h.mu.Unlock()
}

// Commands returns viewer control messages. Commands arriving while the
// buffer is full are dropped.
func (h *Hub) Commands() <-chan Command { return h.commands }

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends v as JSON to every client, dropping clients that fail.
func (h *Hub) Broadcast(v any) {
	h.mu.Lock()
	list := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		list = append(list, c)
	}
	h.mu.Unlock()

	for _, c := range list {
		if err := c.send(v); err != nil {
			slog.Warn("client send failed", "error", err)
			h.remove(c)
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		c.conn.Close()
	}
}

// ServeHTTP upgrades the request and reads commands until the client leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn}
	h.mu.Lock()
	hello := h.hello
	h.mu.Unlock()
	if hello != nil {
		if err := c.send(hello); err != nil {
			conn.Close()
			return
		}
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	for {
		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			break
		}
		select {
		case h.commands <- cmd:
		default:
			slog.Warn("command dropped", "type", cmd.Type)
		}
	}
	h.remove(c)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	list := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		list = append(list, c)
	}
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()
	for _, c := range list {
		c.conn.Close()
	}
}
