package hub

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"providerdash/internal/utils"
)

// Client is one connected foreground page. Posting is one-way and
// best-effort; the sender never learns whether the page acted on a message.
type Client struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *Client) ID() string { return c.id }

// Post writes v as JSON to the page. Fire-and-forget: an error only means
// the connection is gone and the read loop will reap it.
func (c *Client) Post(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub tracks open foreground clients in connect order.
type Hub struct {
	mu       sync.Mutex
	clients  []*Client
	upgrader websocket.Upgrader
}

func New() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin policy is enforced by the CORS middleware in front of
			// the upgrade; the handshake itself accepts any origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Serve upgrades the request and blocks reading until the page goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{id: uuid.NewString(), conn: conn}
	h.mu.Lock()
	h.clients = append(h.clients, client)
	h.mu.Unlock()
	utils.LogEvent("", "hub", "client_connected", client.id)

	conn.SetReadLimit(4096)
	for {
		// Pages only listen; inbound frames are drained to detect close.
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(client.id)
	_ = conn.Close()
	utils.LogEvent("", "hub", "client_disconnected", client.id)
	return nil
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, c := range h.clients {
		if c.id == id {
			h.clients = append(h.clients[:i], h.clients[i+1:]...)
			return
		}
	}
}

// Clients returns open clients in connect order.
func (h *Hub) Clients() []*Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Client, len(h.clients))
	copy(out, h.clients)
	return out
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast posts v to every open client, best effort.
func (h *Hub) Broadcast(v any) {
	for _, c := range h.Clients() {
		_ = c.Post(v)
	}
}
