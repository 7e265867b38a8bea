// Package websocket implements a Hub that pushes fresh match snapshots to
// connected spectator clients, grouped by share code. Polling via
// GET /spectate/:code is the baseline every client has; the hub is the
// low-latency path for clients that keep a socket open — the owner's handler
// broadcasts after each successful mutation, so push clients see updates
// inside the polling interval instead of at its edge.
package websocket

import "sync"

// Client is one connected spectator. The transport goroutine drains Send and
// writes to the wire; the Hub only ever pushes into the channel.
type Client struct {
	ShareCode string      // which match this client is watching
	Send      chan []byte // buffered outgoing messages (JSON-encoded snapshots)
}

// Message is a snapshot broadcast addressed to everyone watching one code.
type Message struct {
	ShareCode string
	Data      []byte
}

// Hub tracks all spectator connections grouped by share code. All map
// mutation happens on the Run goroutine; broadcasts take a read lock only.
type Hub struct {
	clients map[string]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex
}

// NewHub creates an empty hub. The broadcast channel is buffered so the
// owner's request handler never blocks on a slow fan-out; register and
// unregister are synchronous.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run is the hub's event loop; call it once in a goroutine from main.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.ShareCode] == nil {
				h.clients[client.ShareCode] = make(map[*Client]bool)
			}
			h.clients[client.ShareCode][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if watchers, ok := h.clients[client.ShareCode]; ok {
				if _, ok := watchers[client]; ok {
					delete(watchers, client)
					close(client.Send)
					if len(watchers) == 0 {
						delete(h.clients, client.ShareCode)
					}
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			watchers := h.clients[msg.ShareCode]
			h.mu.RUnlock()

			for client := range watchers {
				select {
				case client.Send <- msg.Data:
				default:
					// Full buffer means the client stopped reading; drop it
					// rather than stall every other watcher of this match.
					h.unregister <- client
				}
			}
		}
	}
}

// Broadcast queues a snapshot for everyone watching the given share code.
// A no-op when the code has no watchers.
func (h *Hub) Broadcast(shareCode string, data []byte) {
	if shareCode == "" {
		return
	}
	h.broadcast <- &Message{ShareCode: shareCode, Data: data}
}

// Register adds a newly connected spectator to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a spectator whose connection closed.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// WatcherCount reports how many clients are watching a share code.
func (h *Hub) WatcherCount(shareCode string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[shareCode])
}
