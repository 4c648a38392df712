package realtime

import (
	"log"
	"sync"
)

// Message is the envelope delivered to websocket subscribers.
type Message struct {
	Topic   string      `json:"topic"`
	Payload interface{} `json:"payload"`
}

// Hub tracks the set of connected realtime clients and fans published
// messages out to them. Delivery is best effort: a slow client's buffer
// overflowing drops the message for that client only, and publishing with no
// subscribers is a no-op.
//
// The hub is process-wide state with explicit lifecycle: constructed on
// server start, Close on shutdown.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool
	logger  *log.Logger
}

// NewHub constructs an empty hub.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Publish sends payload to every connected client subscribed to topic. The
// subscriber set is snapshotted first, so clients disconnecting mid-publish
// are harmless.
func (h *Hub) Publish(topic string, payload interface{}) {
	h.mu.RLock()
	snapshot := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		if client.wants(topic) {
			snapshot = append(snapshot, client)
		}
	}
	h.mu.RUnlock()

	msg := Message{Topic: topic, Payload: payload}
	for _, client := range snapshot {
		if !client.trySend(msg) {
			h.logger.Printf("realtime: dropping %s message for slow client", topic)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and rejects future registrations.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for client := range h.clients {
		client.closeSend()
		delete(h.clients, client)
	}
	h.logger.Println("realtime: hub closed")
}

func (h *Hub) register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	h.logger.Printf("realtime: client connected (total=%d)", len(h.clients))
	return true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.closeSend()
		h.logger.Printf("realtime: client disconnected (total=%d)", len(h.clients))
	}
}
