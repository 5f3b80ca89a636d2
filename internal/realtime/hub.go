package realtime

import (
	"encoding/json"
	"sync"

	"github.com/clipstream/clipstream-backend/internal/common/logger"
)

// Event is what goes out to connected clients: a type tag plus an arbitrary
// payload. Types in use: "video.published", "video.deleted", "tweet.created".
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Hub fans events out to every connected websocket client. Publishing never
// blocks: a client whose send buffer is full is dropped, since a stalled
// browser must not stall the upload path.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	log     *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		log:     log,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	h.log.Debugf("realtime: client connected, %d online", n)
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()

	h.log.Debugf("realtime: client disconnected, %d online", n)
}

func (h *Hub) Publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Errorf("realtime: failed to encode event %q: %v", event.Type, err)
		return
	}

	h.mu.RLock()
	var stalled []*Client
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			stalled = append(stalled, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stalled {
		h.unregister(c)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}
