package ws

import (
	"log"
	"sync"

	"roomchat/internal/observability"
)

type client struct {
	info ConnInfo
	send chan []byte
}

// Hub maps connection ids to their outbound queues.
type Hub struct {
	clients    map[string]*client
	bufferSize int
	mu         sync.RWMutex
}

// NewHub creates an empty hub whose clients buffer up to bufferSize frames.
func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Hub{
		clients:    make(map[string]*client),
		bufferSize: bufferSize,
	}
}

func (h *Hub) register(info ConnInfo) *client {
	c := &client{info: info, send: make(chan []byte, h.bufferSize)}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[info.ConnID] = c
	return c
}

// unregister removes the client and closes its queue, which stops its writer.
func (h *Hub) unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[connID]; ok {
		delete(h.clients, connID)
		close(c.send)
	}
}

// Deliver queues a frame for connID without blocking. Frames for unknown connections are
// ignored and frames for clients whose queue is full are dropped.
func (h *Hub) Deliver(connID string, frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[connID]
	if !ok {
		return
	}
	select {
	case c.send <- frame:
	default:
		observability.IncWSFrameDropped()
		log.Printf("websocket send buffer full, dropping frame conn_id=%s", connID)
	}
}

// Len returns the number of registered connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseAll unregisters every client so their writers send a close frame and exit.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.send)
	}
}
