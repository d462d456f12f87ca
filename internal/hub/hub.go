// Package hub fans scan lifecycle events out to connected browsers. Two
// transports share one client set: server-sent events and websockets.
// Delivery is best effort; a slow client loses frames instead of stalling
// the broadcast loop.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const keepAliveInterval = 30 * time.Second

// client is a single connected consumer, transport-independent. frames
// carries JSON-encoded events; the serving goroutine adds transport
// framing on the way out.
type client struct {
	id     string
	frames chan []byte
}

// Hub manages event stream subscribers
type Hub struct {
	mu         sync.RWMutex
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	broadcast  chan any
	done       chan struct{}
}

// New creates an empty hub. Call Run before serving connections.
func New() *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan any, 256),
		done:       make(chan struct{}),
	}
}

// Run drives the hub until ctx is cancelled. Once it returns, connected
// handlers observe done and unwind without blocking on the hub channels.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("event client connected: %s (total: %d)", c.id, total)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.frames)
			}
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("event client disconnected: %s (total: %d)", c.id, total)

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				log.Printf("failed to marshal event: %v", err)
				continue
			}

			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.frames <- data:
				default:
					log.Printf("event client %s is slow, dropping frame", c.id)
				}
			}
			h.mu.RUnlock()

		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.frames)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Broadcast queues an event for every connected client
func (h *Hub) Broadcast(event any) {
	select {
	case h.broadcast <- event:
	default:
		log.Println("broadcast channel full, dropping event")
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func newClient() *client {
	return &client{
		id:     uuid.NewString(),
		frames: make(chan []byte, 64),
	}
}

// add registers the client, reporting false if the hub has stopped
func (h *Hub) add(c *client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// remove unregisters the client, a no-op once the hub has stopped
func (h *Hub) remove(c *client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// ServeSSE streams events over a server-sent-events connection. The
// connection stays open until the client goes away or the hub stops.
func (h *Hub) ServeSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // disable nginx buffering

	c := newClient()
	if !h.add(c) {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	defer h.remove(c)

	fmt.Fprintf(w, ": connected %s\n\n", c.id)
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-c.frames:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := fmt.Fprintf(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
