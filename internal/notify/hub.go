// Package notify pushes sync lifecycle events to connected dashboards over
// WebSocket, so an open dashboard re-runs its load pipeline when a sync
// completes instead of waiting for the next manual refresh.
package notify

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard is served from a different origin in development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans sync events out to every connected dashboard client.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	mu         sync.Mutex
}

// NewHub creates an idle hub; call Run to start it.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				close(h.done)
				h.mu.Lock()
				for client := range h.clients {
					client.Close()
				}
				h.clients = make(map[*websocket.Conn]bool)
				h.mu.Unlock()
				return
			case client := <-h.register:
				h.mu.Lock()
				h.clients[client] = true
				h.mu.Unlock()
				log.Printf("Notify: dashboard client connected (%d total)", h.clientCount())
			case client := <-h.unregister:
				h.mu.Lock()
				if _, ok := h.clients[client]; ok {
					delete(h.clients, client)
					client.Close()
				}
				h.mu.Unlock()
			case message := <-h.broadcast:
				h.mu.Lock()
				for client := range h.clients {
					if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
						log.Printf("Notify: dropping client: %v", err)
						client.Close()
						delete(h.clients, client)
					}
				}
				h.mu.Unlock()
			}
		}
	}()
}

func (h *Hub) clientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// BroadcastSyncEvent tells connected dashboards about a sync state change.
func (h *Hub) BroadcastSyncEvent(state, message string) {
	payload, err := json.Marshal(map[string]any{
		"type":      "sync_update",
		"state":     state,
		"message":   message,
		"timestamp": time.Now().UTC(),
	})
	if err != nil {
		log.Printf("Notify: failed to marshal sync event: %v", err)
		return
	}

	select {
	case h.broadcast <- payload:
	default:
		// A stalled hub must never block the sync orchestrator.
		log.Print("Notify: broadcast buffer full, dropping sync event")
	}
}

// ServeWS upgrades an HTTP request to a WebSocket subscription.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Notify: upgrade failed: %v", err)
		return
	}

	// A late upgrade after shutdown must not strand the handler goroutine
	// on a channel nobody reads.
	select {
	case h.register <- conn:
	case <-h.done:
		conn.Close()
		return
	}

	// Drain (and discard) client messages so pings are answered and
	// disconnects are noticed.
	go func() {
		defer func() {
			select {
			case h.unregister <- conn:
			case <-h.done:
				conn.Close()
			}
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
