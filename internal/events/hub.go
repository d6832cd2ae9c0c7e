package events

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event is the message pushed to every connected websocket client.
type Event struct {
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans out bill and inventory events to websocket subscribers
type Hub struct {
	clients    map[*websocket.Conn]bool
	clientsMux sync.Mutex
	broadcast  chan Event
	dropped    int
	now        func() time.Time
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 64
	}
	return &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Event, buffer),
		now:       time.Now,
	}
}

// Publish queues an event without blocking the caller. When the buffer is
// full the event is dropped.
func (h *Hub) Publish(eventType string, data any) {
	ev := Event{Type: eventType, Data: data, Timestamp: h.now()}
	select {
	case h.broadcast <- ev:
	default:
		h.clientsMux.Lock()
		h.dropped++
		h.clientsMux.Unlock()
		log.Printf("[Events] Buffer full, dropped %s event", eventType)
	}
}

// Run delivers queued events until ctx is cancelled, then closes all clients.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case ev := <-h.broadcast:
			h.deliver(ev)
		}
	}
}

func (h *Hub) deliver(ev Event) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()
	for client := range h.clients {
		client.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := client.WriteJSON(ev); err != nil {
			client.Close()
			delete(h.clients, client)
		}
	}
}

func (h *Hub) closeAll() {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()
	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()
	return len(h.clients)
}

// Dropped returns how many events were discarded because the buffer was full.
func (h *Hub) Dropped() int {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()
	return h.dropped
}

// ServeWS upgrades the request and keeps the connection registered until the
// client goes away. Messages sent by clients are ignored.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("[Events] WebSocket upgrade error:", err)
		return
	}
	defer conn.Close()

	h.clientsMux.Lock()
	h.clients[conn] = true
	h.clientsMux.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.clientsMux.Lock()
			delete(h.clients, conn)
			h.clientsMux.Unlock()
			break
		}
	}
}
