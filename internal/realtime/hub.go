// Package realtime pushes change notifications to connected browsers over
// websockets so open views know to refetch.
package realtime

import (
	"log"
	"net/http"
	"sync"
	"time"

	"megacrm-backend/internal/metrics"

	"github.com/gorilla/websocket"
)

// Event is broadcast after every successful write
type Event struct {
	Type     string    `json:"type"`
	Employee string    `json:"employee,omitempty"`
	Branch   string    `json:"branch,omitempty"`
	At       time.Time `json:"at"`
}

// Event types
const (
	ClientsChanged   = "clients"
	PaymentsChanged  = "payments"
	FinanceChanged   = "finance"
	EmployeesChanged = "employees"
)

type Hub struct {
	upgrader   websocket.Upgrader
	clients    map[*websocket.Conn]bool
	clientsMux sync.Mutex
	broadcast  chan Event
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Event, 64),
		done:      make(chan struct{}),
	}
}

// Run fans events out to every client until Stop
func (h *Hub) Run() {
	for {
		select {
		case ev := <-h.broadcast:
			h.clientsMux.Lock()
			for conn := range h.clients {
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteJSON(ev); err != nil {
					conn.Close()
					delete(h.clients, conn)
				}
			}
			metrics.RealtimeClients.Set(float64(len(h.clients)))
			h.clientsMux.Unlock()
		case <-h.done:
			h.clientsMux.Lock()
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			h.clientsMux.Unlock()
			return
		}
	}
}

func (h *Hub) Stop() {
	close(h.done)
}

// Publish queues an event. When the queue is full the event is dropped;
// clients refetch on the next one anyway.
func (h *Hub) Publish(ev Event) {
	if h == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	select {
	case h.broadcast <- ev:
	default:
		log.Printf("[Realtime] queue full, dropped %s event", ev.Type)
	}
}

// ServeHTTP upgrades the connection and keeps it registered until the peer
// goes away
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("[Realtime] upgrade error:", err)
		return
	}
	defer conn.Close()

	h.clientsMux.Lock()
	h.clients[conn] = true
	metrics.RealtimeClients.Set(float64(len(h.clients)))
	h.clientsMux.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.clientsMux.Lock()
			delete(h.clients, conn)
			metrics.RealtimeClients.Set(float64(len(h.clients)))
			h.clientsMux.Unlock()
			break
		}
	}
}

// Clients returns the number of connected peers
func (h *Hub) Clients() int {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()
	return len(h.clients)
}
