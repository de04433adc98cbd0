package services

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type SyncEvent struct {
	StudentID    string    `json:"studentId"`
	Email        string    `json:"email"`
	Tool         string    `json:"tool"`
	WeekStarting string    `json:"weekStarting,omitempty"`
	Success      bool      `json:"success"`
	Error        string    `json:"error,omitempty"`
	At           time.Time `json:"at"`
}

type SyncPublisher interface {
	Publish(event SyncEvent)
}

// SyncHub fans sync events out to connected admin websockets. Publish never
// blocks; events are dropped when the buffer is full.
type SyncHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	ch      chan SyncEvent
}

func NewSyncHub() *SyncHub {
	return &SyncHub{
		clients: map[*websocket.Conn]bool{},
		ch:      make(chan SyncEvent, 64),
	}
}

func (h *SyncHub) Run(ctx context.Context) {
	for {
		select {
		case event := <-h.ch:
			h.broadcast(event)
		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

func (h *SyncHub) broadcast(event SyncEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(event); err != nil {
			delete(h.clients, conn)
			_ = conn.Close()
		}
	}
}

func (h *SyncHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		_ = conn.Close()
		delete(h.clients, conn)
	}
}

func (h *SyncHub) Publish(event SyncEvent) {
	select {
	case h.ch <- event:
	default:
	}
}

func (h *SyncHub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
}

func (h *SyncHub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

func (h *SyncHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
