// Package websocket streams completed position calculations to
// connected observers, typically a debugging UI.
package websocket

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/domain"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/ports"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		// Allow same-origin (no Origin header)
		if origin == "" {
			return true
		}

		allowedOrigins := []string{
			"http://localhost:8080",
			"http://127.0.0.1:8080",
			"http://[::1]:8080",
		}
		for _, allowed := range allowedOrigins {
			if origin == allowed {
				return true
			}
		}

		log.Printf("WebSocket: Rejected origin: %s", origin)
		return false
	},
}

// WSMessage is the envelope for every frame on the feed.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// CalculationEvent is the payload for a completed calculation.
type CalculationEvent struct {
	Info     domain.CalculationInfo `json:"calculationInfo"`
	Position *domain.Position       `json:"position,omitempty"`
}

// WSManager fans completed calculations out to websocket clients. It
// implements ports.CalculationNotifier; notification never blocks the
// positioning path, slow clients just miss frames.
type WSManager struct {
	clients map[*websocket.Conn]bool
	mu      sync.Mutex
	events  chan CalculationEvent
}

var _ ports.CalculationNotifier = (*WSManager)(nil)

// NewWSManager builds an idle manager; call Start to begin
// broadcasting.
func NewWSManager() *WSManager {
	return &WSManager{
		clients: make(map[*websocket.Conn]bool),
		events:  make(chan CalculationEvent, 64),
	}
}

// Start runs the broadcast loop until the context is cancelled.
func (m *WSManager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				m.closeAll()
				return
			case ev := <-m.events:
				m.broadcast(WSMessage{Type: "calculation", Payload: ev})
			}
		}
	}()
}

// NotifyCalculation queues one calculation for broadcast, dropping it
// when the feed is backed up.
func (m *WSManager) NotifyCalculation(info domain.CalculationInfo, pos *domain.Position) {
	select {
	case m.events <- CalculationEvent{Info: info, Position: pos}:
	default:
	}
}

// HandleWebSocket upgrades the connection and registers the client.
func (m *WSManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}

	m.mu.Lock()
	m.clients[conn] = true
	m.mu.Unlock()

	// Clean up on disconnect. Clients never send application data; the
	// read loop only watches for the close frame.
	go func() {
		defer conn.Close()
		defer func() {
			m.mu.Lock()
			delete(m.clients, conn)
			m.mu.Unlock()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

// ClientCount reports the number of connected observers.
func (m *WSManager) ClientCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

func (m *WSManager) broadcast(msg WSMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for conn := range m.clients {
		if err := conn.WriteJSON(msg); err != nil {
			conn.Close()
			delete(m.clients, conn)
		}
	}
}

func (m *WSManager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.clients {
		conn.Close()
		delete(m.clients, conn)
	}
}
