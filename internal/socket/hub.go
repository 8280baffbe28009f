package socket

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	logrus "github.com/sirupsen/logrus"
)

// Message types pushed to dashboard clients.
const (
	DriversSnapshotType  = "DRIVERS_SNAPSHOT"
	OrdersSnapshotType   = "ORDERS_SNAPSHOT"
	ConnectionStatusType = "CONNECTION_STATUS"
)

// Message is the envelope for every WebSocket push.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Hub manages all dashboard WebSocket clients.
type Hub struct {
	// clients keyed by a per-connection id.
	clients map[string]*websocket.Conn
	// last holds the most recent marshaled message per type, replayed to
	// clients that connect between snapshots.
	last map[string][]byte
	// mu guards both maps; writes to a single conn are serialized per call.
	mu sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*websocket.Conn),
		last:    make(map[string][]byte),
	}
}

// Register adds a client and replays the last known snapshots so a fresh
// dashboard has state immediately.
func (h *Hub) Register(clientID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[clientID] = conn
	logrus.WithField("client", clientID).Info("websocket client registered")

	for _, data := range h.last {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			logrus.WithError(err).WithField("client", clientID).Warn("replay failed")
			return
		}
	}
}

// Unregister removes a client from the Hub.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[clientID]; ok {
		delete(h.clients, clientID)
		logrus.WithField("client", clientID).Info("websocket client unregistered")
	}
}

// Broadcast sends a message to every connected client and remembers it for
// replay. Send errors only drop the offending client.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		logrus.WithError(err).Error("failed to marshal broadcast message")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.last[msg.Type] = data

	for clientID, conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			logrus.WithError(err).WithField("client", clientID).Warn("dropping client after write error")
			conn.Close()
			delete(h.clients, clientID)
		}
	}
}

// Seed installs a replay message for a type that has none yet. Used at
// startup to restore the last snapshots from the cache before the first
// collection read completes.
func (h *Hub) Seed(messageType string, data []byte) {
	if len(data) == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.last[messageType]; !ok {
		h.last[messageType] = data
	}
}

// ClientCount reports the number of connected dashboards.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
