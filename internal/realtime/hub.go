// internal/realtime/hub.go
package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Client is one open websocket. A user may hold several (tabs, devices).
type Client struct {
	ID     string
	UserID uuid.UUID
	Send   chan []byte
}

func NewClient(userID uuid.UUID) *Client {
	return &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		Send:   make(chan []byte, 256),
	}
}

type Hub struct {
	clients map[string]*Client
	closed  bool
	mu      sync.RWMutex
	log     *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		log:     log,
	}
}

// RegisterClient adds client to the hub; events sent after it returns reach
// the client. After shutdown the client's Send channel is closed straight away.
func (h *Hub) RegisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(client.Send)
		return
	}
	h.clients[client.ID] = client
	h.log.Debug("realtime client registered",
		zap.String("client_id", client.ID),
		zap.String("user_id", client.UserID.String()))
}

func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		close(old.Send)
		h.log.Debug("realtime client unregistered", zap.String("client_id", client.ID))
	}
}

// SendToUser marshals data and delivers it to every connection of userID.
func (h *Hub) SendToUser(userID uuid.UUID, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		h.log.Error("marshal realtime payload", zap.Error(err))
		return
	}
	h.SendRaw(userID, payload)
}

// SendRaw delivers an already encoded payload. Slow clients are skipped,
// never waited on.
func (h *Hub) SendRaw(userID uuid.UUID, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		if client.UserID == userID {
			select {
			case client.Send <- payload:
			default:
				h.log.Warn("realtime client buffer full, dropping event",
					zap.String("client_id", client.ID),
					zap.String("user_id", userID.String()))
			}
		}
	}
}

// Connections returns the number of registered clients.
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Run blocks until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, client := range h.clients {
		close(client.Send)
		delete(h.clients, id)
	}
}
