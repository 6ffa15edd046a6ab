package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/classpulse/backend/internal/models"
	"github.com/classpulse/backend/internal/session"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// Hub tracks the connected clients of the single classroom session and fans
// out events to the right audience. It implements session.Emitter.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*Client
	logger  *zap.Logger
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]*Client),
		logger:  logger,
	}
}

// Register adds a connection to the hub. The client has no role until its
// join request is processed.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client connected", zap.String("client_id", c.ID.String()))
}

// Unregister removes a connection from the hub.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.ID)
	h.mu.Unlock()
	h.logger.Debug("client disconnected", zap.String("client_id", c.ID.String()))
}

// SetRole records a client's role once its join request is processed.
// Audience routing for teachers/students relies on it.
func (h *Hub) SetRole(id uuid.UUID, role string) {
	h.mu.Lock()
	if c, ok := h.clients[id]; ok {
		c.role = role
	}
	h.mu.Unlock()
}

// Emit delivers an event to its audience. Delivery uses each client's
// buffered send channel; a full buffer drops the message for that client.
func (h *Hub) Emit(ev session.Event) {
	data, err := json.Marshal(ev.Payload)
	if err != nil {
		h.logger.Warn("marshal event", zap.String("event", ev.Name), zap.Error(err))
		return
	}
	msg := WSMessage{Event: ev.Name, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if ev.Audience == session.AudienceClient {
		if c, ok := h.clients[ev.ClientID]; ok {
			h.trySend(c, msg)
		}
		return
	}
	for _, c := range h.clients {
		switch ev.Audience {
		case session.AudienceAll:
		case session.AudienceTeachers:
			if c.role != models.RoleTeacher {
				continue
			}
		case session.AudienceStudents:
			if c.role != models.RoleStudent {
				continue
			}
		}
		h.trySend(c, msg)
	}
}

// trySend enqueues without blocking. Callers hold h.mu (read or write), which
// excludes CloseClient, so the channel cannot be closed mid-send.
func (h *Hub) trySend(c *Client, msg WSMessage) {
	if c.closing {
		return
	}
	select {
	case c.send <- msg:
	default:
		// buffer full, skip
	}
}

// CloseClient force-disconnects a connection (used for kicks). Buffered
// messages, including the kicked notice, drain to the socket first.
func (h *Hub) CloseClient(id uuid.UUID) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok && !c.closing {
		c.closing = true
		close(c.send)
	}
	h.mu.Unlock()
}

// Counts reports connected clients by role.
func (h *Hub) Counts() (total, teachers, students int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		switch c.role {
		case models.RoleTeacher:
			teachers++
		case models.RoleStudent:
			students++
		}
	}
	return len(h.clients), teachers, students
}
