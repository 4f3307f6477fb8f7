package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Entity names used in broadcast messages. Clients key their cache
// invalidation off these.
const (
	EntityStore       = "store"
	EntityItem        = "item"
	EntityGroceryItem = "grocery_item"
	EntityTemplate    = "grocery_template"
	EntityProvider    = "provider"
	EntityAppointment = "appointment"
	EntityTask        = "task"
)

// Message is a change notification broadcast to every connected client.
// UserID is set for user-scoped entities (grocery items, templates) so
// clients can ignore other households members' list churn.
type Message struct {
	Type   string         `json:"type"`
	Entity string         `json:"entity"`
	Action string         `json:"action"`
	ID     int64          `json:"id,omitempty"`
	UserID *int64         `json:"user_id,omitempty"`
	Extra  map[string]any `json:"extra,omitempty"`
}

// NewMessage builds a Message with Type derived from entity and action.
func NewMessage(entity, action string, id int64) Message {
	return Message{
		Type:   fmt.Sprintf("%s_%s", entity, action),
		Entity: entity,
		Action: action,
		ID:     id,
	}
}

// ForUser tags the message with the owning user.
func (m Message) ForUser(userID int64) Message {
	m.UserID = &userID
	return m
}

// With attaches an extra key/value pair.
func (m Message) With(key string, value any) Message {
	if m.Extra == nil {
		m.Extra = make(map[string]any)
	}
	m.Extra[key] = value
	return m
}

// Hub tracks active WebSocket clients and fans broadcast messages out to
// all of them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends a message to all connected clients. Slow clients whose
// buffers are full are skipped rather than blocking the caller.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

// Notify is the common case: broadcast an entity/action/id triple.
func (h *Hub) Notify(entity, action string, id int64) {
	h.Broadcast(NewMessage(entity, action, id))
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
