package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/corray333/backend-labs/pos/internal/service/models/event"
	"github.com/corray333/backend-labs/pos/internal/service/models/session"
)

// JoinRoom is the inbound frame an observer sends to subscribe to a role room.
const JoinRoom = "join:room"

// Hub keeps connected observers grouped by tenant.
// Broadcast never blocks: an observer whose buffer is full misses the event.
type Hub struct {
	mu         sync.RWMutex
	tenants    map[int64]map[*Client]struct{}
	sendBuffer int
}

// NewHub creates a new Hub with a per-observer send buffer.
func NewHub(sendBuffer int) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = 64
	}

	return &Hub{
		tenants:    make(map[int64]map[*Client]struct{}),
		sendBuffer: sendBuffer,
	}
}

// Broadcast delivers evt to every observer of the tenant.
func (h *Hub) Broadcast(ctx context.Context, clientID int64, evt event.Event) {
	frame, err := json.Marshal(evt)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to marshal event", "event", evt.Name, "error", err)

		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.tenants[clientID] {
		select {
		case c.send <- frame:
		default:
			slog.WarnContext(ctx, "Observer buffer full, dropping event",
				"client_id", clientID,
				"observer_id", c.id,
				"event", evt.Name,
			)
		}
	}
}

// Count returns the number of observers connected for the tenant.
func (h *Hub) Count(clientID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.tenants[clientID])
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.tenants[c.session.ClientID]
	if !ok {
		room = make(map[*Client]struct{})
		h.tenants[c.session.ClientID] = room
	}
	room[c] = struct{}{}
}

// unregister removes c and closes its send channel. Safe to call more than once.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.tenants[c.session.ClientID]
	if !ok {
		return
	}
	if _, ok := room[c]; !ok {
		return
	}

	delete(room, c)
	close(c.send)
	if len(room) == 0 {
		delete(h.tenants, c.session.ClientID)
	}
}

func (h *Hub) join(c *Client, room session.Role) bool {
	switch room {
	case session.RoleAdmin, session.RoleCashier, session.RoleKitchen, session.RoleBar:
	default:
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	c.rooms[room] = struct{}{}

	return true
}

// Shutdown disconnects every observer.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for clientID, room := range h.tenants {
		for c := range room {
			close(c.send)
		}
		delete(h.tenants, clientID)
	}
}
