package realtime

import (
	"sync"

	"github.com/rs/zerolog"
)

// Client is one subscriber connection. The network side lives in the ws handler.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Hub fans task events out to every live connection of a user.
type Hub struct {
	mu              sync.RWMutex
	userIDToClients map[string]map[Client]struct{}
	logger          zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		userIDToClients: make(map[string]map[Client]struct{}),
		logger:          logger.With().Str("component", "realtime").Logger(),
	}
}

// Register adds a client under a user ID.
func (h *Hub) Register(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.userIDToClients[userID]; !ok {
		h.userIDToClients[userID] = make(map[Client]struct{})
	}
	h.userIDToClients[userID][client] = struct{}{}
	h.logger.Debug().
		Str("user_id", userID).
		Int("connections", len(h.userIDToClients[userID])).
		Msg("client registered")
}

// Unregister removes a client and drops the user entry once it is empty.
func (h *Hub) Unregister(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.userIDToClients[userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.userIDToClients, userID)
		}
	}
}

// Broadcast sends a message to all clients of a user. Failed sends are left to
// the owning handler to clean up.
func (h *Hub) Broadcast(userID string, message []byte) {
	h.mu.RLock()
	clients := make([]Client, 0, len(h.userIDToClients[userID]))
	for c := range h.userIDToClients[userID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if !c.Send(message) {
			h.logger.Debug().
				Str("user_id", userID).
				Msg("dropped message for client")
		}
	}
}

// Connections reports how many clients a user currently has.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userIDToClients[userID])
}
