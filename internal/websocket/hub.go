package websocket

import (
	"encoding/json"
	"sync"

	log "github.com/sirupsen/logrus"
)

// PortfolioUpdate is pushed to a user's open sockets after a committed trade
// or deposit.
type PortfolioUpdate struct {
	Event       string `json:"event"`
	Symbol      string `json:"symbol,omitempty"`
	Shares      int64  `json:"shares,omitempty"`
	Cash        string `json:"cash"`
	CashDisplay string `json:"cash_display"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][client] = struct{}{}
}

// Unregister removes the client and closes its send channel. Calling it again
// for the same client is a no-op.
func (h *Hub) Unregister(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients := h.clients[userID]
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, userID)
	}
}

func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) BroadcastPortfolio(userID string, update PortfolioUpdate) {
	payload, err := json.Marshal(update)
	if err != nil {
		log.WithError(err).Error("encode portfolio update")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
			log.WithField("user_id", userID).Debug("dropping portfolio update for slow client")
		}
	}
}
