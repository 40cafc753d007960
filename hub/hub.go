// Package hub fans mission phase and position updates out to websocket
// subscribers. Within one mission, updates are delivered in the order
// they were published.
package hub

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"go-medalert/types"
)

// Update is one observable mission event.
type Update struct {
	AlertID  string            `json:"alert_id"`
	Phase    types.Phase       `json:"phase"`
	Position *types.Coordinate `json:"position,omitempty"`
	Log      string            `json:"log,omitempty"`
}

// Client is one connected subscriber.
type Client struct {
	ID     string
	Send   chan []byte
	mu     sync.RWMutex
	alerts map[string]struct{}
}

// NewClient builds a subscriber with a buffered send queue.
func NewClient(id string, bufferSize int) *Client {
	return &Client{
		ID:     id,
		Send:   make(chan []byte, bufferSize),
		alerts: make(map[string]struct{}),
	}
}

func (c *Client) addAlerts(alertIDs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range alertIDs {
		c.alerts[id] = struct{}{}
	}
}

func (c *Client) removeAlerts(alertIDs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range alertIDs {
		delete(c.alerts, id)
	}
}

// Hub routes updates to the clients subscribed to each alert.
type Hub struct {
	mu           sync.RWMutex
	clients      map[*Client]struct{}
	alertClients map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	updates    chan Update
}

// New builds a hub; call Run to start it.
func New() *Hub {
	return &Hub{
		clients:      make(map[*Client]struct{}),
		alertClients: make(map[string]map[*Client]struct{}),
		register:     make(chan *Client, 16),
		unregister:   make(chan *Client, 16),
		updates:      make(chan Update, 256),
	}
}

// Run processes registrations and updates until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAllClients()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.removeClient(client)

		case update := <-h.updates:
			h.fanout(update)
		}
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) { h.register <- client }

// Unregister removes a client and closes its queue.
func (h *Hub) Unregister(client *Client) { h.unregister <- client }

// Subscribe adds alert subscriptions for a client.
func (h *Hub) Subscribe(client *Client, alertIDs []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client.addAlerts(alertIDs)
	for _, id := range alertIDs {
		if h.alertClients[id] == nil {
			h.alertClients[id] = make(map[*Client]struct{})
		}
		h.alertClients[id][client] = struct{}{}
	}
}

// Unsubscribe drops alert subscriptions for a client.
func (h *Hub) Unsubscribe(client *Client, alertIDs []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client.removeAlerts(alertIDs)
	for _, id := range alertIDs {
		if subscribers := h.alertClients[id]; subscribers != nil {
			delete(subscribers, client)
			if len(subscribers) == 0 {
				delete(h.alertClients, id)
			}
		}
	}
}

// Publish queues an update for delivery. Never blocks the caller; when
// the hub is saturated the update is dropped with a log line (the
// persisted mission record remains the source of truth).
func (h *Hub) Publish(update Update) {
	select {
	case h.updates <- update:
	default:
		log.Printf("hub: update queue full, dropping update for alert %s", update.AlertID)
	}
}

func (h *Hub) fanout(update Update) {
	payload, err := json.Marshal(update)
	if err != nil {
		log.Printf("hub: marshaling update failed: %v", err)
		return
	}

	h.mu.RLock()
	subscribers := h.alertClients[update.AlertID]
	targets := make([]*Client, 0, len(subscribers))
	for client := range subscribers {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		select {
		case client.Send <- payload:
		default:
			// slow consumer; drop rather than stall the mission stream
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	for id, subscribers := range h.alertClients {
		delete(subscribers, client)
		if len(subscribers) == 0 {
			delete(h.alertClients, id)
		}
	}
	close(client.Send)
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.Send)
	}
	h.clients = make(map[*Client]struct{})
	h.alertClients = make(map[string]map[*Client]struct{})
}
