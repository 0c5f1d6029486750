package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/wrenhollis/newsletter-digest-backend/internal/models"
)

// EventType represents the type of WebSocket event
type EventType string

const (
	EventDigestCreated       EventType = "digest_created"
	EventSubscriptionChanged EventType = "subscription_changed"
	EventDetectionCompleted  EventType = "detection_completed"
	EventError               EventType = "error"
)

// Event represents a WebSocket event pushed to connected clients
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// DigestCreatedPayload is the payload for digest creation events
type DigestCreatedPayload struct {
	ID              string `json:"id"`
	PeriodStart     string `json:"period_start"`
	PeriodEnd       string `json:"period_end"`
	NewsletterCount int    `json:"newsletter_count"`
	CreatedAt       string `json:"created_at"`
}

// SubscriptionChangedPayload is the payload for subscription state events
type SubscriptionChangedPayload struct {
	SenderEmail string `json:"sender_email"`
	Status      string `json:"status"`
}

// DetectionCompletedPayload is the payload for mailbox scan events
type DetectionCompletedPayload struct {
	CandidateCount int `json:"candidate_count"`
}

// Hub maintains the set of active clients and broadcasts events to all of
// them. Every connected client receives every event; there is no per-topic
// subscription.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Broadcast to all clients
	broadcast chan []byte

	// Mutex for thread-safe operations
	mu sync.RWMutex

	// Logger
	logger *slog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		logger:     logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client registered")
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client unregistered")
			}

		case data := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					// Client buffer full, skip
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// ClientCount reports the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends an event to every connected client
func (h *Hub) Broadcast(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("failed to marshal broadcast event", slog.Any("error", err))
		}
		return
	}
	h.broadcast <- data
}

// DigestCreated notifies connected clients that a new digest is available
func (h *Hub) DigestCreated(digest *models.Digest) {
	h.Broadcast(Event{
		Type: EventDigestCreated,
		Payload: &DigestCreatedPayload{
			ID:              digest.ID,
			PeriodStart:     digest.PeriodStart.Format("2006-01-02"),
			PeriodEnd:       digest.PeriodEnd.Format("2006-01-02"),
			NewsletterCount: digest.NewsletterCount,
			CreatedAt:       digest.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		},
	})
}

// DetectionCompleted notifies connected clients that a mailbox scan finished
func (h *Hub) DetectionCompleted(candidateCount int) {
	h.Broadcast(Event{
		Type:    EventDetectionCompleted,
		Payload: &DetectionCompletedPayload{CandidateCount: candidateCount},
	})
}

// SubscriptionChanged notifies connected clients of a subscription transition
func (h *Hub) SubscriptionChanged(sub *models.Subscription) {
	h.Broadcast(Event{
		Type: EventSubscriptionChanged,
		Payload: &SubscriptionChangedPayload{
			SenderEmail: sub.SenderEmail,
			Status:      string(sub.Status),
		},
	})
}
