package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Event types pushed to connected clients after successful writes.
const (
	EventMessageNew      = "message.new"
	EventMessageEdited   = "message.edited"
	EventMessageDeleted  = "message.deleted"
	EventReactionUpdated = "reaction.updated"
	EventTyping          = "typing"
)

// Event is the wire format for real-time notifications. The core treats the
// hub as a notification port: services invoke it after each successful write
// and never depend on delivery.
type Event struct {
	Type           string      `json:"type"`
	ConversationID int64       `json:"conversationId"`
	SenderID       int64       `json:"senderId,omitempty"`
	MessageID      string      `json:"messageId,omitempty"`
	Payload        interface{} `json:"payload,omitempty"`
	Timestamp      time.Time   `json:"timestamp"`
}

// broadcastQueueSize bounds the queue between the write paths and the hub
// goroutine. A full queue drops events rather than blocking the writer.
const broadcastQueueSize = 256

// Hub maintains the set of active clients per conversation and broadcasts
// events to them.
type Hub struct {
	// Registered clients organized by conversation ID
	clients map[int64]map[*Client]bool

	// Channel for inbound events
	broadcast chan *Event

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	mu sync.RWMutex

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan *Event, broadcastQueueSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[int64]map[*Client]bool),
		logger:     logger,
	}
}

// Run starts the hub, handling client registrations and broadcasts.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.broadcastEvent(event)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conversationID := client.conversationID
	if _, ok := h.clients[conversationID]; !ok {
		h.clients[conversationID] = make(map[*Client]bool)
	}
	h.clients[conversationID][client] = true

	h.logger.Info().
		Int64("conversationID", conversationID).
		Int64("userID", client.userID).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conversationID := client.conversationID
	if _, ok := h.clients[conversationID]; ok {
		if _, ok := h.clients[conversationID][client]; ok {
			delete(h.clients[conversationID], client)
			close(client.send)

			if len(h.clients[conversationID]) == 0 {
				delete(h.clients, conversationID)
			}

			h.logger.Info().
				Int64("conversationID", conversationID).
				Int64("userID", client.userID).
				Msg("Client unregistered")
		}
	}
}

func (h *Hub) broadcastEvent(event *Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[event.ConversationID]
	if !ok {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("conversationID", event.ConversationID).
			Msg("Failed to marshal event for broadcast")
		return
	}

	for client := range clients {
		select {
		case client.send <- data:
		default:
			// Client's send buffer is full; evict it inline. The hub
			// goroutine owns this state, so no unregister round trip.
			delete(clients, client)
			close(client.send)
			h.logger.Warn().
				Int64("conversationID", event.ConversationID).
				Int64("userID", client.userID).
				Msg("Client evicted, send buffer full")
		}
	}
	if len(clients) == 0 {
		delete(h.clients, event.ConversationID)
		return
	}

	h.logger.Debug().
		Int64("conversationID", event.ConversationID).
		Str("type", event.Type).
		Int("clientCount", len(clients)).
		Msg("Event broadcasted to conversation")
}

// Broadcast queues an event for delivery to its conversation's clients.
// Delivery is best effort: when the queue is full the event is dropped, so
// callers on the request path never block on the hub.
func (h *Hub) Broadcast(event *Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn().
			Str("type", event.Type).
			Int64("conversationID", event.ConversationID).
			Msg("Event dropped, broadcast queue full")
	}
}

// ClientCount returns the number of connected clients for a conversation.
func (h *Hub) ClientCount(conversationID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.clients[conversationID]; ok {
		return len(clients)
	}
	return 0
}
