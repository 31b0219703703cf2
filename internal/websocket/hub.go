package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeSubscribe     MessageType = "subscribe"
	MessageTypeUnsubscribe   MessageType = "unsubscribe"
	MessageTypeThreadUpdated MessageType = "thread_updated"
	MessageTypeError         MessageType = "error"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type      MessageType `json:"type"`
	InquiryID uint        `json:"inquiry_id,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// ThreadUpdatedPayload tells a subscribed console that an inquiry's thread
// changed server-side. It deliberately carries no message content: the
// console re-fetches and reconciles, so the payload only needs to identify
// what moved.
type ThreadUpdatedPayload struct {
	InquiryID uint   `json:"inquiry_id"`
	Status    string `json:"status"`
	UpdatedAt string `json:"updated_at"`
}

// Hub maintains the set of active clients and broadcasts thread updates
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Inquiry subscriptions: inquiryID -> set of clients
	subscriptions map[uint]map[*Client]bool

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Subscribe to an inquiry thread
	subscribe chan *subscriptionRequest

	// Unsubscribe from an inquiry thread
	unsubscribeInquiry chan *subscriptionRequest

	// Broadcast to inquiry subscribers
	broadcast chan *broadcastMessage

	// Mutex for thread-safe operations
	mu sync.RWMutex

	// Logger
	logger *slog.Logger
}

type subscriptionRequest struct {
	client    *Client
	inquiryID uint
}

type broadcastMessage struct {
	inquiryID uint
	message   []byte
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:            make(map[*Client]bool),
		subscriptions:      make(map[uint]map[*Client]bool),
		register:           make(chan *Client),
		unregister:         make(chan *Client),
		subscribe:          make(chan *subscriptionRequest),
		unsubscribeInquiry: make(chan *subscriptionRequest),
		broadcast:          make(chan *broadcastMessage, 256),
		logger:             logger,
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
				// Remove from all subscriptions
				for inquiryID, subscribers := range h.subscriptions {
					delete(subscribers, client)
					if len(subscribers) == 0 {
						delete(h.subscriptions, inquiryID)
					}
				}
			}
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client unregistered")
			}

		case req := <-h.subscribe:
			h.mu.Lock()
			if h.subscriptions[req.inquiryID] == nil {
				h.subscriptions[req.inquiryID] = make(map[*Client]bool)
			}
			h.subscriptions[req.inquiryID][req.client] = true
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client subscribed to inquiry", slog.Uint64("inquiry_id", uint64(req.inquiryID)))
			}

		case req := <-h.unsubscribeInquiry:
			h.mu.Lock()
			if subscribers, ok := h.subscriptions[req.inquiryID]; ok {
				delete(subscribers, req.client)
				if len(subscribers) == 0 {
					delete(h.subscriptions, req.inquiryID)
				}
			}
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client unsubscribed from inquiry", slog.Uint64("inquiry_id", uint64(req.inquiryID)))
			}

		case msg := <-h.broadcast:
			h.mu.RLock()
			subscribers := h.subscriptions[msg.inquiryID]
			for client := range subscribers {
				select {
				case client.send <- msg.message:
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

// Subscribe subscribes a client to an inquiry thread
func (h *Hub) Subscribe(client *Client, inquiryID uint) {
	h.subscribe <- &subscriptionRequest{client: client, inquiryID: inquiryID}
}

// Unsubscribe unsubscribes a client from an inquiry thread
func (h *Hub) Unsubscribe(client *Client, inquiryID uint) {
	h.unsubscribeInquiry <- &subscriptionRequest{client: client, inquiryID: inquiryID}
}

// BroadcastThreadUpdated notifies inquiry subscribers that the thread changed
// and they should re-fetch and reconcile
func (h *Hub) BroadcastThreadUpdated(inquiryID uint, payload *ThreadUpdatedPayload) {
	msg := WSMessage{
		Type:      MessageTypeThreadUpdated,
		InquiryID: inquiryID,
		Payload:   payload,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("failed to marshal broadcast message", slog.Any("error", err))
		}
		return
	}

	h.broadcast <- &broadcastMessage{
		inquiryID: inquiryID,
		message:   data,
	}
}
