package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/lumiskin/skincare-backend/pkg/logger"
)

// Event types pushed to connected clients
const (
	EventCartUpdated        = "cart_updated"
	EventOrderCreated       = "order_created"
	EventOrderStatusChanged = "order_status_changed"
	EventPaymentCompleted   = "payment_completed"
	eventPong               = "pong"
)

// Event is the JSON frame written to the socket
type Event struct {
	Type    string      `json:"Type"`
	Payload interface{} `json:"Payload,omitempty"`
	SentAt  time.Time   `json:"SentAt"`
}

// ClientMessage is a frame received from a client
type ClientMessage struct {
	Type string `json:"Type"` // ping
}

// Client is one socket session. A user may hold several.
type Client struct {
	Hub        *Hub
	Conn       *Conn
	UserID     uint
	Backoffice bool
	Send       chan []byte

	rateMu        sync.Mutex
	messageCount  int
	lastResetTime time.Time
}

// NewClient creates a session with a buffered outbox
func NewClient(hub *Hub, conn *Conn, userID uint, backoffice bool) *Client {
	return &Client{
		Hub:           hub,
		Conn:          conn,
		UserID:        userID,
		Backoffice:    backoffice,
		Send:          make(chan []byte, 256),
		lastResetTime: time.Now(),
	}
}

type delivery struct {
	userID     uint
	backoffice bool
	message    []byte
}

// Hub fans events out to user sessions and to the backoffice
type Hub struct {
	// UserID -> sessions, for multi-device support
	clients map[uint][]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan *delivery
	done       chan struct{}

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *delivery, 1024),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and deliveries until Stop is called
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			sessions := len(h.clients[client.UserID])
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"user_id":        client.UserID,
				"backoffice":     client.Backoffice,
				"total_sessions": sessions,
			})

		case client := <-h.unregister:
			h.removeClient(client)

		case d := <-h.broadcast:
			h.deliver(d)
		}
	}
}

// Stop terminates Run
func (h *Hub) Stop() {
	close(h.done)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	list, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	kept := make([]*Client, 0, len(list))
	found := false
	for _, c := range list {
		if c == client {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return
	}
	if len(kept) == 0 {
		delete(h.clients, client.UserID)
	} else {
		h.clients[client.UserID] = kept
	}
	close(client.Send)

	logger.Info("WebSocket client unregistered", map[string]interface{}{
		"user_id":            client.UserID,
		"remaining_sessions": len(kept),
	})
}

func (h *Hub) deliver(d *delivery) {
	h.mu.RLock()
	var targets []*Client
	if d.backoffice {
		for _, list := range h.clients {
			for _, c := range list {
				if c.Backoffice {
					targets = append(targets, c)
				}
			}
		}
	} else {
		targets = append(targets, h.clients[d.userID]...)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		select {
		case client.Send <- d.message:
		default:
			// slow consumer
			go h.Unregister(client)
			logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
				"user_id": client.UserID,
			})
		}
	}
}

func (h *Hub) enqueue(d *delivery) {
	select {
	case h.broadcast <- d:
	default:
		logger.Warn("Broadcast channel full, event dropped", map[string]interface{}{
			"user_id":    d.userID,
			"backoffice": d.backoffice,
		})
	}
}

func encode(eventType string, payload interface{}) ([]byte, error) {
	return json.Marshal(Event{Type: eventType, Payload: payload, SentAt: time.Now()})
}

// NotifyUser pushes an event to every session of one user
func (h *Hub) NotifyUser(userID uint, eventType string, payload interface{}) {
	data, err := encode(eventType, payload)
	if err != nil {
		logger.Error("Failed to marshal event", err, map[string]interface{}{"type": eventType})
		return
	}
	h.enqueue(&delivery{userID: userID, message: data})
}

// NotifyBackoffice pushes an event to every staff and admin session
func (h *Hub) NotifyBackoffice(eventType string, payload interface{}) {
	data, err := encode(eventType, payload)
	if err != nil {
		logger.Error("Failed to marshal event", err, map[string]interface{}{"type": eventType})
		return
	}
	h.enqueue(&delivery{backoffice: true, message: data})
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// IsUserOnline reports whether the user has at least one open session
func (h *Hub) IsUserOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// allow applies the per-session rate limit
func (c *Client) allow(now time.Time) bool {
	c.rateMu.Lock()
	defer c.rateMu.Unlock()
	if now.Sub(c.lastResetTime) >= time.Second {
		c.messageCount = 0
		c.lastResetTime = now
	}
	c.messageCount++
	return c.messageCount <= maxMessagesPerSecond
}

// HandleClientMessage answers pings; everything else is ignored
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	if !client.allow(time.Now()) {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"user_id": client.UserID,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Debug("Failed to parse client message", map[string]interface{}{
			"user_id": client.UserID,
			"error":   err.Error(),
		})
		return
	}

	if msg.Type == "ping" {
		data, err := encode(eventPong, nil)
		if err != nil {
			return
		}
		select {
		case client.Send <- data:
		default:
		}
	}
}
