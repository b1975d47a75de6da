// Package realtime pushes stock and alert updates to websocket subscribers.
package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vsinha/kitchen/pkg/domain/entities"
	"github.com/vsinha/kitchen/pkg/infrastructure/events"
	"go.uber.org/zap"
)

const (
	pingInterval = 25 * time.Second
	writeWait    = 10 * time.Second
	sendBuffer   = 64
)

// Message is the envelope of every pushed update
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Client is one live connection
type Client struct {
	ID        string
	Principal entities.Principal

	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// Hub is the registry of live connections. Broadcasts never block on a slow
// client: a full queue drops the message for that client.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]struct{}
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHub creates an empty hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Verify interface compliance
var _ events.EventHandler = (*Hub)(nil)

// Accept upgrades the request and serves the connection until it closes
func (h *Hub) Accept(w http.ResponseWriter, r *http.Request, clientID string, principal entities.Principal) error {
	if !principal.Role.CanSubscribe() {
		return fmt.Errorf("%w: role %s cannot subscribe", entities.ErrForbidden, principal.Role)
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	client := &Client{
		ID:        clientID,
		Principal: principal,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		done:      make(chan struct{}),
	}
	h.register(client)
	defer h.unregister(client)

	client.send <- []byte(fmt.Sprintf("Connected to real-time updates. Role: %s", principal.Role))

	go h.writeLoop(client)
	h.readLoop(client)
	return nil
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("websocket client connected",
		zap.String("client_id", c.ID),
		zap.String("role", c.Principal.Role.String()),
		zap.Int("clients", count),
	)
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
	h.logger.Info("websocket client disconnected", zap.String("client_id", c.ID))
}

// readLoop acknowledges every client message and returns when the peer goes away
func (h *Hub) readLoop(c *Client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
		h.enqueue(c, []byte("Message received"))
	}
}

// writeLoop is the only writer on the connection
func (h *Hub) writeLoop(c *Client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}

func (h *Hub) enqueue(c *Client, msg []byte) bool {
	select {
	case <-c.done:
		return false
	case c.send <- msg:
		return true
	default:
		h.logger.Warn("websocket send queue full, dropping message", zap.String("client_id", c.ID))
		return false
	}
}

// Broadcast sends msg to every connected client and returns how many accepted it
func (h *Hub) Broadcast(msg Message) (int, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return 0, fmt.Errorf("failed to encode message: %w", err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for c := range h.clients {
		if h.enqueue(c, payload) {
			delivered++
		}
	}
	return delivered, nil
}

// Count returns the number of connected clients
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.close()
	}
}

// CanHandle implements events.EventHandler
func (h *Hub) CanHandle(eventType string) bool {
	switch eventType {
	case events.InventoryUpdatedEvent, events.StockLowEvent, events.AlertRaisedEvent:
		return true
	}
	return false
}

// Handle converts domain events into live messages
func (h *Hub) Handle(event events.Event) error {
	msg, ok := ToMessage(event)
	if !ok {
		return nil
	}
	_, err := h.Broadcast(msg)
	return err
}

// ToMessage maps a domain event to its live message shape
func ToMessage(event events.Event) (Message, bool) {
	timestamp := event.Timestamp().UTC().Format(time.RFC3339Nano)

	switch data := event.Data().(type) {
	case events.InventoryUpdated:
		return Message{Type: "inventory_update", Data: map[string]interface{}{
			"ingredient_id":   int64(data.IngredientID),
			"ingredient_name": data.Name,
			"quantity":        data.Quantity.InexactFloat64(),
			"timestamp":       timestamp,
		}}, true
	case events.StockLow:
		return Message{Type: "low_stock_alert", Data: map[string]interface{}{
			"ingredient_id":    int64(data.IngredientID),
			"ingredient_name":  data.Name,
			"current_quantity": data.Quantity.InexactFloat64(),
			"min_quantity":     data.MinQuantity.InexactFloat64(),
			"timestamp":        timestamp,
		}}, true
	case events.AlertRaised:
		payload := map[string]interface{}{
			"alert_type": data.AlertType,
			"message":    data.Message,
			"timestamp":  timestamp,
		}
		if data.RelatedID != 0 {
			payload["related_id"] = data.RelatedID
		}
		return Message{Type: "alert", Data: payload}, true
	}
	return Message{}, false
}
