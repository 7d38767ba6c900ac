package kds

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-site/utils"
)

// Event types
const (
	EventOrderCreated       = "order_created"
	EventOrderStatus        = "order_status"
	EventReservationCreated = "reservation_created"
	EventReservationStatus  = "reservation_status"
	EventReviewSubmitted    = "review_submitted"
	EventSessionChanged     = "session_changed"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one connected staff screen.
type Client struct {
	conn   Conn
	UserID uint
	Role   string

	writeMu sync.Mutex
}

func (c *Client) Send(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub holds every connected client and fans out booking events.
type Hub struct {
	mutex   sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

func (h *Hub) Register(conn Conn, userID uint, role string) *Client {
	client := &Client{conn: conn, UserID: userID, Role: role}
	h.mutex.Lock()
	h.clients[client] = struct{}{}
	h.mutex.Unlock()
	utils.InfoLogger.Printf("KDS client connected: user=%d role=%s", userID, role)
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mutex.Lock()
	_, ok := h.clients[client]
	delete(h.clients, client)
	h.mutex.Unlock()
	if ok {
		client.conn.Close()
		utils.InfoLogger.Printf("KDS client disconnected: user=%d", client.UserID)
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Broadcast sends msg to every client; clients that fail to receive are dropped.
func (h *Hub) Broadcast(msg Message) {
	h.mutex.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mutex.RUnlock()

	for _, c := range targets {
		if err := c.Send(msg); err != nil {
			utils.ErrorLogger.Errorf("Error sending %s to user %d: %v", msg.Event, c.UserID, err)
			h.Unregister(c)
		}
	}
}

func (h *Hub) Publish(event string, data interface{}) {
	h.Broadcast(Message{Event: event, Data: data})
}
