package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/draftops/draft-engine/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Origin checks belong to the gateway in front of us
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Client is one WebSocket subscriber watching a draft room.
type Client struct {
	RoomID   string
	Conn     *websocket.Conn
	Send     chan []byte
	Hub      *Hub
	LastSeen time.Time
}

// Hub fans evaluation results out to every client watching a room.
type Hub struct {
	clients     map[*Client]bool
	roomClients map[string][]*Client
	broadcast   chan *EvaluationMessage
	register    chan *Client
	unregister  chan *Client
	logger      *logrus.Logger
	mutex       sync.RWMutex
}

// EvaluationMessage is the wire format pushed to subscribers.
type EvaluationMessage struct {
	Type      string                   `json:"type"` // "evaluation", "connected", "ping"
	RoomID    string                   `json:"room_id,omitempty"`
	Result    *models.EvaluationResult `json:"result,omitempty"`
	Timestamp time.Time                `json:"timestamp"`
}

// NewHub creates a hub.
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		roomClients: make(map[string][]*Client),
		broadcast:   make(chan *EvaluationMessage, 256),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		logger:      logger,
	}
}

// Run pumps registrations, broadcasts and pings until the process exits.
func (h *Hub) Run() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.broadcastMessage(msg)

		case <-ticker.C:
			h.pingClients()
		}
	}
}

// BroadcastEvaluation pushes an evaluation result to every subscriber of the
// room. Non-blocking; drops when the hub's buffer is full.
func (h *Hub) BroadcastEvaluation(roomID string, result models.EvaluationResult) {
	msg := &EvaluationMessage{
		Type:      "evaluation",
		RoomID:    roomID,
		Result:    &result,
		Timestamp: time.Now(),
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.WithField("room_id", roomID).Warn("Broadcast buffer full, dropping evaluation update")
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.clients[client] = true
	h.roomClients[client.RoomID] = append(h.roomClients[client.RoomID], client)

	h.logger.WithFields(logrus.Fields{
		"room_id":       client.RoomID,
		"total_clients": len(h.clients),
	}).Info("WebSocket client connected")

	welcome := &EvaluationMessage{
		Type:      "connected",
		RoomID:    client.RoomID,
		Timestamp: time.Now(),
	}
	h.sendToClient(client, welcome)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)

	roomClients := h.roomClients[client.RoomID]
	for i, c := range roomClients {
		if c == client {
			h.roomClients[client.RoomID] = append(roomClients[:i], roomClients[i+1:]...)
			break
		}
	}
	if len(h.roomClients[client.RoomID]) == 0 {
		delete(h.roomClients, client.RoomID)
	}

	h.logger.WithFields(logrus.Fields{
		"room_id":       client.RoomID,
		"total_clients": len(h.clients),
	}).Info("WebSocket client disconnected")
}

func (h *Hub) broadcastMessage(msg *EvaluationMessage) {
	h.mutex.RLock()
	clients := append([]*Client(nil), h.roomClients[msg.RoomID]...)
	h.mutex.RUnlock()

	for _, client := range clients {
		h.sendToClient(client, msg)
	}
}

func (h *Hub) sendToClient(client *Client, msg *EvaluationMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal WebSocket message")
		return
	}
	select {
	case client.Send <- payload:
	default:
		// Slow consumer; drop them rather than blocking the hub.
		go func() { h.unregister <- client }()
	}
}

func (h *Hub) pingClients() {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	ping := &EvaluationMessage{Type: "ping", Timestamp: time.Now()}
	payload, _ := json.Marshal(ping)
	for client := range h.clients {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

// HandleConnection upgrades a request and runs the client pumps.
func (h *Hub) HandleConnection(c *gin.Context) {
	roomID := c.Param("room_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}

	client := &Client{
		RoomID:   roomID,
		Conn:     conn,
		Send:     make(chan []byte, 64),
		Hub:      h,
		LastSeen: time.Now(),
	}

	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) writePump() {
	defer c.Conn.Close()
	for payload := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(1024)
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
		c.LastSeen = time.Now()
	}
}
