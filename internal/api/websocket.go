package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 512 * 1024
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Origins are checked by the CORS layer in front of the API
	},
}

// Message represents a WebSocket message
type Message struct {
	Type    string `json:"type"`
	TableID string `json:"tableId,omitempty"`
	Data    any    `json:"data,omitempty"`
}

const (
	MessageWelcome      = "welcome"
	MessageTableUpdate  = "tableUpdate"
	MessageTableCreated = "tableCreated"
	MessageTableDeleted = "tableDeleted"
)

// Client represents a connected WebSocket client. A client with no
// tableID only receives lobby broadcasts.
type Client struct {
	conn    *websocket.Conn
	send    chan []byte
	tableID string
	hub     *Hub
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	clients    map[*Client]bool
	tables     map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	clock      quartz.Clock
	logger     *log.Logger
	mu         sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub(clock quartz.Clock, logger *log.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		tables:     make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte),
		clock:      clock,
		logger:     logger.WithPrefix("hub"),
	}
}

// Run processes registrations and broadcasts until ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				h.remove(client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			if client.tableID != "" {
				if _, exists := h.tables[client.tableID]; !exists {
					h.tables[client.tableID] = make(map[*Client]bool)
				}
				h.tables[client.tableID][client] = true
			}
			h.mu.Unlock()
			h.logger.Debug("Client connected", "table", client.tableID)

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					h.logger.Warn("Dropping slow client", "table", client.tableID)
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove forgets a client and closes its send channel. Callers hold mu.
func (h *Hub) remove(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)

	if tableClients := h.tables[client.tableID]; tableClients != nil {
		delete(tableClients, client)
		if len(tableClients) == 0 {
			delete(h.tables, client.tableID)
		}
	}
}

// Broadcast sends a message to every connected client
func (h *Hub) Broadcast(message Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Error marshaling message", "error", err)
		return
	}
	h.broadcast <- data
}

// BroadcastToTable sends a message to all clients watching a table
func (h *Hub) BroadcastToTable(tableID string, message Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Error marshaling message", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.tables[tableID] {
		select {
		case client.send <- data:
		default:
			// Buffer full; the client will catch up from the next update
		}
	}
}

// TableClients returns how many clients are watching a table
func (h *Hub) TableClients(tableID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.tables[tableID])
}

// Serve upgrades the request to a WebSocket, queues welcome as the first
// message and starts the client's pumps.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, tableID string, welcome Message) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		tableID: tableID,
		hub:     h,
	}

	if data, err := json.Marshal(welcome); err == nil {
		client.send <- data
	}
	h.register <- client

	go client.readPump()
	go client.writePump()
}

// readPump watches the connection for closes and pongs. Commands are
// sent over HTTP, so anything else the client sends is discarded.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(c.hub.clock.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(c.hub.clock.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("WebSocket error", "error", err)
			}
			return
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := c.hub.clock.NewTicker(pingPeriod, "hub", "ping")
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(c.hub.clock.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(c.hub.clock.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
