// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/austinw/envelope/internal/adapters/pubsub"
	"github.com/austinw/envelope/pkg/logger"
	"github.com/austinw/envelope/pkg/metrics"
)

// Websocket keepalive tuning.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 512
)

// liveMessage is the signal pushed to connected clients. It carries no
// payload; clients re-fetch the affected resource over the regular API.
type liveMessage struct {
	Type      string    `json:"type"`
	Topic     string    `json:"topic"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub manages live-feed websocket connections and fans change signals
// out to all of them.
type Hub struct {
	clients    map[*liveClient]bool
	broadcast  chan liveMessage
	register   chan *liveClient
	unregister chan *liveClient
	mu         sync.RWMutex

	upgrader websocket.Upgrader
	log      logger.Logger
}

// NewHub creates a live-feed hub. Run must be started for clients to
// receive anything.
func NewHub(log logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*liveClient]bool),
		broadcast:  make(chan liveMessage, 256),
		register:   make(chan *liveClient),
		unregister: make(chan *liveClient),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The contest page is served from arbitrary hosts.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// Run drives the hub until ctx is canceled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			metrics.UpdateWebsocketClients(n)
			h.log.Debug(ctx, "live client connected", logger.Int("clients", n))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			metrics.UpdateWebsocketClients(n)
			h.log.Debug(ctx, "live client disconnected", logger.Int("clients", n))

		case msg := <-h.broadcast:
			h.fanOut(msg)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	metrics.UpdateWebsocketClients(0)
}

func (h *Hub) fanOut(msg liveMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			// Slow client; drop the connection rather than block the hub.
			close(client.send)
			delete(h.clients, client)
		}
	}
	metrics.UpdateWebsocketClients(len(h.clients))
}

// NotifyChange queues a change signal for broadcast. Non-blocking; if the
// broadcast buffer is full the signal is dropped, which is acceptable
// because clients re-fetch full state on every signal anyway.
func (h *Hub) NotifyChange(topic pubsub.Topic, at time.Time) {
	msg := liveMessage{Type: "change", Topic: string(topic), Timestamp: at}
	select {
	case h.broadcast <- msg:
	default:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// liveClient is one websocket connection.
type liveClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// LiveHandler upgrades /api/live requests onto the hub.
type LiveHandler struct {
	hub *Hub
}

// NewLiveHandler creates a new live-feed handler.
func NewLiveHandler(hub *Hub) *LiveHandler {
	return &LiveHandler{hub: hub}
}

// HandleLive handles GET /api/live websocket upgrade requests.
func (h *LiveHandler) HandleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := h.hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error to the client.
		h.hub.log.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}
	client := &liveClient{hub: h.hub, conn: conn, send: make(chan []byte, 256)}
	h.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump drains inbound frames so pong handling works; the live feed
// is one-way and client payloads are ignored.
func (c *liveClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *liveClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
