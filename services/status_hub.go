package services

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"owlistic-notes/blocknotes/broker"
	"owlistic-notes/blocknotes/editor"
	"owlistic-notes/blocknotes/logging"
	"owlistic-notes/blocknotes/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 256
)

// Client is one websocket connection to the status stream.
type Client struct {
	ID   string
	Hub  *StatusHub
	Conn *websocket.Conn
	Send chan []byte

	mu            sync.RWMutex
	subscriptions map[string]bool
}

// ClientMessage is a message sent by a websocket client.
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type subscription struct {
	Resource string `json:"resource"`
	ID       string `json:"id,omitempty"`
}

func (s subscription) key() string {
	if s.ID == "" {
		return s.Resource
	}
	return s.Resource + ":" + s.ID
}

type outbound struct {
	resourceType string
	resourceID   string
	data         []byte
}

type reply struct {
	client *Client
	data   []byte
}

// StatusHub streams flush outcomes and note events to websocket clients.
// Clients choose what they receive with subscribe messages: "all", a
// resource type such as "note", or a single resource ("note" plus an id).
type StatusHub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan outbound
	replies    chan reply
	mu         sync.RWMutex

	upgrader websocket.Upgrader
	consumer broker.Consumer
	logger   *zap.Logger

	runMu     sync.Mutex
	isRunning bool
	stop      chan struct{}
}

// NewStatusHub creates a hub. consumer may be nil when no broker is
// configured.
func NewStatusHub(consumer broker.Consumer) *StatusHub {
	return &StatusHub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan outbound, sendBuffer),
		replies:    make(chan reply, sendBuffer),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		consumer: consumer,
		logger:   logging.Get(),
		stop:     make(chan struct{}),
	}
}

func (h *StatusHub) Start() {
	h.runMu.Lock()
	defer h.runMu.Unlock()
	if h.isRunning {
		return
	}
	h.isRunning = true
	go h.run()
	if h.consumer != nil {
		go h.forward(h.consumer.Messages())
	}
	h.logger.Info("status hub started")
}

// Stop closes every connection. A stopped hub cannot be restarted.
func (h *StatusHub) Stop() {
	h.runMu.Lock()
	defer h.runMu.Unlock()
	if !h.isRunning {
		return
	}
	h.isRunning = false
	close(h.stop)
	if h.consumer != nil {
		h.consumer.Close()
	}

	h.mu.Lock()
	for _, client := range h.clients {
		if client != nil && client.Conn != nil {
			client.Conn.Close()
		}
	}
	h.mu.Unlock()
	h.logger.Info("status hub stopped")
}

func (h *StatusHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ReportFlush queues a flush outcome for subscribers of its note. It never
// blocks the flushing engine; when the queue is full the status is dropped.
func (h *StatusHub) ReportFlush(status editor.FlushStatus) {
	msg := broker.FlushMessage(status)
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode flush status", zap.Error(err))
		return
	}
	h.enqueue(outbound{resourceType: msg.ResourceType, resourceID: msg.ResourceID, data: data})
}

func (h *StatusHub) enqueue(out outbound) {
	select {
	case h.broadcast <- out:
	default:
		h.logger.Warn("status hub queue full, dropping message",
			zap.String("resource_type", out.resourceType),
			zap.String("resource_id", out.resourceID))
	}
}

func (h *StatusHub) forward(messages <-chan broker.Message) {
	for {
		select {
		case <-h.stop:
			return
		case msg, ok := <-messages:
			if !ok {
				h.logger.Info("broker channel closed, status hub no longer receives note events")
				return
			}
			h.handleBrokerMessage(msg)
		}
	}
}

func (h *StatusHub) handleBrokerMessage(msg broker.Message) {
	envelope, err := models.DecodeMessage(msg.Data)
	if err != nil {
		h.logger.Warn("could not decode broker message",
			zap.String("subject", msg.Subject),
			zap.Error(err))
		return
	}
	if envelope.Event == "" {
		envelope.Event = msg.Subject
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		h.logger.Error("failed to encode broker message", zap.Error(err))
		return
	}
	h.enqueue(outbound{resourceType: envelope.ResourceType, resourceID: envelope.ResourceID, data: data})
}

func (h *StatusHub) run() {
	for {
		select {
		case <-h.stop:
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			h.logger.Debug("client connected", zap.String("client_id", client.ID))

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()
			h.logger.Debug("client disconnected", zap.String("client_id", client.ID))

		case r := <-h.replies:
			h.mu.Lock()
			if _, ok := h.clients[r.client.ID]; ok {
				h.sendLocked(r.client, r.data)
			}
			h.mu.Unlock()

		case out := <-h.broadcast:
			h.mu.Lock()
			sent := 0
			for _, client := range h.clients {
				if client.subscribed(out.resourceType, out.resourceID) && h.sendLocked(client, out.data) {
					sent++
				}
			}
			h.mu.Unlock()
			h.logger.Debug("status message routed",
				zap.String("resource_type", out.resourceType),
				zap.String("resource_id", out.resourceID),
				zap.Int("clients", sent))
		}
	}
}

// sendLocked drops a client whose buffer is full.
func (h *StatusHub) sendLocked(client *Client, data []byte) bool {
	select {
	case client.Send <- data:
		return true
	default:
		h.logger.Warn("client send buffer full, removing client", zap.String("client_id", client.ID))
		h.removeLocked(client)
		return false
	}
}

func (h *StatusHub) removeLocked(client *Client) {
	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		close(client.Send)
	}
}

// HandleWebSocket upgrades the request and attaches the connection to the hub.
func (h *StatusHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("failed to upgrade websocket", zap.Error(err))
		return
	}

	client := &Client{
		ID:            uuid.New().String(),
		Hub:           h,
		Conn:          conn,
		Send:          make(chan []byte, sendBuffer),
		subscriptions: make(map[string]bool),
	}

	select {
	case h.register <- client:
	case <-h.stop:
		conn.Close()
		return
	}

	go client.readPump()
	go client.writePump()
}

func (c *Client) subscribed(resourceType, resourceID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.subscriptions["all"] || c.subscriptions[resourceType] {
		return true
	}
	return resourceID != "" && c.subscriptions[resourceType+":"+resourceID]
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.stop:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("websocket read failed", zap.String("client_id", c.ID), zap.Error(err))
			}
			return
		}
		c.processMessage(message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) processMessage(raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.replyError("invalid message")
		return
	}

	switch msg.Type {
	case "subscribe", "unsubscribe":
		var sub subscription
		if err := json.Unmarshal(msg.Payload, &sub); err != nil || sub.Resource == "" {
			c.replyError("invalid subscription")
			return
		}
		c.mu.Lock()
		if msg.Type == "subscribe" {
			c.subscriptions[sub.key()] = true
		} else {
			delete(c.subscriptions, sub.key())
		}
		c.mu.Unlock()

		event := "confirmed"
		if msg.Type == "unsubscribe" {
			event = "removed"
		}
		c.reply(models.NewStandardMessage(models.SubscribeMessage, event, map[string]interface{}{
			"resource": sub.Resource,
			"id":       sub.ID,
		}))
	case "ping":
	default:
		c.replyError("unknown message type " + msg.Type)
	}
}

func (c *Client) replyError(message string) {
	c.reply(models.NewErrorMessage(message))
}

func (c *Client) reply(msg *models.StandardMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.Hub.replies <- reply{client: c, data: data}:
	case <-c.Hub.stop:
	}
}
