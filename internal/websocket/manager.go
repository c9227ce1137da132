package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/tickerdeck/internal/hub"
	"github.com/tickerdeck/pkg/config"
	"github.com/tickerdeck/pkg/models"
)

// Manager pushes screen states to connected rendering clients as JSON. Every
// state the hub publishes is broadcast to every client; on connect a client
// immediately receives the current record of each screen.
type Manager struct {
	hub    *hub.Hub
	cfg    *config.WebSocketConfig
	logger *logrus.Entry

	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}

	register   chan *client
	unregister chan *client
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// message is the wire envelope pushed to clients.
type message struct {
	Type  string             `json:"type"`
	State models.ScreenState `json:"state"`
}

// NewManager creates a websocket manager bound to the hub.
func NewManager(h *hub.Hub, cfg *config.WebSocketConfig, log *logrus.Logger) *Manager {
	return &Manager{
		hub:    h,
		cfg:    cfg,
		logger: log.WithField("component", "websocket"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

// Run consumes the hub subscription and manages client membership until the
// context is cancelled.
func (m *Manager) Run(ctx context.Context) {
	states, cancel := m.hub.Subscribe(256)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return

		case c := <-m.register:
			m.mu.Lock()
			m.clients[c] = struct{}{}
			m.mu.Unlock()
			m.logger.WithField("clients", m.ClientCount()).Debug("Client connected")

		case c := <-m.unregister:
			m.mu.Lock()
			if _, ok := m.clients[c]; ok {
				delete(m.clients, c)
				close(c.send)
			}
			m.mu.Unlock()
			m.logger.WithField("clients", m.ClientCount()).Debug("Client disconnected")

		case state, ok := <-states:
			if !ok {
				m.closeAll()
				return
			}
			m.broadcast(state)
		}
	}
}

// ClientCount reports the number of connected clients.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// HandleWebSocket upgrades an HTTP request and starts the client pumps.
func (m *Manager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, m.cfg.SendBufferSize),
	}

	// Seed the new client with the current state of every screen.
	for _, state := range m.hub.States() {
		if data, err := json.Marshal(message{Type: "screen_state", State: state}); err == nil {
			c.send <- data
		}
	}

	m.register <- c

	go m.writePump(c)
	go m.readPump(c)
}

func (m *Manager) broadcast(state models.ScreenState) {
	data, err := json.Marshal(message{Type: "screen_state", State: state})
	if err != nil {
		m.logger.WithError(err).Error("Failed to marshal screen state")
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for c := range m.clients {
		select {
		case c.send <- data:
		default:
			// Slow consumer; it will catch up on the next update.
		}
	}
}

func (m *Manager) writePump(c *client) {
	ping := time.NewTicker(m.cfg.PingInterval)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(m.cfg.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(m.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (m *Manager) readPump(c *client) {
	defer func() {
		m.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(1024)
	c.conn.SetReadDeadline(time.Now().Add(m.cfg.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(m.cfg.PongTimeout))
		return nil
	})

	// Clients only consume; any read besides control frames is drained.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (m *Manager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for c := range m.clients {
		close(c.send)
		delete(m.clients, c)
	}
}
