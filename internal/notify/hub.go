package notify

import (
	"context"
	"net/http"
	"time"

	"github.com/GlebRadaev/exchange/internal/metrics"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

type message struct {
	channel string
	data    []byte
}

// Hub owns the websocket subscriptions. All bookkeeping happens on the Run goroutine,
// so events reach a channel's clients in the order they were delivered.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	done       chan struct{}
	upgrader   websocket.Upgrader
}

func NewHub(allowedOrigins []string) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 256),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, clients := range h.clients {
				for c := range clients {
					h.drop(c)
				}
			}
			return

		case c := <-h.register:
			if h.clients[c.channel] == nil {
				h.clients[c.channel] = make(map[*Client]struct{})
			}
			h.clients[c.channel][c] = struct{}{}
			metrics.WSClients.Inc()
			zap.L().Debug("websocket client registered", zap.String("clientID", c.id), zap.String("channel", c.channel))

		case c := <-h.unregister:
			if _, ok := h.clients[c.channel][c]; ok {
				h.drop(c)
			}

		case msg := <-h.broadcast:
			for c := range h.clients[msg.channel] {
				select {
				case c.send <- msg.data:
				default:
					zap.L().Warn("websocket client too slow, dropping", zap.String("clientID", c.id), zap.String("channel", c.channel))
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *Client) {
	clients := h.clients[c.channel]
	delete(clients, c)
	if len(clients) == 0 {
		delete(h.clients, c.channel)
	}
	close(c.send)
	metrics.WSClients.Dec()
}

// Deliver queues data for every client subscribed to channel.
func (h *Hub) Deliver(channel string, data []byte) {
	select {
	case h.broadcast <- message{channel: channel, data: data}:
	case <-h.done:
	}
}

// Serve upgrades the request and subscribes the connection to channel.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, channel string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &Client{
		id:      uuid.NewString(),
		channel: channel,
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
	}
	select {
	case h.register <- c:
	case <-h.done:
		return conn.Close()
	}

	go c.writePump()
	go c.readPump()
	return nil
}

type Client struct {
	id      string
	channel string
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
}

// readPump only watches for the peer going away and answers pongs.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.L().Debug("unexpected websocket close", zap.String("clientID", c.id), zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
