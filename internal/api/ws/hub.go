// Package ws serves the live status feed over websocket.
//
// Every connected client first receives the latest snapshot, then one
// message per status change. Messages are JSON text frames shaped as
// {"type": "status", "ts": ..., "data": {...}}. Clients that cannot keep up
// are disconnected rather than slowing the station down.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/oshokin/cstation/internal/domain/station"
)

// MessageTypeStatus is the envelope type of status messages.
const MessageTypeStatus = "status"

const (
	sendBuffer      = 16
	broadcastBuffer = 64

	writeWait  = 5 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 20 * time.Second
)

// envelope is the wire format of every message.
type envelope struct {
	Type string         `json:"type"`
	Ts   time.Time      `json:"ts"`
	Data map[string]any `json:"data"`
}

// Hub fans status snapshots out to websocket clients.
type Hub struct {
	log *zap.SugaredLogger

	broadcast chan []byte
	upgrader  websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	last    []byte
}

// NewHub creates a hub. Run must be started for broadcasts to flow.
func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		log:       log,
		broadcast: make(chan []byte, broadcastBuffer),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Run delivers broadcasts until ctx is canceled, then drops every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()

			return
		case msg := <-h.broadcast:
			var slow []*client

			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					slow = append(slow, c)
				}
			}
			h.mu.Unlock()

			for _, c := range slow {
				h.remove(c, "slow client")
			}
		}
	}
}

// PublishStatus queues a snapshot for every client. It never blocks.
func (h *Hub) PublishStatus(s station.Snapshot) error {
	msg, err := json.Marshal(envelope{
		Type: MessageTypeStatus,
		Ts:   s.At.UTC(),
		Data: s.Fields(),
	})
	if err != nil {
		return fmt.Errorf("marshal status message: %w", err)
	}

	h.mu.Lock()
	h.last = msg
	h.mu.Unlock()

	select {
	case h.broadcast <- msg:
	default:
		h.log.Warnw("ws broadcast queue full, dropping message", "bytes", len(msg))
	}

	return nil
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients)
}

// ServeHTTP upgrades the request and streams status messages.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnw("ws upgrade failed", "error", err)

		return
	}

	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		addr: r.RemoteAddr,
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.send <- h.last
	}
	n := len(h.clients)
	h.mu.Unlock()

	h.log.Infow("ws client connected", "remote_addr", c.addr, "clients", n)

	go c.writePump()
	go c.readPump()
}

func (h *Hub) remove(c *client, reason string) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()

	if ok {
		h.log.Infow("ws client disconnected", "remote_addr", c.addr, "reason", reason, "clients", n)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

// client is one websocket connection. Only the hub closes send.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	addr string
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})

				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.logExit("write", err)

				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logExit("ping", err)

				return
			}
		}
	}
}

// readPump discards inbound frames and unregisters the client on error.
func (c *client) readPump() {
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			c.logExit("read", err)
			c.hub.remove(c, "read error")

			return
		}
	}
}

func (c *client) logExit(op string, err error) {
	if errors.Is(err, websocket.ErrCloseSent) {
		return
	}

	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		c.hub.log.Debugw("ws "+op+" closed", "remote_addr", c.addr, "code", ce.Code, "reason", ce.Text)

		return
	}

	c.hub.log.Debugw("ws "+op+" failed", "remote_addr", c.addr, "error", err)
}
