package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jwpark/polytemp/internal/metrics"
)

const (
	wsWriteWait  = 2 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// hub fans dashboard frames out to the connected websocket clients.
// All client bookkeeping happens on the run goroutine.
type hub struct {
	logger     *slog.Logger
	register   chan *wsClient
	unregister chan *wsClient
	broadcast  chan []byte
	clients    map[*wsClient]struct{}
	count      atomic.Int64
}

func newHub(logger *slog.Logger) *hub {
	return &hub{
		logger:     logger,
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		broadcast:  make(chan []byte, 16),
		clients:    make(map[*wsClient]struct{}),
	}
}

func (h *hub) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.updateCount()

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow consumer: drop it rather than stall the hub.
					h.logger.Debug("dropping slow websocket client")
					h.drop(c)
				}
			}
		}
	}
}

func (h *hub) drop(c *wsClient) {
	delete(h.clients, c)
	close(c.send)
	h.updateCount()
}

func (h *hub) updateCount() {
	n := int64(len(h.clients))
	h.count.Store(n)
	metrics.WSClients.Set(float64(n))
}

func (h *hub) clientCount() int {
	return int(h.count.Load())
}

// send queues a frame for broadcast, dropping it when the hub is
// backed up. The push loop supplies a fresh frame on the next tick.
func (h *hub) send(msg []byte) {
	select {
	case h.broadcast <- msg:
	default:
	}
}

type wsClient struct {
	hub  *hub
	conn *websocket.Conn
	send chan []byte
}

// readPump discards inbound frames; the feed is push-only. It keeps
// the pong deadline fresh and unregisters the client on any error.
func (c *wsClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		default:
			// Hub gone or busy; the broadcast path prunes leftovers.
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	client := &wsClient{hub: s.hub, conn: conn, send: make(chan []byte, 16)}
	s.hub.register <- client

	// Seed the connection so a new dashboard does not wait out a full
	// push interval.
	if payload, err := json.Marshal(s.buildDashboard()); err == nil {
		select {
		case client.send <- payload:
		default:
		}
	}

	go client.writePump()
	go client.readPump()
}
