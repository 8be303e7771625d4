package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/models"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type client struct {
	id    string
	deals map[int64]bool // empty means every deal
	send  chan models.KPIUpdate
}

func (c *client) wants(dealID int64) bool {
	return len(c.deals) == 0 || c.deals[dealID]
}

// Hub pushes KPI updates to WebSocket subscribers
type Hub struct {
	log        *logrus.Logger
	mu         sync.RWMutex
	clients    map[*client]bool
	broadcast  chan models.KPIUpdate
	register   chan *client
	unregister chan *client
	done       chan struct{}
}

// NewHub creates a hub; call Run to start delivering
func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		log:        log,
		clients:    make(map[*client]bool),
		broadcast:  make(chan models.KPIUpdate, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
	}
}

// Run delivers updates until ctx is done, then disconnects every client
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			h.log.Debugf("WebSocket client %s connected", c.id)
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			h.log.Debugf("WebSocket client %s disconnected", c.id)
		case u := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				if !c.wants(u.DealID) {
					continue
				}
				select {
				case c.send <- u:
				default:
					// slow client, disconnect
					delete(h.clients, c)
					close(c.send)
					h.log.Warnf("WebSocket client %s too slow, disconnected", c.id)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues u for delivery. It never blocks.
func (h *Hub) Publish(_ context.Context, u models.KPIUpdate) error {
	select {
	case h.broadcast <- u:
		return nil
	default:
		return ErrDropped
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and subscribes the connection. The optional
// "deals" query parameter is a comma-separated list of deal IDs to follow.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	deals, err := parseDealFilter(r.URL.Query().Get("deals"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorf("WebSocket upgrade error: %v", err)
		return
	}

	c := &client{
		id:    uuid.NewString(),
		deals: deals,
		send:  make(chan models.KPIUpdate, sendBuffer),
	}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writePump(conn, c)
	go h.readPump(conn, c)
}

func parseDealFilter(raw string) (map[int64]bool, error) {
	deals := make(map[int64]bool)
	if raw == "" {
		return deals, nil
	}
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, err
		}
		deals[id] = true
	}
	return deals, nil
}

// readPump only watches for close and pong frames; clients do not send data
func (h *Hub) readPump(conn *websocket.Conn, c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warnf("WebSocket read error: %v", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(conn *websocket.Conn, c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case u, ok := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			data, err := json.Marshal(u)
			if err != nil {
				h.log.Errorf("WebSocket marshal error: %v", err)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
