package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"quakeview/internal/logger"
	"quakeview/pkg/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
	sendBuffer = 8
)

// Hub pushes snapshots to connected browsers over websockets.
type Hub struct {
	mu       sync.Mutex
	clients  map[*wsClient]struct{}
	lastSeq  uint64
	upgrader websocket.Upgrader
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*wsClient]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16 * 1024,
		},
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeWS upgrades the request, registers the client and queues the snapshot
// returned by initial. Both happen under the hub lock, so no broadcast can
// slip in between taking the snapshot and registering.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, initial func() *models.Snapshot) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warnf("Websocket upgrade failed: %v", err)
		return
	}
	c := &wsClient{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	if initial != nil {
		if payload, err := json.Marshal(initial()); err == nil {
			c.send <- payload
		}
	}
	h.mu.Unlock()
	logger.Debugf("Websocket client connected: %s", r.RemoteAddr)

	go h.writePump(c)
	go h.readPump(c)
}

// Broadcast sends snap to every client. A snapshot older than one already
// broadcast is dropped. Slow clients are disconnected.
func (h *Hub) Broadcast(snap *models.Snapshot) {
	if snap == nil {
		return
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		logger.Errorf("Failed to marshal snapshot for websocket: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if snap.Seq < h.lastSeq {
		logger.Debugf("Dropping out-of-order snapshot seq=%d (last=%d)", snap.Seq, h.lastSeq)
		return
	}
	h.lastSeq = snap.Seq
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			logger.Warnf("Dropping slow websocket client")
			h.removeLocked(c)
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
	return nil
}

func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *wsClient) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	c.once.Do(func() { close(c.send) })
}

func (h *Hub) writePump(c *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

// readPump only watches for the peer going away; browsers send nothing.
func (h *Hub) readPump(c *wsClient) {
	defer h.remove(c)
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
