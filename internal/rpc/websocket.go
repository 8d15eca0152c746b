package rpc

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/LeJamon/goswapd/internal/events"
)

const (
	wsReadLimit    = 4 * 1024
	wsPongWait     = 60 * time.Second
	wsPingInterval = 54 * time.Second
	wsWriteWait    = 10 * time.Second

	// StreamSwaps names the notification stream in pushed messages
	StreamSwaps = "swaps"
)

// StreamMessage is the JSON frame pushed to websocket clients
type StreamMessage struct {
	Stream string `json:"stream"`
	events.Event
}

// Hub streams committed notifications to websocket clients. It is an
// events.Sink. Clients may narrow the stream with the swap_id and account
// query parameters.
type Hub struct {
	upgrader   websocket.Upgrader
	queueLimit int
	logger     *slog.Logger

	mu      sync.RWMutex
	clients map[uint64]*wsClient
	nextID  atomic.Uint64
}

type wsClient struct {
	id     uint64
	conn   *websocket.Conn
	filter streamFilter
	send   chan []byte
	done   chan struct{}
	once   sync.Once
}

type streamFilter struct {
	swapID  string
	account string
}

func (f streamFilter) match(ev events.Event) bool {
	if f.swapID != "" && f.swapID != ev.SwapID {
		return false
	}
	if f.account != "" && f.account != ev.Initiator && f.account != ev.Redeemer {
		return false
	}
	return true
}

func (c *wsClient) close() {
	c.once.Do(func() { close(c.done) })
}

// NewHub creates a hub. queueLimit is the number of undelivered messages
// a client may accumulate before it is disconnected.
func NewHub(queueLimit int, logger *slog.Logger) *Hub {
	if queueLimit <= 0 {
		queueLimit = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		queueLimit: queueLimit,
		logger:     logger.With("component", "ws"),
		clients:    make(map[uint64]*wsClient),
	}
}

// ServeHTTP handles WebSocket upgrade requests
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	query := r.URL.Query()
	c := &wsClient{
		id:   h.nextID.Add(1),
		conn: conn,
		filter: streamFilter{
			swapID:  query.Get("swap_id"),
			account: query.Get("account"),
		},
		send: make(chan []byte, h.queueLimit),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "client", c.id, "remote", r.RemoteAddr)

	go h.writeLoop(c)
	h.readLoop(c)
}

// readLoop drains client frames so control messages are processed. The
// stream is push only; data frames are ignored.
func (h *Hub) readLoop(c *wsClient) {
	defer h.remove(c)

	c.conn.SetReadLimit(wsReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read failed", "client", c.id, "error", err)
			}
			return
		}
	}
}

func (h *Hub) writeLoop(c *wsClient) {
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(wsWriteWait))
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.logger.Debug("websocket send failed", "client", c.id, "error", err)
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}

func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()
	c.close()
	h.logger.Debug("websocket client disconnected", "client", c.id)
}

// Publish queues ev for every matching client. A client whose queue is
// full is disconnected rather than blocking the ledger.
func (h *Hub) Publish(_ context.Context, ev events.Event) error {
	data, err := json.Marshal(StreamMessage{Stream: StreamSwaps, Event: ev})
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if !c.filter.match(ev) {
			continue
		}
		select {
		case c.send <- data:
		default:
			h.logger.Warn("websocket client too slow, dropping", "client", c.id)
			c.close()
		}
	}
	return nil
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.close()
	}
}
