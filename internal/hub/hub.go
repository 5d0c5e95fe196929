// internal/hub/hub.go
package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/ip-licensing-portal/internal/services"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	// Pings go out before the peer's read deadline can lapse.
	pingPeriod = pongWait * 9 / 10
)

// TableMessage is pushed to admin views whenever the request table changes.
type TableMessage struct {
	Type string                `json:"type"`
	Rows []services.RequestRow `json:"rows"`
}

// Hub fans table snapshots out to connected admin views. Slow clients miss
// messages instead of blocking publishers.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	bc      chan []byte

	pongWait   time.Duration
	pingPeriod time.Duration
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func New() *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		bc:         make(chan []byte, 64),
		pongWait:   pongWait,
		pingPeriod: pingPeriod,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-h.bc:
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Publish implements services.ChangeNotifier.
func (h *Hub) Publish(rows []services.RequestRow) {
	msg, err := EncodeTable(rows)
	if err != nil {
		logrus.WithError(err).Error("Failed to encode request table")
		return
	}

	select {
	case h.bc <- msg:
	default:
		logrus.Warn("Request table broadcast dropped")
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func EncodeTable(rows []services.RequestRow) ([]byte, error) {
	if rows == nil {
		rows = []services.RequestRow{}
	}
	return json.Marshal(TableMessage{Type: "requests", Rows: rows})
}

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// ServeWS upgrades the connection, sends snapshot first and then every
// published table until the client goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, snapshot []byte) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Error("WS upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 16)}
	if snapshot != nil {
		c.send <- snapshot
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)

	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		close(c.send)
		h.mu.Unlock()
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(h.pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(h.pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump is the only writer on c.conn. It keeps idle connections alive
// with pings and exits once c.send is closed or a write fails.
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if c.conn.WriteMessage(websocket.TextMessage, msg) != nil {
				c.conn.Close()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if c.conn.WriteMessage(websocket.PingMessage, nil) != nil {
				c.conn.Close()
				return
			}
		}
	}
}
