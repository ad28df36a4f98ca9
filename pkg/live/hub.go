// Package live implements the dev server's reload channel. Browsers
// connect over WebSocket; the dev server broadcasts reload and error
// messages when sources recompile.
package live

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// Message is one reload-channel frame.
type Message struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// Hub tracks connected browsers and fans messages out to all of them.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]bool
}

type client struct {
	conn *websocket.Conn
	send chan Message
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// dev-only server, same machine
				return true
			},
		},
		clients: map[*client]bool{},
	}
}

// ClientCount returns the number of connected browsers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the request and services the connection until
// the browser goes away.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("websocket upgrade error:", err)
		return
	}
	c := &client{conn: conn, send: make(chan Message, 8)}

	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	go c.writer()
	c.reader(h)
}

// Broadcast sends one message to every connected browser. Slow clients
// are dropped rather than blocking the build loop.
func (h *Hub) Broadcast(msgType string, data map[string]any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	msg := Message{Type: msgType, Data: data}
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			log.Println("dropping slow reload client")
		}
	}
}

// Reload tells browsers to refresh.
func (h *Hub) Reload() {
	h.Broadcast("RELOAD", nil)
}

// BuildError pushes a compile failure into connected browsers so the
// error shows without switching back to the terminal.
func (h *Hub) BuildError(file, message string) {
	h.Broadcast("BUILD_ERROR", map[string]any{"file": file, "message": message})
}

func (c *client) reader(h *Hub) {
	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		close(c.send)
		c.conn.Close()
	}()
	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket error: %v", err)
			}
			return
		}
		if msg.Type == "HELLO" {
			c.send <- Message{Type: "ACK"}
		}
	}
}

func (c *client) writer() {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
