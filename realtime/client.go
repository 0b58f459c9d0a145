package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Время ожидания записи сообщения
	writeWait = 10 * time.Second

	// Время ожидания pong от клиента
	pongWait = 60 * time.Second

	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 1024 * 16
)

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins; the HTTP layer already authenticated the user.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Command is an inbound websocket frame: a chat action the connected user
// wants executed against their session.
type Command struct {
	Action    string `json:"action"`
	Content   string `json:"content,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	Emoji     string `json:"emoji,omitempty"`
	ReplyToID string `json:"reply_to_message_id,omitempty"`
}

// Client pumps one websocket connection: outbound JSON payloads (snapshot,
// then events) and inbound commands handed to the handler.
type Client struct {
	conn      *websocket.Conn
	UserID    string
	UserName  string
	send      chan interface{}
	onCommand func(Command)

	mu     sync.Mutex
	closed bool
}

func NewClient(conn *websocket.Conn, userID, userName string) *Client {
	return &Client{
		conn:     conn,
		UserID:   userID,
		UserName: userName,
		send:     make(chan interface{}, subscriptionBuffer),
	}
}

// SetCommandHandler registers the inbound dispatch. Must be called before
// ReadPump starts.
func (c *Client) SetCommandHandler(handler func(Command)) {
	c.onCommand = handler
}

// Enqueue queues a payload for delivery. Payloads are dropped when the
// client's buffer is full or the connection is gone.
func (c *Client) Enqueue(payload interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- payload:
	default:
		log.Printf("[WebSocket] send buffer full for user %s, dropping payload", c.UserID)
	}
}

// ReadPump consumes inbound frames until the connection dies. Runs on the
// connection's goroutine; closes the connection on exit.
func (c *Client) ReadPump(onClose func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] recovered in ReadPump: %v", r)
		}
		c.conn.Close()
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
		if onClose != nil {
			onClose()
		}
		log.Printf("[WebSocket] connection closed for user %s", c.UserID)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WebSocket] read error for user %s: %v", c.UserID, err)
			}
			break
		}

		var cmd Command
		if err := json.Unmarshal(raw, &cmd); err != nil {
			log.Printf("[WebSocket] bad command from user %s: %v", c.UserID, err)
			continue
		}
		if cmd.Action == "" {
			continue
		}
		if c.onCommand != nil {
			c.onCommand(cmd)
		}
	}
}

// WritePump streams queued payloads to the connection and keeps it alive
// with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] recovered in WritePump: %v", r)
		}
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteJSON(payload); err != nil {
				log.Printf("[WebSocket] write error for user %s: %v", c.UserID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
