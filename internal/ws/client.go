package ws

import (
	"encoding/json"
	"time"

	"taskmanager/internal/domain"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
	sendBuffer = 256
)

type Client struct {
	UserID   string
	MineOnly bool
	Conn     *websocket.Conn
	Send     chan []byte

	hub *Hub
	log *zap.Logger
}

func NewClient(id domain.Identity, mineOnly bool, conn *websocket.Conn, hub *Hub, log *zap.Logger) *Client {
	return &Client{
		UserID:   id.UserID,
		MineOnly: mineOnly,
		Conn:     conn,
		Send:     make(chan []byte, sendBuffer),
		hub:      hub,
		log:      log,
	}
}

// wants reports whether ev should be delivered to this client.
func (c *Client) wants(ev domain.Event) bool {
	if !c.MineOnly {
		return true
	}
	switch {
	case ev.Task != nil && ev.Task.User != nil:
		return ev.Task.User.ID == c.UserID
	case ev.UserID != "":
		return ev.UserID == c.UserID
	default:
		return false
	}
}

// Run registers the client and blocks until the connection is closed.
func (c *Client) Run() {
	c.hub.Register(c)

	c.reply(ReadyPayload{Type: MsgReady, UserID: c.UserID, MineOnly: c.MineOnly})

	go c.writePump()
	c.readPump()
}

//read
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(4096)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("ws read error", zap.String("user_id", c.UserID), zap.Error(err))
			}
			return
		}

		var msg InboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.reply(ErrorPayload{Type: MsgError, Message: "invalid message"})
			continue
		}
		switch msg.Type {
		case MsgPing:
			c.reply(map[string]string{"type": MsgPong})
		default:
			c.reply(ErrorPayload{Type: MsgError, Message: "unknown message type"})
		}
	}
}

//write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Debug("ws write error", zap.String("user_id", c.UserID), zap.Error(err))
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// reply queues a direct response; dropped if the buffer is full or the
// client is no longer registered.
func (c *Client) reply(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}

	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if _, ok := c.hub.clients[c]; !ok {
		return
	}
	select {
	case c.Send <- b:
	default:
	}
}
