package broadcast

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/openbay/auction-service/internal/infrastructure/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Client is one WebSocket subscriber in one room. The hub owns the Send
// channel; the pumps own the connection.
type Client struct {
	ID   string
	Room string
	Conn *websocket.Conn
	Send chan []byte
}

func NewClient(id, room string, conn *websocket.Conn) *Client {
	return &Client{
		ID:   id,
		Room: room,
		Conn: conn,
		Send: make(chan []byte, 256),
	}
}

// WritePump drains Send onto the connection and keeps it alive with pings.
// Runs until the hub closes Send or the write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump consumes (and discards) client frames so pongs and closes are
// processed, unregistering from the hub on disconnect.
func (c *Client) ReadPump(hub *Hub) {
	defer hub.Leave(c)

	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket read failed", map[string]any{"client_id": c.ID, "room": c.Room, "error": err.Error()})
			}
			return
		}
	}
}
