package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
	maxMsgSize = 16 * 1024
)

// Conn wraps a websocket connection with a buffered write pump and a read
// loop that dispatches inbound frames to a handler.
type Conn struct {
	conn   *websocket.Conn
	send   chan []byte
	handle func([]byte)
}

func NewConn(conn *websocket.Conn, handle func([]byte)) *Conn {
	return &Conn{
		conn:   conn,
		send:   make(chan []byte, 256),
		handle: handle,
	}
}

func (c *Conn) SendRaw(b []byte) {
	select {
	case c.send <- b:
	default:
		// slow consumer: drop the connection instead of leaking memory
		_ = c.conn.Close()
	}
}

func (c *Conn) Send(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.SendRaw(b)
}

// Run starts the write pump and blocks on the read loop until the peer goes
// away or the connection errors out.
func (c *Conn) Run() {
	go c.writePump()
	c.readPump()
}

func (c *Conn) Close() {
	_ = c.conn.Close()
}

func (c *Conn) readPump() {
	defer func() {
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if c.handle != nil {
			c.handle(msg)
		}
	}
}

func (c *Conn) writePump() {
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
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
