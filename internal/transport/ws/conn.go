package ws

import (
	"sync"
	"time"

	"github.com/Srinivas-559/chat-app/internal/relay"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// wsConn adapts one gorilla connection to relay.Session. The id is unique
// per connection, not per identity, so the registry can distinguish a stale
// disconnect from the connection that replaced it.
type wsConn struct {
	id       string
	username string
	conn     *websocket.Conn
	sendMu   chan struct{} // capacity 1; serializes concurrent writers

	closeOnce sync.Once
	closed    chan struct{}
}

func newConn(c *websocket.Conn, username string) *wsConn {
	return &wsConn{
		id:       uuid.New().String(),
		username: username,
		conn:     c,
		sendMu:   make(chan struct{}, 1),
		closed:   make(chan struct{}),
	}
}

func (c *wsConn) ID() string { return c.id }

func (c *wsConn) Deliver(ev relay.Event) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(ev)
}

func (c *wsConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return c.conn.Close()
}
