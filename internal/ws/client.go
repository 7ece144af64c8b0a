package ws

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// sendBuffer is the per-client outbound queue. A client that falls this
	// far behind is treated as dead.
	sendBuffer = 256
)

var errClientGone = errors.New("client connection closed or lagging")

// Client is one live websocket connection, bound to a single room for its
// lifetime. Outbound messages go through a buffered channel drained by the
// write pump; the hub never touches the socket directly.
type Client struct {
	roomID string
	conn   *websocket.Conn

	mu   sync.RWMutex
	send chan []byte
}

func newClient(roomID string, conn *websocket.Conn) *Client {
	return &Client{
		roomID: roomID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}
}

// Deliver enqueues a payload for the client. It fails when the client has
// been closed or its send buffer is full; either way the caller should treat
// the connection as dead.
func (c *Client) Deliver(payload []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.send == nil {
		return errClientGone
	}

	select {
	case c.send <- payload:
		return nil
	default:
		return errClientGone
	}
}

// Close shuts down the client's send channel, which ends the write pump and
// closes the underlying connection. Safe to call more than once, including
// concurrently with Deliver.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.send != nil {
		close(c.send)
		c.send = nil
	}
}

// writePump pumps messages from the send channel to the websocket connection.
// One writePump runs per client; it also keeps the connection alive with
// pings and closes the socket when the channel is drained.
func (c *Client) writePump() {
	c.mu.RLock()
	send := c.send
	c.mu.RUnlock()

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				slog.Debug("Write to client failed", "room_id", c.roomID, "error", err)
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
