package client

import (
	"time"

	"walk-in-service/counter-queue-server/pkg/msg"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer. Boards only send control
	// frames.
	maxMessageSize = 512
)

// Client is a middleman between a display board websocket connection and
// the hub.
type Client struct {
	id string
	ip string

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages. Closed by the hub.
	sendWsMessage chan *msg.WsMessage

	// Send pings to peer with this period.
	pingPeriod time.Duration

	hub *Hub

	logger *zap.SugaredLogger
}

func (h *Hub) NewClient(id string, ip string, conn *websocket.Conn, pingPeriod time.Duration) *Client {
	return &Client{
		id:            id,
		ip:            ip,
		conn:          conn,
		sendWsMessage: make(chan *msg.WsMessage, 64),
		pingPeriod:    pingPeriod,
		hub:           h,
		logger:        h.logger.With("id", id),
	}
}

// Run registers the client and pumps messages until the connection closes.
func (c *Client) Run() {
	c.hub.register <- c

	go c.writePump()
	go c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	// Heartbeat. Close connection if client does not respond to ping
	// for too long.
	pongWait := c.pingPeriod * 5 / 2
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Errorf("read failed %v", err)
			} else {
				c.logger.Debugf("read closing %v", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	pingTicker := time.NewTicker(c.pingPeriod)

	defer func() {
		pingTicker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case wsMessage, ok := <-c.sendWsMessage:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(wsMessage); err != nil {
				c.logger.Errorf("cannot write json to ws conn %v", err)
				return
			}

		case <-pingTicker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Errorf("cannot ping ws conn %v", err)
				return
			}
		}
	}
}
