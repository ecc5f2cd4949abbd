package server

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teranos/cashngo/logger"
)

// WebSocket timeouts, after the gorilla chat example
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Client is one connected view
type Client struct {
	server    *Server
	conn      *websocket.Conn
	send      chan Message
	id        string
	closeOnce sync.Once
	closed    bool // hub goroutine only
}

func newClient(s *Server, conn *websocket.Conn) *Client {
	return &Client{
		server: s,
		conn:   conn,
		send:   make(chan Message, sendBuffer),
		id:     fmt.Sprintf("view-%d", s.clientSeq.Add(1)),
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.closed = true
		close(c.send)
	})
}

// inbound is what a view may send
type inbound struct {
	Type string `json:"type"`
}

// readPump keeps the connection alive and answers resync requests.
// A view that sends {"type":"resync"} gets every snapshot again.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.server.unregister <- c:
		case <-c.server.ctx.Done():
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNoStatusReceived) {
				c.server.log.Warnw("WebSocket read error", logger.FieldClientID, c.id, logger.FieldError, err)
			}
			return
		}

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			c.server.log.Debugw("Ignoring malformed view message", logger.FieldClientID, c.id, logger.FieldError, err)
			continue
		}
		switch msg.Type {
		case "resync":
			select {
			case c.server.register <- c:
			case <-c.server.ctx.Done():
				return
			}
		case "ping":
		default:
			c.server.log.Debugw("Unknown message type", "type", msg.Type, logger.FieldClientID, c.id)
		}
	}
}

// writePump is the only goroutine writing to the connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.server.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.server.log.Debugw("WebSocket write failed", logger.FieldClientID, c.id, logger.FieldError, err)
				return
			}
			if logger.ShouldOutput(c.server.opts.Verbosity, logger.OutputSnapshots) {
				c.server.log.Debugw("Snapshot sent", logger.FieldClientID, c.id, logger.FieldKey, msg.Key, logger.FieldSize, len(msg.Value))
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
