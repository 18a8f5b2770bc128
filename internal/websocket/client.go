// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

package websocket

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/ghostmap/internal/logging"
	"github.com/tomtom215/ghostmap/internal/metrics"
	"github.com/tomtom215/ghostmap/internal/models"
	"github.com/tomtom215/ghostmap/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	id   models.ConnectionID
	hub  *Hub
	conn *websocket.Conn

	// send carries encoded frames. Only the hub writes to or closes it.
	send chan []byte
	done chan struct{}
	once sync.Once
}

// NewClient creates a Client with a fresh connection id.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   uuid.NewString(),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, hub.sendBuffer),
		done: make(chan struct{}),
	}
}

// ID returns the connection id.
func (c *Client) ID() models.ConnectionID {
	return c.id
}

// close releases both pumps. Called by the hub when the client is removed.
func (c *Client) close() {
	c.once.Do(func() {
		close(c.send)
		close(c.done)
	})
}

// readPump decodes frames from the connection and queues them on the hub.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.Unregister <- c:
		case <-c.done:
		}
		_ = c.conn.Close() // best-effort cleanup
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Str("conn_id", c.id).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				logging.Warn().Err(err).Str("conn_id", c.id).Msg("unexpected websocket close error")
				metrics.WSErrors.WithLabelValues("read").Inc()
			}
			return
		}
		metrics.WSMessagesReceived.Inc()

		in, err := protocol.Decode(frame)
		if err != nil {
			logging.Warn().Err(err).Str("conn_id", c.id).Msg("dropping undecodable frame")
			metrics.RecordCommand("unknown", "malformed")
			continue
		}

		select {
		case c.hub.commands <- command{client: c, in: in}:
		case <-c.done:
			return
		}
	}
}

// writePump writes queued frames and keepalive pings to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // best-effort cleanup
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Str("conn_id", c.id).Msg("failed to set write deadline")
				return
			}

			if !ok {
				// The hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				logging.Debug().Err(err).Str("conn_id", c.id).Msg("failed to write frame")
				metrics.WSErrors.WithLabelValues("write").Inc()
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Str("conn_id", c.id).Msg("failed to set write deadline for ping")
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start begins reading and writing for the client.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
