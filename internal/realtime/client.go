// Corkboard - Collaborative Kanban Board Server
// Copyright 2026 Corkboard contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/corkboard/corkboard

package realtime

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/corkboard/corkboard/internal/logging"
	"github.com/corkboard/corkboard/internal/models"
)

// clientSeqCounter assigns monotonically increasing sequence numbers so
// broadcast fan-out and shutdown iterate clients in a consistent order
// instead of random map order.
var clientSeqCounter atomic.Uint64

// Client is the middleman between one WebSocket connection and the hub. It
// carries the identity established during the handshake and the single
// board the connection is scoped to.
type Client struct {
	id       string
	seq      uint64
	userID   int64
	username string
	boardID  int64
	hub      *Hub
	conn     *websocket.Conn
	send     chan models.BoardEvent
	closed   atomic.Bool
}

func newClient(hub *Hub, conn *websocket.Conn, userID int64, username string, boardID int64) *Client {
	return &Client{
		id:       uuid.NewString(),
		seq:      clientSeqCounter.Add(1),
		userID:   userID,
		username: username,
		boardID:  boardID,
		hub:      hub,
		conn:     conn,
		send:     make(chan models.BoardEvent, hub.cfg.SendBufferSize),
	}
}

// ID returns the opaque connection id.
func (c *Client) ID() string {
	return c.id
}

// UserID returns the authenticated user behind this connection.
func (c *Client) UserID() int64 {
	return c.userID
}

// BoardID returns the board this connection is scoped to.
func (c *Client) BoardID() int64 {
	return c.boardID
}

// enqueue places an event on the client's outbound queue without blocking.
// Returns false when the client has been unregistered or the queue is full,
// which the hub treats as a dead or hopelessly slow client.
func (c *Client) enqueue(event models.BoardEvent) bool {
	if c.closed.Load() {
		return false
	}
	select {
	case c.send <- event:
		return true
	default:
		return false
	}
}

// closeSend marks the client closed and closes its outbound queue. Only the
// hub run loop calls this; the closed flag keeps later enqueue attempts and
// queued inbound frames away from the closed channel.
func (c *Client) closeSend() {
	if c.closed.CompareAndSwap(false, true) {
		close(c.send)
	}
}

// readPump pumps inbound frames from the connection to the hub. It runs in
// its own goroutine per connection; the connection is torn down when it
// returns.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close() // best-effort cleanup
	}()

	c.conn.SetReadLimit(c.hub.cfg.MaxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.PongTimeout)); err != nil {
		logging.Error().Err(err).Str("conn_id", c.id).Msg("failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.PongTimeout))
	})

	for {
		var msg models.ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Warn().Err(err).Str("conn_id", c.id).Msg("unexpected websocket close")
			}
			break
		}

		c.hub.inbound <- inboundFrame{client: c, msg: msg}
	}
}

// writePump pumps events from the outbound queue to the connection and
// keeps the connection alive with periodic pings.
func (c *Client) writePump() {
	pingPeriod := c.hub.cfg.PongTimeout * 9 / 10
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // best-effort cleanup
	}()

	for {
		select {
		case event, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout)); err != nil {
				logging.Error().Err(err).Str("conn_id", c.id).Msg("failed to set write deadline")
				return
			}

			if !ok {
				// The hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(event); err != nil {
				logging.Error().Err(err).Str("conn_id", c.id).Msg("failed to write event")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout)); err != nil {
				logging.Error().Err(err).Str("conn_id", c.id).Msg("failed to set write deadline for ping")
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// start begins the read and write pumps for an accepted connection.
func (c *Client) start() {
	go c.writePump()
	go c.readPump()
}
