// Corkboard - Collaborative Kanban Board Server
// Copyright 2026 Corkboard contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/corkboard/corkboard

package realtime

import (
	"context"

	"github.com/gorilla/websocket"

	"github.com/corkboard/corkboard/internal/config"
	"github.com/corkboard/corkboard/internal/locks"
	"github.com/corkboard/corkboard/internal/logging"
	"github.com/corkboard/corkboard/internal/metrics"
	"github.com/corkboard/corkboard/internal/models"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal graceful shutdown path
	// (e.g. SIGTERM propagated through the supervisor).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was
	// exceeded, which may mean a hung operation during shutdown.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// inboundFrame pairs a client-originated message with its connection so the
// run loop knows who asked.
type inboundFrame struct {
	client *Client
	msg    models.ClientMessage
}

// Hub is the realtime coordinator. It owns the connection registry and the
// advisory lock table, and serializes all registry mutation, inbound lock
// messages, and broadcast fan-out through a single run loop.
type Hub struct {
	cfg      config.RealtimeConfig
	registry *Registry
	locks    *locks.Table

	register   chan *Client
	unregister chan *Client
	inbound    chan inboundFrame
	broadcast  chan models.BoardEvent
}

// NewHub creates a hub around an advisory lock table. The hub does not run
// until RunWithContext is called.
func NewHub(table *locks.Table, cfg config.RealtimeConfig) *Hub {
	return &Hub{
		cfg:        cfg,
		registry:   NewRegistry(),
		locks:      table,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inboundFrame, 256),
		broadcast:  make(chan models.BoardEvent, 256),
	}
}

// Locks exposes the advisory lock table the hub coordinates. REST handlers
// consult it for lock-state queries.
func (h *Hub) Locks() *locks.Table {
	return h.locks
}

// ClientCount returns the number of registered connections.
func (h *Hub) ClientCount() int {
	return h.registry.Count()
}

// String identifies the hub in supervisor logs.
func (h *Hub) String() string {
	return "realtime-hub"
}

// Attach wraps an upgraded connection in a Client, registers it, and starts
// its pumps. Called by the HTTP handler after a successful handshake.
func (h *Hub) Attach(conn *websocket.Conn, userID int64, username string, boardID int64) *Client {
	c := newClient(h, conn, userID, username, boardID)
	h.register <- c
	c.start()
	return c
}

// BroadcastToBoard queues an event for fan-out to every connection scoped
// to the event's board. Non-blocking: if the hub's queue is full the event
// is dropped with a warning, since clients reconcile by re-fetching board
// state.
func (h *Hub) BroadcastToBoard(event models.BoardEvent) {
	select {
	case h.broadcast <- event:
	default:
		logging.Warn().
			Str("event_type", event.Type).
			Int64("board_id", event.BoardID).
			Msg("broadcast channel full, dropping event")
	}
}

// Serve implements suture.Service.
func (h *Hub) Serve(ctx context.Context) error {
	return h.RunWithContext(ctx)
}

// RunWithContext runs the hub until the context is canceled, then closes
// every client and returns ctx.Err().
//
// Uses priority-based selection so behavior is predictable when multiple
// channels are ready: shutdown first, then client lifecycle, then inbound
// messages and broadcasts. Go's select picks randomly among ready cases;
// the staged non-blocking checks impose a deterministic order.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		// Priority 1: shutdown (non-blocking check)
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		// Priority 2: client lifecycle (non-blocking check)
		select {
		case c := <-h.register:
			h.handleRegister(c)
			continue
		case c := <-h.unregister:
			h.handleUnregister(c)
			continue
		default:
		}

		// Priority 3: messages, or block until anything arrives
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case c := <-h.register:
			h.handleRegister(c)
		case c := <-h.unregister:
			h.handleUnregister(c)
		case frame := <-h.inbound:
			h.handleMessage(frame.client, frame.msg)
		case event := <-h.broadcast:
			h.broadcastToBoard(event)
		}
	}
}

func (h *Hub) handleRegister(c *Client) {
	h.registry.Register(c)
	metrics.TrackRealtimeConnection(true)
	logging.Info().
		Str("conn_id", c.id).
		Int64("user_id", c.userID).
		Int64("board_id", c.boardID).
		Int("total_clients", h.registry.Count()).
		Msg("realtime client connected")
}

// handleUnregister tears down a connection: the user's advisory locks are
// released first, then the connection leaves the registry. Clients holding
// locks on the same board observe them disappear on their next interaction.
func (h *Hub) handleUnregister(c *Client) {
	if removed := h.registry.Unregister(c.id); removed == nil {
		return
	}
	c.closeSend()
	h.locks.ReleaseAll(c.userID)
	metrics.TrackRealtimeConnection(false)
	logging.Info().
		Str("conn_id", c.id).
		Int64("user_id", c.userID).
		Int64("board_id", c.boardID).
		Int("total_clients", h.registry.Count()).
		Msg("realtime client disconnected")
}

// handleMessage dispatches one inbound client frame. Errors never close the
// connection; malformed or unknown messages are logged and dropped.
func (h *Hub) handleMessage(c *Client, msg models.ClientMessage) {
	// A frame can sit in the inbound queue while the unregister for the
	// same connection is handled first. The user's locks are already
	// released at that point, so the stale frame is dropped.
	if c.closed.Load() {
		logging.Debug().
			Str("conn_id", c.id).
			Str("type", msg.Type).
			Msg("dropping frame from disconnected client")
		return
	}

	switch msg.Type {
	case models.MessageLockRequest:
		h.handleLockRequest(c, msg.Payload)
	case models.MessageLockRelease:
		h.handleLockRelease(c, msg.Payload)
	default:
		logging.Debug().
			Str("conn_id", c.id).
			Str("type", msg.Type).
			Msg("ignoring unknown realtime message")
	}
}

// handleLockRequest resolves a lock.request: the requester always gets a
// unicast verdict (lock.granted or lock.denied), and on success the rest of
// the board learns about the new holder via lock.acquired.
func (h *Hub) handleLockRequest(c *Client, p models.LockPayload) {
	key := locks.Key(p.ResourceType, p.ResourceID)

	if h.locks.TryAcquire(key, c.userID, c.username) {
		granted := models.LockPayload{
			ResourceType: p.ResourceType,
			ResourceID:   p.ResourceID,
			UserID:       c.userID,
			Username:     c.username,
		}
		h.unicast(c, models.NewBoardEvent(models.EventLockGranted, c.boardID, c.userID, granted))
		h.broadcastToBoard(models.NewBoardEvent(models.EventLockAcquired, c.boardID, c.userID, granted))
		return
	}

	denied := models.LockPayload{
		ResourceType: p.ResourceType,
		ResourceID:   p.ResourceID,
	}
	if holder, ok := h.locks.Get(key); ok {
		denied.HeldBy = holder.Username
	}
	h.unicast(c, models.NewBoardEvent(models.EventLockDenied, c.boardID, c.userID, denied))
}

// handleLockRelease resolves a lock.release. Releasing a lock you do not
// hold is a silent no-op for the caller.
func (h *Hub) handleLockRelease(c *Client, p models.LockPayload) {
	key := locks.Key(p.ResourceType, p.ResourceID)
	if !h.locks.Release(key, c.userID) {
		return
	}

	released := models.LockPayload{
		ResourceType: p.ResourceType,
		ResourceID:   p.ResourceID,
		UserID:       c.userID,
		Username:     c.username,
	}
	h.broadcastToBoard(models.NewBoardEvent(models.EventLockReleased, c.boardID, c.userID, released))
}

// unicast delivers an event to a single connection.
func (h *Hub) unicast(c *Client, event models.BoardEvent) {
	if !c.enqueue(event) {
		metrics.BroadcastSendFailures.Inc()
		logging.Warn().
			Str("conn_id", c.id).
			Str("event_type", event.Type).
			Msg("client send queue full, dropping unicast")
	}
}

// broadcastToBoard fans an event out to every connection on its board.
// Delivery per connection is independent: a full queue disconnects that
// client but never blocks or fails the rest of the broadcast.
func (h *Hub) broadcastToBoard(event models.BoardEvent) {
	clients := h.registry.ConnectionsForBoard(event.BoardID)
	metrics.RecordBroadcast(event.Type)

	var stalled []*Client
	for _, c := range clients {
		if !c.enqueue(event) {
			metrics.BroadcastSendFailures.Inc()
			stalled = append(stalled, c)
		}
	}

	// A client that cannot drain its queue is dead weight; drop it the
	// same way a read error would.
	for _, c := range stalled {
		logging.Warn().
			Str("conn_id", c.id).
			Int64("board_id", c.boardID).
			Msg("client send queue full, disconnecting")
		h.handleUnregister(c)
	}
}

// shutdown closes every client and logs the reason. Context cancellation is
// expected behavior during graceful shutdown, so it is not logged as an
// error.
func (h *Hub) shutdown(ctx context.Context) {
	clients := h.registry.all()
	for _, c := range clients {
		if h.registry.Unregister(c.id) != nil {
			c.closeSend()
			metrics.TrackRealtimeConnection(false)
		}
	}

	logging.Info().
		Str("component", "realtime-hub").
		Str("reason", string(shutdownReason(ctx))).
		Int("clients_closed", len(clients)).
		Msg("realtime hub stopped")
}

// shutdownReason maps the context error to a stable label for logs.
func shutdownReason(ctx context.Context) ShutdownReason {
	if ctx.Err() == context.DeadlineExceeded {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}
