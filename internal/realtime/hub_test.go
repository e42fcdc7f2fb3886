// Corkboard - Collaborative Kanban Board Server
// Copyright 2026 Corkboard contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/corkboard/corkboard

package realtime

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corkboard/corkboard/internal/config"
	"github.com/corkboard/corkboard/internal/locks"
	"github.com/corkboard/corkboard/internal/logging"
	"github.com/corkboard/corkboard/internal/models"
)

const (
	testWriteTimeout = time.Second
	testPongTimeout  = time.Second
)

//nolint:gochecknoinits // init ensures quiet logging for tests
func init() {
	logging.Init(logging.Config{Level: "error", Output: io.Discard})
}

func testRealtimeConfig() config.RealtimeConfig {
	return config.RealtimeConfig{
		MaxMessageSize: 4096,
		WriteTimeout:   testWriteTimeout,
		PongTimeout:    testPongTimeout,
		SendBufferSize: 8,
	}
}

// setupHub starts a hub with its own lock table and stops it on cleanup.
func setupHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(locks.NewTable(), testRealtimeConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	time.Sleep(10 * time.Millisecond)
	return hub
}

// connect registers a pump-less client directly with the run loop.
func connect(t *testing.T, hub *Hub, userID int64, username string, boardID int64) *Client {
	t.Helper()
	c := newClient(hub, nil, userID, username, boardID)
	hub.register <- c
	time.Sleep(20 * time.Millisecond)
	return c
}

// sendMessage pushes an inbound frame as if the client's read pump parsed it.
func sendMessage(hub *Hub, c *Client, msgType, resourceType string, resourceID int64) {
	hub.inbound <- inboundFrame{
		client: c,
		msg: models.ClientMessage{
			Type:    msgType,
			Payload: models.LockPayload{ResourceType: resourceType, ResourceID: resourceID},
		},
	}
}

// receive waits for the next event queued to a client.
func receive(t *testing.T, c *Client) models.BoardEvent {
	t.Helper()
	select {
	case ev, ok := <-c.send:
		require.True(t, ok, "send channel closed while waiting for event")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return models.BoardEvent{}
	}
}

// expectNoEvent asserts that nothing arrives within a short window.
func expectNoEvent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case ev := <-c.send:
		t.Fatalf("unexpected event %q", ev.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func lockPayload(t *testing.T, ev models.BoardEvent) models.LockPayload {
	t.Helper()
	p, ok := ev.Payload.(models.LockPayload)
	require.True(t, ok, "payload is not a LockPayload")
	return p
}

func TestBroadcastReachesOnlyTheEventsBoard(t *testing.T) {
	hub := setupHub(t)
	a := connect(t, hub, 1, "alice", 10)
	b := connect(t, hub, 2, "bob", 10)
	other := connect(t, hub, 3, "carol", 20)

	hub.BroadcastToBoard(models.NewBoardEvent(models.EventTaskCreated, 10, 1, map[string]interface{}{"id": 7}))

	for _, c := range []*Client{a, b} {
		ev := receive(t, c)
		assert.Equal(t, models.EventTaskCreated, ev.Type)
		assert.Equal(t, int64(10), ev.BoardID)
		assert.Equal(t, int64(1), ev.UserID)
	}
	expectNoEvent(t, other)
}

func TestLockRequestGranted(t *testing.T) {
	hub := setupHub(t)
	a := connect(t, hub, 1, "alice", 10)
	b := connect(t, hub, 2, "bob", 10)

	sendMessage(hub, a, models.MessageLockRequest, "task", 5)

	// Requester gets the unicast verdict first, then the board-wide fact.
	granted := receive(t, a)
	assert.Equal(t, models.EventLockGranted, granted.Type)
	p := lockPayload(t, granted)
	assert.Equal(t, "task", p.ResourceType)
	assert.Equal(t, int64(5), p.ResourceID)
	assert.Equal(t, int64(1), p.UserID)
	assert.Equal(t, "alice", p.Username)

	acquired := receive(t, a)
	assert.Equal(t, models.EventLockAcquired, acquired.Type)

	acquiredAtB := receive(t, b)
	assert.Equal(t, models.EventLockAcquired, acquiredAtB.Type)
	assert.Equal(t, "alice", lockPayload(t, acquiredAtB).Username)

	// The table now holds the lock.
	held, ok := hub.Locks().Get(locks.Key("task", 5))
	require.True(t, ok)
	assert.Equal(t, int64(1), held.UserID)
}

func TestLockRequestDeniedNamesHolder(t *testing.T) {
	hub := setupHub(t)
	a := connect(t, hub, 1, "alice", 10)
	b := connect(t, hub, 2, "bob", 10)

	sendMessage(hub, a, models.MessageLockRequest, "task", 5)
	receive(t, a) // granted
	receive(t, a) // acquired
	receive(t, b) // acquired

	sendMessage(hub, b, models.MessageLockRequest, "task", 5)

	denied := receive(t, b)
	assert.Equal(t, models.EventLockDenied, denied.Type)
	p := lockPayload(t, denied)
	assert.Equal(t, "task", p.ResourceType)
	assert.Equal(t, int64(5), p.ResourceID)
	assert.Equal(t, "alice", p.HeldBy)

	// The denial is unicast; the holder hears nothing.
	expectNoEvent(t, a)
}

func TestLockReleaseBroadcasts(t *testing.T) {
	hub := setupHub(t)
	a := connect(t, hub, 1, "alice", 10)
	b := connect(t, hub, 2, "bob", 10)

	sendMessage(hub, a, models.MessageLockRequest, "column", 3)
	receive(t, a) // granted
	receive(t, a) // acquired
	receive(t, b) // acquired

	sendMessage(hub, a, models.MessageLockRelease, "column", 3)

	released := receive(t, b)
	assert.Equal(t, models.EventLockReleased, released.Type)
	p := lockPayload(t, released)
	assert.Equal(t, "column", p.ResourceType)
	assert.Equal(t, int64(3), p.ResourceID)
	assert.Equal(t, "alice", p.Username)

	_, ok := hub.Locks().Get(locks.Key("column", 3))
	assert.False(t, ok)
}

func TestReleaseOfUnheldLockIsSilent(t *testing.T) {
	hub := setupHub(t)
	a := connect(t, hub, 1, "alice", 10)
	b := connect(t, hub, 2, "bob", 10)

	sendMessage(hub, a, models.MessageLockRequest, "task", 1)
	receive(t, a) // granted
	receive(t, a) // acquired
	receive(t, b) // acquired

	// Bob does not hold task_1; his release must produce no events at all.
	sendMessage(hub, b, models.MessageLockRelease, "task", 1)
	expectNoEvent(t, a)
	expectNoEvent(t, b)

	held, ok := hub.Locks().Get(locks.Key("task", 1))
	require.True(t, ok)
	assert.Equal(t, int64(1), held.UserID)
}

func TestUnknownMessageIgnored(t *testing.T) {
	hub := setupHub(t)
	a := connect(t, hub, 1, "alice", 10)

	hub.inbound <- inboundFrame{client: a, msg: models.ClientMessage{Type: "chat.message"}}
	expectNoEvent(t, a)
	assert.Equal(t, 1, hub.ClientCount(), "unknown messages must not close the connection")
}

func TestDisconnectReleasesHeldLocks(t *testing.T) {
	hub := setupHub(t)
	a := connect(t, hub, 1, "alice", 10)

	sendMessage(hub, a, models.MessageLockRequest, "task", 1)
	sendMessage(hub, a, models.MessageLockRequest, "task", 2)
	receive(t, a) // granted task_1
	receive(t, a) // acquired task_1
	receive(t, a) // granted task_2
	receive(t, a) // acquired task_2

	hub.unregister <- a
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, 0, hub.ClientCount())
	assert.True(t, hub.Locks().TryAcquire(locks.Key("task", 1), 2, "bob"))
	assert.True(t, hub.Locks().TryAcquire(locks.Key("task", 2), 2, "bob"))
}

func TestFrameQueuedAcrossDisconnectIsDropped(t *testing.T) {
	hub := setupHub(t)
	a := connect(t, hub, 1, "alice", 10)
	b := connect(t, hub, 2, "bob", 10)

	// The read pump can park a frame in the inbound queue right before it
	// reports the disconnect. The run loop handles lifecycle ahead of
	// messages, so the unregister lands first and the frame arrives for a
	// connection that is already gone.
	hub.unregister <- a
	sendMessage(hub, a, models.MessageLockRequest, "task", 5)
	time.Sleep(50 * time.Millisecond)

	// The stale request must not acquire a lock for the departed user.
	_, held := hub.Locks().Get(locks.Key("task", 5))
	assert.False(t, held)

	// The run loop survived and still serves the remaining client.
	assert.Equal(t, 1, hub.ClientCount())
	hub.BroadcastToBoard(models.NewBoardEvent(models.EventBoardUpdated, 10, 2, nil))
	ev := receive(t, b)
	assert.Equal(t, models.EventBoardUpdated, ev.Type)
}

func TestStalledClientIsDisconnected(t *testing.T) {
	hub := NewHub(locks.NewTable(), config.RealtimeConfig{
		MaxMessageSize: 4096,
		WriteTimeout:   testWriteTimeout,
		PongTimeout:    testPongTimeout,
		SendBufferSize: 1,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()
	time.Sleep(10 * time.Millisecond)

	_ = connect(t, hub, 1, "alice", 10)

	// Nothing drains the send queue, so the second broadcast overflows it
	// and the hub drops the client.
	hub.BroadcastToBoard(models.NewBoardEvent(models.EventBoardUpdated, 10, 2, nil))
	hub.BroadcastToBoard(models.NewBoardEvent(models.EventBoardUpdated, 10, 2, nil))
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 0, hub.ClientCount())
}

func TestShutdownClosesClients(t *testing.T) {
	hub := NewHub(locks.NewTable(), testRealtimeConfig())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(done)
	}()
	time.Sleep(10 * time.Millisecond)

	a := connect(t, hub, 1, "alice", 10)
	b := connect(t, hub, 2, "bob", 20)

	cancel()
	<-done

	assert.Equal(t, 0, hub.ClientCount())
	for _, c := range []*Client{a, b} {
		select {
		case _, ok := <-c.send:
			assert.False(t, ok, "send channel must be closed after shutdown")
		case <-time.After(time.Second):
			t.Fatal("send channel not closed after shutdown")
		}
	}
}

func TestBroadcastWithNoConnectionsIsNoOp(t *testing.T) {
	hub := setupHub(t)
	hub.BroadcastToBoard(models.NewBoardEvent(models.EventBoardUpdated, 42, 1, nil))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, hub.ClientCount())
}
