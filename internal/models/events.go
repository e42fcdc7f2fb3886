// Corkboard - Collaborative Kanban Board Server
// Copyright 2026 Corkboard contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/corkboard/corkboard

package models

import "time"

// Board event types delivered over the realtime connection. The wire
// contract uses camelCase field names and dotted type tags.
const (
	EventBoardUpdated  = "board.updated"
	EventColumnCreated = "column.created"
	EventColumnUpdated = "column.updated"
	EventColumnDeleted = "column.deleted"
	EventTaskCreated   = "task.created"
	EventTaskUpdated   = "task.updated"
	EventTaskMoved     = "task.moved"
	EventTaskDeleted   = "task.deleted"
	EventMemberJoined  = "member.joined"
	EventMemberLeft    = "member.left"
	EventLockGranted   = "lock.granted"
	EventLockDenied    = "lock.denied"
	EventLockAcquired  = "lock.acquired"
	EventLockReleased  = "lock.released"
)

// Inbound realtime message types sent by clients.
const (
	MessageLockRequest = "lock.request"
	MessageLockRelease = "lock.release"
)

// ClientMessage is the frame shape for client-originated realtime messages
// (lock.request, lock.release). Unknown types are ignored by the hub.
type ClientMessage struct {
	Type    string      `json:"type"`
	Payload LockPayload `json:"payload"`
}

// BoardEvent is an ephemeral notification describing a state change on a
// board. Events are never persisted; delivery is best-effort to the
// connections currently registered for the board.
type BoardEvent struct {
	Type      string      `json:"type"`
	BoardID   int64       `json:"boardId"`
	Payload   interface{} `json:"payload"`
	UserID    int64       `json:"userId"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewBoardEvent builds a BoardEvent stamped with the current time.
func NewBoardEvent(eventType string, boardID, userID int64, payload interface{}) BoardEvent {
	return BoardEvent{
		Type:      eventType,
		BoardID:   boardID,
		Payload:   payload,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	}
}

// LockPayload carries lock state in lock.* events. HeldBy is populated on
// lock.denied with the current holder's display name.
type LockPayload struct {
	ResourceType string `json:"resourceType"`
	ResourceID   int64  `json:"resourceId"`
	UserID       int64  `json:"userId,omitempty"`
	Username     string `json:"username,omitempty"`
	HeldBy       string `json:"heldBy,omitempty"`
}

// MemberPayload carries membership changes in member.* events.
type MemberPayload struct {
	BoardID  int64  `json:"boardId"`
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}
