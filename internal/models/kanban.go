// Corkboard - Collaborative Kanban Board Server
// Copyright 2026 Corkboard contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/corkboard/corkboard

package models

import "time"

// User represents an account with local credentials.
// PasswordHash is a bcrypt hash and is never serialized.
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

// Board is the top-level collaborative container. It is owned by one user
// and optionally shared with members.
type Board struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"userId"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`

	// Columns is populated by board reads, ordered by position.
	Columns []Column `json:"columns,omitempty"`
}

// BoardMember records a user's membership in a shared board.
type BoardMember struct {
	ID       int64     `json:"id"`
	BoardID  int64     `json:"boardId"`
	UserID   int64     `json:"userId"`
	Username string    `json:"username,omitempty"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Column is an ordered sub-container of a board. Position is the zero-based
// dense rank among the board's columns.
type Column struct {
	ID        int64      `json:"id"`
	BoardID   int64      `json:"boardId"`
	Title     string     `json:"title"`
	Position  int        `json:"position"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`

	// Tasks is populated by column reads, ordered by position.
	Tasks []Task `json:"tasks,omitempty"`
}

// Task is a positioned work item within a column. Position is the zero-based
// dense rank among the column's tasks: for any column the positions of its
// tasks are exactly {0..count-1} between completed reorder operations.
type Task struct {
	ID          int64      `json:"id"`
	ColumnID    int64      `json:"columnId"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Position    int        `json:"position"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// ResourceLock represents advisory exclusive editing rights over one
// resource. Locks are in-memory only and expire automatically; they are a
// UI coordination hint, not a storage-level guarantee.
type ResourceLock struct {
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the lock's expiry is strictly before now.
func (l ResourceLock) Expired(now time.Time) bool {
	return l.ExpiresAt.Before(now)
}
