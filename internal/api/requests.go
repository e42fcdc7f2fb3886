// Corkboard - Collaborative Kanban Board Server
// Copyright 2026 Corkboard contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/corkboard/corkboard

package api

import (
	"time"

	"github.com/corkboard/corkboard/internal/models"
)

// RegisterRequest creates a new account. Password length is capped at 72
// bytes, the bcrypt input limit.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest authenticates against stored credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// BoardRequest creates or renames a board.
type BoardRequest struct {
	Title string `json:"title" validate:"required,min=1,max=200"`
}

// MemberRequest adds or removes a board member.
type MemberRequest struct {
	UserID int64 `json:"userId" validate:"required,gt=0"`
}

// ColumnRequest creates or renames a column.
type ColumnRequest struct {
	Title string `json:"title" validate:"required,min=1,max=200"`
}

// TaskRequest creates or updates a task. Description is optional and
// cleared when omitted on update.
type TaskRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// MoveTaskRequest relocates a task to a position within a column of the
// same board. Position is clamped server-side to the valid range.
type MoveTaskRequest struct {
	ColumnID int64 `json:"columnId" validate:"required,gt=0"`
	Position int   `json:"position" validate:"gte=0"`
}
