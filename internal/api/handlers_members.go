// Corkboard - Collaborative Kanban Board Server
// Copyright 2026 Corkboard contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/corkboard/corkboard

package api

import (
	"errors"
	"net/http"

	"github.com/corkboard/corkboard/internal/database"
	"github.com/corkboard/corkboard/internal/models"
)

// ListMembers returns a board's members with usernames resolved.
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	boardID, ok := pathID(w, r, "boardId")
	if !ok {
		return
	}

	if _, err := h.db.GetBoard(r.Context(), boardID); err != nil {
		respondDatabaseError(w, err)
		return
	}
	if !h.requireBoardAccess(w, r, claims.UserID, boardID) {
		return
	}

	members, err := h.db.ListMembers(r.Context(), boardID)
	if err != nil {
		respondDatabaseError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, members)
}

// AddMember shares a board with another user. Owner only.
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	boardID, ok := pathID(w, r, "boardId")
	if !ok {
		return
	}

	var req MemberRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !h.requireBoardOwner(w, r, claims.UserID, boardID) {
		return
	}

	user, err := h.db.GetUserByID(r.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
			return
		}
		respondDatabaseError(w, err)
		return
	}

	member, err := h.db.AddMember(r.Context(), boardID, user.ID)
	if err != nil {
		respondDatabaseError(w, err)
		return
	}
	member.Username = user.Username

	h.hub.BroadcastToBoard(models.NewBoardEvent(models.EventMemberJoined, boardID, claims.UserID,
		models.MemberPayload{BoardID: boardID, UserID: user.ID, Username: user.Username}))
	respondSuccess(w, http.StatusCreated, member)
}

// RemoveMember revokes a user's membership. Owner only; the owner cannot be
// removed because ownership is not a membership row.
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	boardID, ok := pathID(w, r, "boardId")
	if !ok {
		return
	}

	var req MemberRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !h.requireBoardOwner(w, r, claims.UserID, boardID) {
		return
	}

	if err := h.db.RemoveMember(r.Context(), boardID, req.UserID); err != nil {
		respondDatabaseError(w, err)
		return
	}

	h.hub.BroadcastToBoard(models.NewBoardEvent(models.EventMemberLeft, boardID, claims.UserID,
		models.MemberPayload{BoardID: boardID, UserID: req.UserID}))
	respondSuccess(w, http.StatusOK, map[string]interface{}{"removed": true})
}
