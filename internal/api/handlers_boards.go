// Corkboard - Collaborative Kanban Board Server
// Copyright 2026 Corkboard contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/corkboard/corkboard

package api

import (
	"net/http"

	"github.com/corkboard/corkboard/internal/models"
)

// requireBoardAccess verifies the user owns or is a member of the board.
// Writes the error response and returns false on failure.
func (h *Handler) requireBoardAccess(w http.ResponseWriter, r *http.Request, userID, boardID int64) bool {
	ok, err := h.db.UserHasAccessToBoard(r.Context(), userID, boardID)
	if err != nil {
		respondDatabaseError(w, err)
		return false
	}
	if !ok {
		respondError(w, http.StatusForbidden, "FORBIDDEN", "You do not have access to this board", nil)
		return false
	}
	return true
}

// requireBoardOwner verifies the user owns the board. Membership is not
// enough for destructive board operations.
func (h *Handler) requireBoardOwner(w http.ResponseWriter, r *http.Request, userID, boardID int64) bool {
	ok, err := h.db.IsBoardOwner(r.Context(), userID, boardID)
	if err != nil {
		respondDatabaseError(w, err)
		return false
	}
	if !ok {
		respondError(w, http.StatusForbidden, "FORBIDDEN", "Only the board owner can do this", nil)
		return false
	}
	return true
}

// ListBoards returns every board the user owns or belongs to.
func (h *Handler) ListBoards(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	boards, err := h.db.ListBoardsForUser(r.Context(), claims.UserID)
	if err != nil {
		respondDatabaseError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, boards)
}

// CreateBoard creates a board owned by the requesting user.
func (h *Handler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	var req BoardRequest
	if !decodeBody(w, r, &req) {
		return
	}

	board, err := h.db.CreateBoard(r.Context(), claims.UserID, req.Title)
	if err != nil {
		respondDatabaseError(w, err)
		return
	}

	respondSuccess(w, http.StatusCreated, board)
}

// GetBoard returns one board with its columns and tasks nested in position
// order.
func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	boardID, ok := pathID(w, r, "boardId")
	if !ok {
		return
	}

	board, err := h.db.GetBoard(r.Context(), boardID)
	if err != nil {
		respondDatabaseError(w, err)
		return
	}
	if !h.requireBoardAccess(w, r, claims.UserID, boardID) {
		return
	}

	respondSuccess(w, http.StatusOK, board)
}

// UpdateBoard renames a board. Owner only.
func (h *Handler) UpdateBoard(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	boardID, ok := pathID(w, r, "boardId")
	if !ok {
		return
	}

	var req BoardRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !h.requireBoardOwner(w, r, claims.UserID, boardID) {
		return
	}

	board, err := h.db.UpdateBoard(r.Context(), boardID, req.Title)
	if err != nil {
		respondDatabaseError(w, err)
		return
	}

	h.hub.BroadcastToBoard(models.NewBoardEvent(models.EventBoardUpdated, boardID, claims.UserID, board))
	respondSuccess(w, http.StatusOK, board)
}

// DeleteBoard removes a board and everything on it. Owner only. Connected
// clients learn via a final board.updated event carrying a deleted marker.
func (h *Handler) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	boardID, ok := pathID(w, r, "boardId")
	if !ok {
		return
	}

	if !h.requireBoardOwner(w, r, claims.UserID, boardID) {
		return
	}

	if err := h.db.DeleteBoard(r.Context(), boardID); err != nil {
		respondDatabaseError(w, err)
		return
	}

	h.hub.BroadcastToBoard(models.NewBoardEvent(models.EventBoardUpdated, boardID, claims.UserID,
		map[string]interface{}{"boardId": boardID, "deleted": true}))
	respondSuccess(w, http.StatusOK, map[string]interface{}{"deleted": true})
}
