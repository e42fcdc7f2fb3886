// Corkboard - Collaborative Kanban Board Server
// Copyright 2026 Corkboard contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/corkboard/corkboard

package api

import (
	"net/http"

	"github.com/corkboard/corkboard/internal/models"
)

// ListColumns returns a board's columns in position order.
func (h *Handler) ListColumns(w http.ResponseWriter, r *http.Request) {
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

	columns, err := h.db.ListColumns(r.Context(), boardID)
	if err != nil {
		respondDatabaseError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, columns)
}

// CreateColumn appends a column at the end of the board.
func (h *Handler) CreateColumn(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	boardID, ok := pathID(w, r, "boardId")
	if !ok {
		return
	}

	var req ColumnRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if _, err := h.db.GetBoard(r.Context(), boardID); err != nil {
		respondDatabaseError(w, err)
		return
	}
	if !h.requireBoardAccess(w, r, claims.UserID, boardID) {
		return
	}

	column, err := h.db.CreateColumn(r.Context(), boardID, req.Title)
	if err != nil {
		respondDatabaseError(w, err)
		return
	}

	h.hub.BroadcastToBoard(models.NewBoardEvent(models.EventColumnCreated, boardID, claims.UserID, column))
	respondSuccess(w, http.StatusCreated, column)
}

// GetColumn returns one column.
func (h *Handler) GetColumn(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	columnID, ok := pathID(w, r, "columnId")
	if !ok {
		return
	}

	column, err := h.db.GetColumn(r.Context(), columnID)
	if err != nil {
		respondDatabaseError(w, err)
		return
	}
	if !h.requireBoardAccess(w, r, claims.UserID, column.BoardID) {
		return
	}

	respondSuccess(w, http.StatusOK, column)
}

// UpdateColumn renames a column.
func (h *Handler) UpdateColumn(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	columnID, ok := pathID(w, r, "columnId")
	if !ok {
		return
	}

	var req ColumnRequest
	if !decodeBody(w, r, &req) {
		return
	}

	column, err := h.db.GetColumn(r.Context(), columnID)
	if err != nil {
		respondDatabaseError(w, err)
		return
	}
	if !h.requireBoardAccess(w, r, claims.UserID, column.BoardID) {
		return
	}

	column, err = h.db.UpdateColumn(r.Context(), columnID, req.Title)
	if err != nil {
		respondDatabaseError(w, err)
		return
	}

	h.hub.BroadcastToBoard(models.NewBoardEvent(models.EventColumnUpdated, column.BoardID, claims.UserID, column))
	respondSuccess(w, http.StatusOK, column)
}

// DeleteColumn removes a column and its tasks, closing the position gap
// among the remaining columns.
func (h *Handler) DeleteColumn(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	columnID, ok := pathID(w, r, "columnId")
	if !ok {
		return
	}

	column, err := h.db.GetColumn(r.Context(), columnID)
	if err != nil {
		respondDatabaseError(w, err)
		return
	}
	if !h.requireBoardAccess(w, r, claims.UserID, column.BoardID) {
		return
	}

	if err := h.db.DeleteColumn(r.Context(), columnID); err != nil {
		respondDatabaseError(w, err)
		return
	}

	h.hub.BroadcastToBoard(models.NewBoardEvent(models.EventColumnDeleted, column.BoardID, claims.UserID,
		map[string]interface{}{"columnId": columnID}))
	respondSuccess(w, http.StatusOK, map[string]interface{}{"deleted": true})
}
