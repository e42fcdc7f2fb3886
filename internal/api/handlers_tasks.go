// Corkboard - Collaborative Kanban Board Server
// Copyright 2026 Corkboard contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/corkboard/corkboard

package api

import (
	"net/http"

	"github.com/corkboard/corkboard/internal/models"
)

// taskBoard resolves the board a task lives on and checks access. Returns
// the task, its board id, and whether the caller may proceed.
func (h *Handler) taskBoard(w http.ResponseWriter, r *http.Request, userID, taskID int64) (*models.Task, int64, bool) {
	task, err := h.db.GetTask(r.Context(), taskID)
	if err != nil {
		respondDatabaseError(w, err)
		return nil, 0, false
	}

	column, err := h.db.GetColumn(r.Context(), task.ColumnID)
	if err != nil {
		respondDatabaseError(w, err)
		return nil, 0, false
	}
	if !h.requireBoardAccess(w, r, userID, column.BoardID) {
		return nil, 0, false
	}

	return task, column.BoardID, true
}

// ListTasks returns a column's tasks in position order.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
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

	tasks, err := h.db.ListTasks(r.Context(), columnID)
	if err != nil {
		respondDatabaseError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, tasks)
}

// CreateTask appends a task at the end of the column.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	columnID, ok := pathID(w, r, "columnId")
	if !ok {
		return
	}

	var req TaskRequest
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

	task, err := h.db.CreateTask(r.Context(), columnID, req.Title, req.Description)
	if err != nil {
		respondDatabaseError(w, err)
		return
	}

	h.hub.BroadcastToBoard(models.NewBoardEvent(models.EventTaskCreated, column.BoardID, claims.UserID, task))
	respondSuccess(w, http.StatusCreated, task)
}

// GetTask returns one task.
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	taskID, ok := pathID(w, r, "taskId")
	if !ok {
		return
	}

	task, _, ok := h.taskBoard(w, r, claims.UserID, taskID)
	if !ok {
		return
	}

	respondSuccess(w, http.StatusOK, task)
}

// UpdateTask changes a task's title and description. Position is only ever
// changed through MoveTask.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	taskID, ok := pathID(w, r, "taskId")
	if !ok {
		return
	}

	var req TaskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	_, boardID, ok := h.taskBoard(w, r, claims.UserID, taskID)
	if !ok {
		return
	}

	task, err := h.db.UpdateTask(r.Context(), taskID, req.Title, req.Description)
	if err != nil {
		respondDatabaseError(w, err)
		return
	}

	h.hub.BroadcastToBoard(models.NewBoardEvent(models.EventTaskUpdated, boardID, claims.UserID, task))
	respondSuccess(w, http.StatusOK, task)
}

// DeleteTask removes a task, closing the position gap in its column.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	taskID, ok := pathID(w, r, "taskId")
	if !ok {
		return
	}

	task, boardID, ok := h.taskBoard(w, r, claims.UserID, taskID)
	if !ok {
		return
	}

	if err := h.db.DeleteTask(r.Context(), taskID); err != nil {
		respondDatabaseError(w, err)
		return
	}

	h.hub.BroadcastToBoard(models.NewBoardEvent(models.EventTaskDeleted, boardID, claims.UserID,
		map[string]interface{}{"taskId": taskID, "columnId": task.ColumnID}))
	respondSuccess(w, http.StatusOK, map[string]interface{}{"deleted": true})
}

// MoveTask relocates a task within its column or to another column of the
// same board. The response and the task.moved broadcast both carry the
// task as stored after the move; clients re-fetch the board if they need
// the full shifted ordering.
func (h *Handler) MoveTask(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	taskID, ok := pathID(w, r, "taskId")
	if !ok {
		return
	}

	var req MoveTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	_, boardID, ok := h.taskBoard(w, r, claims.UserID, taskID)
	if !ok {
		return
	}

	task, err := h.db.MoveTask(r.Context(), taskID, req.ColumnID, req.Position)
	if err != nil {
		respondDatabaseError(w, err)
		return
	}

	h.hub.BroadcastToBoard(models.NewBoardEvent(models.EventTaskMoved, boardID, claims.UserID, task))
	respondSuccess(w, http.StatusOK, task)
}
