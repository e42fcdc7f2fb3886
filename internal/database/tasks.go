// Corkboard - Collaborative Kanban Board Server
// Copyright 2026 Corkboard contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/corkboard/corkboard

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/corkboard/corkboard/internal/logging"
	"github.com/corkboard/corkboard/internal/models"
	"github.com/corkboard/corkboard/internal/reorder"
)

// ErrCrossBoardMove is returned when a task move targets a column on a
// different board.
var ErrCrossBoardMove = errors.New("cannot move task to a column on another board")

// ListTasks returns a column's tasks ordered by position.
func (db *DB) ListTasks(ctx context.Context, columnID int64) (tasks []models.Task, err error) {
	start := time.Now()
	defer func() { observe("select", "tasks", start, err) }()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, column_id, title, description, position, created_at, updated_at
		 FROM tasks WHERE column_id = ? ORDER BY position`,
		columnID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tasks = []models.Task{}
	for rows.Next() {
		var t models.Task
		if err = scanTaskFields(rows.Scan, &t); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("task row iteration failed: %w", err)
	}
	return tasks, nil
}

// scanTaskFields scans one task row, handling the nullable description and
// updated_at columns.
func scanTaskFields(scan func(dest ...interface{}) error, t *models.Task) error {
	var description sql.NullString
	var updatedAt sql.NullTime
	if err := scan(&t.ID, &t.ColumnID, &t.Title, &description, &t.Position, &t.CreatedAt, &updatedAt); err != nil {
		return fmt.Errorf("failed to scan task: %w", err)
	}
	if description.Valid {
		t.Description = &description.String
	}
	if updatedAt.Valid {
		t.UpdatedAt = &updatedAt.Time
	}
	return nil
}

// GetTask fetches a single task by id.
func (db *DB) GetTask(ctx context.Context, taskID int64) (task *models.Task, err error) {
	start := time.Now()
	defer func() { observe("select", "tasks", start, err) }()

	task = &models.Task{}
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, column_id, title, description, position, created_at, updated_at
		 FROM tasks WHERE id = ?`, taskID)
	if err = scanTaskFields(row.Scan, task); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %w", ErrNotFound)
		}
		return nil, err
	}
	return task, nil
}

// CreateTask appends a task at the end of its column.
func (db *DB) CreateTask(ctx context.Context, columnID int64, title string, description *string) (task *models.Task, err error) {
	start := time.Now()
	defer func() { observe("insert", "tasks", start, err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackOnError(tx, &err)

	var position int
	if err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE column_id = ?`, columnID).Scan(&position); err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	task = &models.Task{}
	row := tx.QueryRowContext(ctx,
		`INSERT INTO tasks (column_id, title, description, position)
		 VALUES (?, ?, ?, ?)
		 RETURNING id, column_id, title, description, position, created_at, updated_at`,
		columnID, title, description, position)
	if err = scanTaskFields(row.Scan, task); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit task insert: %w", err)
	}
	return task, nil
}

// UpdateTask changes a task's title and description and stamps updated_at.
// Position and column are changed only through MoveTask.
func (db *DB) UpdateTask(ctx context.Context, taskID int64, title string, description *string) (task *models.Task, err error) {
	start := time.Now()
	defer func() { observe("update", "tasks", start, err) }()

	task = &models.Task{}
	row := db.conn.QueryRowContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?
		 RETURNING id, column_id, title, description, position, created_at, updated_at`,
		title, description, taskID)
	if err = scanTaskFields(row.Scan, task); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %w", ErrNotFound)
		}
		return nil, err
	}
	return task, nil
}

// DeleteTask removes a task and closes the position gap among its former
// siblings in one transaction.
func (db *DB) DeleteTask(ctx context.Context, taskID int64) (err error) {
	start := time.Now()
	defer func() { observe("delete", "tasks", start, err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackOnError(tx, &err)

	var columnID int64
	err = tx.QueryRowContext(ctx, `SELECT column_id FROM tasks WHERE id = ?`, taskID).Scan(&columnID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("task %w", ErrNotFound)
		}
		return fmt.Errorf("failed to load task: %w", err)
	}

	siblings, err := taskItems(ctx, tx, columnID)
	if err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	for _, u := range reorder.PlanRemoval(columnID, siblings, taskID) {
		if _, err = tx.ExecContext(ctx,
			`UPDATE tasks SET position = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			u.Position, u.ID); err != nil {
			return fmt.Errorf("failed to compact task positions: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit task delete: %w", err)
	}
	return nil
}

// MoveTask relocates a task to targetColumnID at newPosition, shifting the
// affected siblings in both columns. The sibling reads, the computed shift
// batch, and the moved row's write all happen inside one transaction, so a
// concurrent move never observes a partially shifted column.
func (db *DB) MoveTask(ctx context.Context, taskID, targetColumnID int64, newPosition int) (task *models.Task, err error) {
	start := time.Now()
	defer func() { observe("move", "tasks", start, err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackOnError(tx, &err)

	var sourceColumnID int64
	err = tx.QueryRowContext(ctx, `SELECT column_id FROM tasks WHERE id = ?`, taskID).Scan(&sourceColumnID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load task: %w", err)
	}

	var sourceBoardID, targetBoardID int64
	if err = tx.QueryRowContext(ctx, `SELECT board_id FROM columns WHERE id = ?`, sourceColumnID).Scan(&sourceBoardID); err != nil {
		return nil, fmt.Errorf("failed to load source column: %w", err)
	}
	err = tx.QueryRowContext(ctx, `SELECT board_id FROM columns WHERE id = ?`, targetColumnID).Scan(&targetBoardID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("target column %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load target column: %w", err)
	}
	if sourceBoardID != targetBoardID {
		return nil, ErrCrossBoardMove
	}

	sourceSiblings, err := taskItems(ctx, tx, sourceColumnID)
	if err != nil {
		return nil, err
	}
	var targetSiblings []reorder.Item
	if targetColumnID != sourceColumnID {
		if targetSiblings, err = taskItems(ctx, tx, targetColumnID); err != nil {
			return nil, err
		}
	}

	// Clamp the requested position to the valid index range so the dense
	// 0..count-1 invariant holds whatever the client sends. Same-column
	// moves top out at count-1; cross-column moves may append at count.
	maxPos := len(sourceSiblings) - 1
	if targetColumnID != sourceColumnID {
		maxPos = len(targetSiblings)
	}
	if newPosition > maxPos {
		newPosition = maxPos
	}
	if newPosition < 0 {
		newPosition = 0
	}

	plan, err := reorder.PlanMove(sourceSiblings, targetSiblings, reorder.Move{
		ItemID:       taskID,
		SourceParent: sourceColumnID,
		TargetParent: targetColumnID,
		NewPosition:  newPosition,
	})
	if err != nil {
		return nil, err
	}

	for _, u := range plan {
		if _, err = tx.ExecContext(ctx,
			`UPDATE tasks SET column_id = ?, position = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			u.ParentID, u.Position, u.ID); err != nil {
			return nil, fmt.Errorf("failed to apply position update: %w", err)
		}
	}

	task = &models.Task{}
	row := tx.QueryRowContext(ctx,
		`SELECT id, column_id, title, description, position, created_at, updated_at
		 FROM tasks WHERE id = ?`, taskID)
	if err = scanTaskFields(row.Scan, task); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit task move: %w", err)
	}

	logging.Debug().
		Int64("task_id", taskID).
		Int64("source_column", sourceColumnID).
		Int64("target_column", targetColumnID).
		Int("position", task.Position).
		Int("rows_shifted", len(plan)-1).
		Msg("task moved")

	return task, nil
}

// taskItems loads a column's task id/position pairs inside a transaction
// for reorder planning.
func taskItems(ctx context.Context, tx *sql.Tx, columnID int64) ([]reorder.Item, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, position FROM tasks WHERE column_id = ? ORDER BY position`, columnID)
	if err != nil {
		return nil, fmt.Errorf("failed to query task positions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []reorder.Item
	for rows.Next() {
		var it reorder.Item
		if err := rows.Scan(&it.ID, &it.Position); err != nil {
			return nil, fmt.Errorf("failed to scan task position: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("task position iteration failed: %w", err)
	}
	return items, nil
}
