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

	"github.com/corkboard/corkboard/internal/models"
	"github.com/corkboard/corkboard/internal/reorder"
)

// ListColumns returns a board's columns ordered by position, without tasks.
func (db *DB) ListColumns(ctx context.Context, boardID int64) (columns []models.Column, err error) {
	start := time.Now()
	defer func() { observe("select", "columns", start, err) }()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, board_id, title, position, created_at, updated_at
		 FROM columns WHERE board_id = ? ORDER BY position`,
		boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns = []models.Column{}
	for rows.Next() {
		var c models.Column
		var updatedAt sql.NullTime
		if err = rows.Scan(&c.ID, &c.BoardID, &c.Title, &c.Position, &c.CreatedAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		if updatedAt.Valid {
			c.UpdatedAt = &updatedAt.Time
		}
		columns = append(columns, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("column row iteration failed: %w", err)
	}
	return columns, nil
}

// GetColumn fetches a single column without its tasks.
func (db *DB) GetColumn(ctx context.Context, columnID int64) (column *models.Column, err error) {
	start := time.Now()
	defer func() { observe("select", "columns", start, err) }()

	column = &models.Column{}
	var updatedAt sql.NullTime
	err = db.conn.QueryRowContext(ctx,
		`SELECT id, board_id, title, position, created_at, updated_at
		 FROM columns WHERE id = ?`, columnID).
		Scan(&column.ID, &column.BoardID, &column.Title, &column.Position, &column.CreatedAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("column %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan column: %w", err)
	}
	if updatedAt.Valid {
		column.UpdatedAt = &updatedAt.Time
	}
	return column, nil
}

// CreateColumn appends a column at the end of the board: its position is the
// current sibling count, preserving the dense 0..count-1 invariant.
func (db *DB) CreateColumn(ctx context.Context, boardID int64, title string) (column *models.Column, err error) {
	start := time.Now()
	defer func() { observe("insert", "columns", start, err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackOnError(tx, &err)

	var position int
	if err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM columns WHERE board_id = ?`, boardID).Scan(&position); err != nil {
		return nil, fmt.Errorf("failed to count columns: %w", err)
	}

	column = &models.Column{}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO columns (board_id, title, position)
		 VALUES (?, ?, ?)
		 RETURNING id, board_id, title, position, created_at`,
		boardID, title, position).
		Scan(&column.ID, &column.BoardID, &column.Title, &column.Position, &column.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert column: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit column insert: %w", err)
	}
	return column, nil
}

// UpdateColumn renames a column and stamps updated_at.
func (db *DB) UpdateColumn(ctx context.Context, columnID int64, title string) (column *models.Column, err error) {
	start := time.Now()
	defer func() { observe("update", "columns", start, err) }()

	column = &models.Column{}
	var updatedAt sql.NullTime
	err = db.conn.QueryRowContext(ctx,
		`UPDATE columns SET title = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?
		 RETURNING id, board_id, title, position, created_at, updated_at`,
		title, columnID).
		Scan(&column.ID, &column.BoardID, &column.Title, &column.Position, &column.CreatedAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("column %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update column: %w", err)
	}
	if updatedAt.Valid {
		column.UpdatedAt = &updatedAt.Time
	}
	return column, nil
}

// DeleteColumn removes a column and its tasks, then closes the position gap
// among the surviving columns, all in one transaction.
func (db *DB) DeleteColumn(ctx context.Context, columnID int64) (err error) {
	start := time.Now()
	defer func() { observe("delete", "columns", start, err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackOnError(tx, &err)

	var boardID int64
	err = tx.QueryRowContext(ctx,
		`SELECT board_id FROM columns WHERE id = ?`, columnID).Scan(&boardID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("column %w", ErrNotFound)
		}
		return fmt.Errorf("failed to load column: %w", err)
	}

	siblings, err := columnItems(ctx, tx, boardID)
	if err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM tasks WHERE column_id = ?`, columnID); err != nil {
		return fmt.Errorf("failed to delete column tasks: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM columns WHERE id = ?`, columnID); err != nil {
		return fmt.Errorf("failed to delete column: %w", err)
	}

	for _, u := range reorder.PlanRemoval(boardID, siblings, columnID) {
		if _, err = tx.ExecContext(ctx,
			`UPDATE columns SET position = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			u.Position, u.ID); err != nil {
			return fmt.Errorf("failed to compact column positions: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit column delete: %w", err)
	}
	return nil
}

// columnItems loads a board's column id/position pairs inside a transaction
// for reorder planning.
func columnItems(ctx context.Context, tx *sql.Tx, boardID int64) ([]reorder.Item, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, position FROM columns WHERE board_id = ? ORDER BY position`, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to query column positions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []reorder.Item
	for rows.Next() {
		var it reorder.Item
		if err := rows.Scan(&it.ID, &it.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column position: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("column position iteration failed: %w", err)
	}
	return items, nil
}
