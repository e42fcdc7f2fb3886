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
)

// CreateBoard inserts a board owned by userID.
func (db *DB) CreateBoard(ctx context.Context, userID int64, title string) (board *models.Board, err error) {
	start := time.Now()
	defer func() { observe("insert", "boards", start, err) }()

	board = &models.Board{}
	err = db.conn.QueryRowContext(ctx,
		`INSERT INTO boards (user_id, title)
		 VALUES (?, ?)
		 RETURNING id, user_id, title, created_at`,
		userID, title).
		Scan(&board.ID, &board.UserID, &board.Title, &board.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert board: %w", err)
	}
	return board, nil
}

// GetBoard fetches a board with its columns and tasks nested, both ordered
// by position. Returns ErrNotFound for an unknown id.
func (db *DB) GetBoard(ctx context.Context, boardID int64) (board *models.Board, err error) {
	start := time.Now()
	defer func() { observe("select", "boards", start, err) }()

	board = &models.Board{}
	var updatedAt sql.NullTime
	err = db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, title, created_at, updated_at FROM boards WHERE id = ?`,
		boardID).
		Scan(&board.ID, &board.UserID, &board.Title, &board.CreatedAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("board %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan board: %w", err)
	}
	if updatedAt.Valid {
		board.UpdatedAt = &updatedAt.Time
	}

	board.Columns, err = db.ListColumns(ctx, boardID)
	if err != nil {
		return nil, err
	}

	for i := range board.Columns {
		board.Columns[i].Tasks, err = db.ListTasks(ctx, board.Columns[i].ID)
		if err != nil {
			return nil, err
		}
	}

	return board, nil
}

// ListBoardsForUser returns every board the user owns or is a member of,
// most recently created first. Columns are not populated.
func (db *DB) ListBoardsForUser(ctx context.Context, userID int64) (boards []models.Board, err error) {
	start := time.Now()
	defer func() { observe("select", "boards", start, err) }()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT b.id, b.user_id, b.title, b.created_at, b.updated_at
		 FROM boards b
		 LEFT JOIN board_members m ON m.board_id = b.id
		 WHERE b.user_id = ? OR m.user_id = ?
		 ORDER BY b.created_at DESC, b.id DESC`,
		userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query boards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	boards = []models.Board{}
	for rows.Next() {
		var b models.Board
		var updatedAt sql.NullTime
		if err = rows.Scan(&b.ID, &b.UserID, &b.Title, &b.CreatedAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan board: %w", err)
		}
		if updatedAt.Valid {
			b.UpdatedAt = &updatedAt.Time
		}
		boards = append(boards, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("board row iteration failed: %w", err)
	}

	return boards, nil
}

// UpdateBoard renames a board and stamps updated_at.
func (db *DB) UpdateBoard(ctx context.Context, boardID int64, title string) (board *models.Board, err error) {
	start := time.Now()
	defer func() { observe("update", "boards", start, err) }()

	board = &models.Board{}
	var updatedAt sql.NullTime
	err = db.conn.QueryRowContext(ctx,
		`UPDATE boards SET title = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?
		 RETURNING id, user_id, title, created_at, updated_at`,
		title, boardID).
		Scan(&board.ID, &board.UserID, &board.Title, &board.CreatedAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("board %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update board: %w", err)
	}
	if updatedAt.Valid {
		board.UpdatedAt = &updatedAt.Time
	}
	return board, nil
}

// DeleteBoard removes a board and everything under it: memberships, columns,
// and tasks, in one transaction.
func (db *DB) DeleteBoard(ctx context.Context, boardID int64) (err error) {
	start := time.Now()
	defer func() { observe("delete", "boards", start, err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackOnError(tx, &err)

	res, err := tx.ExecContext(ctx, `DELETE FROM boards WHERE id = ?`, boardID)
	if err != nil {
		return fmt.Errorf("failed to delete board: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("board %w", ErrNotFound)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM board_members WHERE board_id = ?`, boardID); err != nil {
		return fmt.Errorf("failed to delete board members: %w", err)
	}
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM tasks WHERE column_id IN (SELECT id FROM columns WHERE board_id = ?)`, boardID); err != nil {
		return fmt.Errorf("failed to delete board tasks: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM columns WHERE board_id = ?`, boardID); err != nil {
		return fmt.Errorf("failed to delete board columns: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit board delete: %w", err)
	}
	return nil
}

// UserHasAccessToBoard reports whether the user owns the board or holds a
// membership row. Used to authorize every board-scoped REST operation.
func (db *DB) UserHasAccessToBoard(ctx context.Context, userID, boardID int64) (ok bool, err error) {
	start := time.Now()
	defer func() { observe("select", "board_members", start, err) }()

	var n int
	err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM boards b
		 LEFT JOIN board_members m ON m.board_id = b.id AND m.user_id = ?
		 WHERE b.id = ? AND (b.user_id = ? OR m.user_id IS NOT NULL)`,
		userID, boardID, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check board access: %w", err)
	}
	return n > 0, nil
}

// IsBoardOwner reports whether userID owns boardID. Destructive board
// operations (delete, member management) are owner-only.
func (db *DB) IsBoardOwner(ctx context.Context, userID, boardID int64) (ok bool, err error) {
	start := time.Now()
	defer func() { observe("select", "boards", start, err) }()

	var n int
	err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM boards WHERE id = ? AND user_id = ?`,
		boardID, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check board ownership: %w", err)
	}
	return n > 0, nil
}

// rollbackOnError rolls the transaction back when the surrounding operation
// failed. Safe to call after Commit, where Rollback is a no-op error we
// ignore.
func rollbackOnError(tx *sql.Tx, err *error) {
	if *err == nil {
		return
	}
	if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
		*err = fmt.Errorf("%w (rollback also failed: %v)", *err, rbErr)
	}
}
