// Corkboard - Collaborative Kanban Board Server
// Copyright 2026 Corkboard contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/corkboard/corkboard

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createSchema creates sequences, tables, and indexes. All DDL is
// idempotent so reopening an existing database file is a no-op.
func (db *DB) createSchema() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range schemaQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute schema statement: %s: %w", query, err)
		}
	}

	return nil
}

// schemaQueries returns the DDL statements in dependency order. DuckDB has
// no AUTO_INCREMENT; ids come from explicit sequences.
func schemaQueries() []string {
	return []string{
		`CREATE SEQUENCE IF NOT EXISTS seq_user_id START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_board_id START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_member_id START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_column_id START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_task_id START 1`,

		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_user_id'),
			email TEXT NOT NULL UNIQUE,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS boards (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_board_id'),
			user_id BIGINT NOT NULL,
			title TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS board_members (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_member_id'),
			board_id BIGINT NOT NULL,
			user_id BIGINT NOT NULL,
			joined_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (board_id, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS columns (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_column_id'),
			board_id BIGINT NOT NULL,
			title TEXT NOT NULL,
			position INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS tasks (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_task_id'),
			column_id BIGINT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			position INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_boards_user ON boards(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_members_board ON board_members(board_id)`,
		`CREATE INDEX IF NOT EXISTS idx_members_user ON board_members(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_columns_board ON columns(board_id, position)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_column ON tasks(column_id, position)`,
	}
}
