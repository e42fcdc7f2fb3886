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

	"github.com/corkboard/corkboard/internal/metrics"
	"github.com/corkboard/corkboard/internal/models"
)

// observe records one query for the database metrics.
func observe(operation, table string, start time.Time, err error) {
	metrics.RecordDBQuery(operation, table, time.Since(start), err)
}

// CreateUser inserts a new account. Returns ErrDuplicate when the email or
// username is already taken.
func (db *DB) CreateUser(ctx context.Context, email, username, passwordHash string) (user *models.User, err error) {
	start := time.Now()
	defer func() { observe("insert", "users", start, err) }()

	var taken int
	err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ? OR username = ?`,
		email, username).Scan(&taken)
	if err != nil {
		return nil, fmt.Errorf("failed to check user uniqueness: %w", err)
	}
	if taken > 0 {
		return nil, fmt.Errorf("user with that email or username %w", ErrDuplicate)
	}

	user = &models.User{}
	err = db.conn.QueryRowContext(ctx,
		`INSERT INTO users (email, username, password_hash)
		 VALUES (?, ?, ?)
		 RETURNING id, email, username, password_hash, created_at`,
		email, username, passwordHash).
		Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return user, nil
}

// scanUser scans one user row including the nullable updated_at.
func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var updatedAt sql.NullTime
	err := row.Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.CreatedAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	if updatedAt.Valid {
		user.UpdatedAt = &updatedAt.Time
	}
	return user, nil
}

// GetUserByEmail fetches the account for a login attempt.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (user *models.User, err error) {
	start := time.Now()
	defer func() { observe("select", "users", start, err) }()

	row := db.conn.QueryRowContext(ctx,
		`SELECT id, email, username, password_hash, created_at, updated_at
		 FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// GetUserByID fetches an account by primary key.
func (db *DB) GetUserByID(ctx context.Context, id int64) (user *models.User, err error) {
	start := time.Now()
	defer func() { observe("select", "users", start, err) }()

	row := db.conn.QueryRowContext(ctx,
		`SELECT id, email, username, password_hash, created_at, updated_at
		 FROM users WHERE id = ?`, id)
	return scanUser(row)
}
