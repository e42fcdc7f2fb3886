// Corkboard - Collaborative Kanban Board Server
// Copyright 2026 Corkboard contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/corkboard/corkboard

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/corkboard/corkboard/internal/models"
)

// AddMember records userID as a member of boardID. The owner is implicitly
// a member and is never stored here. Returns ErrDuplicate when the
// membership already exists.
func (db *DB) AddMember(ctx context.Context, boardID, userID int64) (member *models.BoardMember, err error) {
	start := time.Now()
	defer func() { observe("insert", "board_members", start, err) }()

	var existing int
	err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM board_members WHERE board_id = ? AND user_id = ?`,
		boardID, userID).Scan(&existing)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("membership %w", ErrDuplicate)
	}

	member = &models.BoardMember{}
	err = db.conn.QueryRowContext(ctx,
		`INSERT INTO board_members (board_id, user_id)
		 VALUES (?, ?)
		 RETURNING id, board_id, user_id, joined_at`,
		boardID, userID).
		Scan(&member.ID, &member.BoardID, &member.UserID, &member.JoinedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert membership: %w", err)
	}
	return member, nil
}

// RemoveMember deletes a membership. Returns ErrNotFound when no such
// membership exists.
func (db *DB) RemoveMember(ctx context.Context, boardID, userID int64) (err error) {
	start := time.Now()
	defer func() { observe("delete", "board_members", start, err) }()

	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM board_members WHERE board_id = ? AND user_id = ?`,
		boardID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("membership %w", ErrNotFound)
	}
	return nil
}

// ListMembers returns a board's members with usernames, oldest first.
func (db *DB) ListMembers(ctx context.Context, boardID int64) (members []models.BoardMember, err error) {
	start := time.Now()
	defer func() { observe("select", "board_members", start, err) }()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT m.id, m.board_id, m.user_id, u.username, m.joined_at
		 FROM board_members m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.board_id = ?
		 ORDER BY m.joined_at, m.id`,
		boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer func() { _ = rows.Close() }()

	members = []models.BoardMember{}
	for rows.Next() {
		var m models.BoardMember
		if err = rows.Scan(&m.ID, &m.BoardID, &m.UserID, &m.Username, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("member row iteration failed: %w", err)
	}
	return members, nil
}
