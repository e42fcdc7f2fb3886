// Corkboard - Collaborative Kanban Board Server
// Copyright 2026 Corkboard contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/corkboard/corkboard

package database

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corkboard/corkboard/internal/config"
	"github.com/corkboard/corkboard/internal/logging"
	"github.com/corkboard/corkboard/internal/models"
)

//nolint:gochecknoinits // init ensures quiet logging for tests
func init() {
	logging.Init(logging.Config{Level: "error", Output: io.Discard})
}

// newTestDB opens an in-memory DuckDB with the full schema.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "256MB",
		Threads:   2,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func mustUser(t *testing.T, db *DB, email, username string) *models.User {
	t.Helper()
	user, err := db.CreateUser(context.Background(), email, username, "$2a$10$hash")
	require.NoError(t, err)
	return user
}

func mustBoard(t *testing.T, db *DB, userID int64, title string) *models.Board {
	t.Helper()
	board, err := db.CreateBoard(context.Background(), userID, title)
	require.NoError(t, err)
	return board
}

func mustColumn(t *testing.T, db *DB, boardID int64, title string) *models.Column {
	t.Helper()
	column, err := db.CreateColumn(context.Background(), boardID, title)
	require.NoError(t, err)
	return column
}

func mustTask(t *testing.T, db *DB, columnID int64, title string) *models.Task {
	t.Helper()
	task, err := db.CreateTask(context.Background(), columnID, title, nil)
	require.NoError(t, err)
	return task
}

// taskOrder returns a column's task ids in position order, asserting the
// positions are exactly {0..count-1}.
func taskOrder(t *testing.T, db *DB, columnID int64) []int64 {
	t.Helper()
	tasks, err := db.ListTasks(context.Background(), columnID)
	require.NoError(t, err)

	ids := make([]int64, len(tasks))
	for i, task := range tasks {
		require.Equal(t, i, task.Position, "positions must stay dense")
		ids[i] = task.ID
	}
	return ids
}

func TestPing(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Ping(context.Background()))
}

func TestCreateUserAndLookup(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := mustUser(t, db, "alice@example.com", "alice")
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.False(t, user.CreatedAt.IsZero())

	byEmail, err := db.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, "$2a$10$hash", byEmail.PasswordHash)

	byID, err := db.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byID.Email)
}

func TestCreateUserDuplicate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	mustUser(t, db, "alice@example.com", "alice")

	_, err := db.CreateUser(ctx, "alice@example.com", "alice2", "h")
	assert.ErrorIs(t, err, ErrDuplicate, "duplicate email must be rejected")

	_, err = db.CreateUser(ctx, "other@example.com", "alice", "h")
	assert.ErrorIs(t, err, ErrDuplicate, "duplicate username must be rejected")
}

func TestGetUserNotFound(t *testing.T) {
	db := newTestDB(t)
	_, err := db.GetUserByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = db.GetUserByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBoardCRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := mustUser(t, db, "alice@example.com", "alice")

	board := mustBoard(t, db, owner.ID, "Roadmap")
	assert.Equal(t, owner.ID, board.UserID)
	assert.Nil(t, board.UpdatedAt)

	updated, err := db.UpdateBoard(ctx, board.ID, "Roadmap 2026")
	require.NoError(t, err)
	assert.Equal(t, "Roadmap 2026", updated.Title)
	assert.NotNil(t, updated.UpdatedAt)

	fetched, err := db.GetBoard(ctx, board.ID)
	require.NoError(t, err)
	assert.Equal(t, "Roadmap 2026", fetched.Title)
	assert.Empty(t, fetched.Columns)

	require.NoError(t, db.DeleteBoard(ctx, board.ID))
	_, err = db.GetBoard(ctx, board.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, db.DeleteBoard(ctx, board.ID), ErrNotFound)
}

func TestDeleteBoardCascades(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := mustUser(t, db, "alice@example.com", "alice")
	member := mustUser(t, db, "bob@example.com", "bob")
	board := mustBoard(t, db, owner.ID, "Roadmap")
	column := mustColumn(t, db, board.ID, "Todo")
	task := mustTask(t, db, column.ID, "Ship it")
	_, err := db.AddMember(ctx, board.ID, member.ID)
	require.NoError(t, err)

	require.NoError(t, db.DeleteBoard(ctx, board.ID))

	_, err = db.GetColumn(ctx, column.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = db.GetTask(ctx, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	members, err := db.ListMembers(ctx, board.ID)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestListBoardsForUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := mustUser(t, db, "alice@example.com", "alice")
	bob := mustUser(t, db, "bob@example.com", "bob")

	owned := mustBoard(t, db, alice.ID, "Mine")
	shared := mustBoard(t, db, bob.ID, "Shared")
	mustBoard(t, db, bob.ID, "Private")
	_, err := db.AddMember(ctx, shared.ID, alice.ID)
	require.NoError(t, err)

	boards, err := db.ListBoardsForUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, boards, 2)

	ids := []int64{boards[0].ID, boards[1].ID}
	assert.Contains(t, ids, owned.ID)
	assert.Contains(t, ids, shared.ID)
}

func TestBoardAccess(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := mustUser(t, db, "alice@example.com", "alice")
	guest := mustUser(t, db, "bob@example.com", "bob")
	board := mustBoard(t, db, owner.ID, "Roadmap")

	ok, err := db.UserHasAccessToBoard(ctx, owner.ID, board.ID)
	require.NoError(t, err)
	assert.True(t, ok, "owner always has access")

	ok, err = db.UserHasAccessToBoard(ctx, guest.ID, board.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = db.AddMember(ctx, board.ID, guest.ID)
	require.NoError(t, err)
	ok, err = db.UserHasAccessToBoard(ctx, guest.ID, board.ID)
	require.NoError(t, err)
	assert.True(t, ok, "members have access")

	isOwner, err := db.IsBoardOwner(ctx, guest.ID, board.ID)
	require.NoError(t, err)
	assert.False(t, isOwner, "membership does not confer ownership")

	require.NoError(t, db.RemoveMember(ctx, board.ID, guest.ID))
	ok, err = db.UserHasAccessToBoard(ctx, guest.ID, board.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMembers(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := mustUser(t, db, "alice@example.com", "alice")
	bob := mustUser(t, db, "bob@example.com", "bob")
	board := mustBoard(t, db, owner.ID, "Roadmap")

	member, err := db.AddMember(ctx, board.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, member.UserID)

	_, err = db.AddMember(ctx, board.ID, bob.ID)
	assert.ErrorIs(t, err, ErrDuplicate)

	members, err := db.ListMembers(ctx, board.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "bob", members[0].Username)

	require.NoError(t, db.RemoveMember(ctx, board.ID, bob.ID))
	assert.ErrorIs(t, db.RemoveMember(ctx, board.ID, bob.ID), ErrNotFound)
}

func TestColumnsAppendAndCompact(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := mustUser(t, db, "alice@example.com", "alice")
	board := mustBoard(t, db, owner.ID, "Roadmap")

	todo := mustColumn(t, db, board.ID, "Todo")
	doing := mustColumn(t, db, board.ID, "Doing")
	done := mustColumn(t, db, board.ID, "Done")
	assert.Equal(t, 0, todo.Position)
	assert.Equal(t, 1, doing.Position)
	assert.Equal(t, 2, done.Position)

	orphan := mustTask(t, db, doing.ID, "In flight")

	// Deleting the middle column compacts the survivors and removes its
	// tasks.
	require.NoError(t, db.DeleteColumn(ctx, doing.ID))

	columns, err := db.ListColumns(ctx, board.ID)
	require.NoError(t, err)
	require.Len(t, columns, 2)
	assert.Equal(t, todo.ID, columns[0].ID)
	assert.Equal(t, 0, columns[0].Position)
	assert.Equal(t, done.ID, columns[1].ID)
	assert.Equal(t, 1, columns[1].Position)

	_, err = db.GetTask(ctx, orphan.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, db.DeleteColumn(ctx, doing.ID), ErrNotFound)
}

func TestUpdateColumn(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := mustUser(t, db, "alice@example.com", "alice")
	board := mustBoard(t, db, owner.ID, "Roadmap")
	column := mustColumn(t, db, board.ID, "Todo")

	updated, err := db.UpdateColumn(ctx, column.ID, "Backlog")
	require.NoError(t, err)
	assert.Equal(t, "Backlog", updated.Title)
	assert.NotNil(t, updated.UpdatedAt)

	_, err = db.UpdateColumn(ctx, 404, "Nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTaskCRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := mustUser(t, db, "alice@example.com", "alice")
	board := mustBoard(t, db, owner.ID, "Roadmap")
	column := mustColumn(t, db, board.ID, "Todo")

	desc := "write the docs"
	task, err := db.CreateTask(ctx, column.ID, "Docs", &desc)
	require.NoError(t, err)
	assert.Equal(t, 0, task.Position)
	require.NotNil(t, task.Description)
	assert.Equal(t, desc, *task.Description)

	second := mustTask(t, db, column.ID, "Tests")
	assert.Equal(t, 1, second.Position)

	updated, err := db.UpdateTask(ctx, task.ID, "Docs v2", nil)
	require.NoError(t, err)
	assert.Equal(t, "Docs v2", updated.Title)
	assert.Nil(t, updated.Description)
	assert.NotNil(t, updated.UpdatedAt)
	assert.Equal(t, 0, updated.Position, "update must not disturb position")

	require.NoError(t, db.DeleteTask(ctx, task.ID))
	assert.Equal(t, []int64{second.ID}, taskOrder(t, db, column.ID))

	assert.ErrorIs(t, db.DeleteTask(ctx, task.ID), ErrNotFound)
}

func TestMoveTaskWithinColumn(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := mustUser(t, db, "alice@example.com", "alice")
	board := mustBoard(t, db, owner.ID, "Roadmap")
	column := mustColumn(t, db, board.ID, "Todo")

	a := mustTask(t, db, column.ID, "A")
	b := mustTask(t, db, column.ID, "B")
	c := mustTask(t, db, column.ID, "C")

	// Move the head to the tail: A,B,C -> B,C,A.
	moved, err := db.MoveTask(ctx, a.ID, column.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, moved.Position)
	assert.NotNil(t, moved.UpdatedAt)
	assert.Equal(t, []int64{b.ID, c.ID, a.ID}, taskOrder(t, db, column.ID))

	// Move it back to the front: B,C,A -> A,B,C.
	_, err = db.MoveTask(ctx, a.ID, column.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, b.ID, c.ID}, taskOrder(t, db, column.ID))

	// Moving to the current position is a no-op.
	_, err = db.MoveTask(ctx, b.ID, column.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, b.ID, c.ID}, taskOrder(t, db, column.ID))
}

func TestMoveTaskAcrossColumns(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := mustUser(t, db, "alice@example.com", "alice")
	board := mustBoard(t, db, owner.ID, "Roadmap")
	todo := mustColumn(t, db, board.ID, "Todo")
	doing := mustColumn(t, db, board.ID, "Doing")

	a := mustTask(t, db, todo.ID, "A")
	b := mustTask(t, db, todo.ID, "B")
	c := mustTask(t, db, todo.ID, "C")
	x := mustTask(t, db, doing.ID, "X")
	y := mustTask(t, db, doing.ID, "Y")

	// Insert B between X and Y; the source column closes its gap.
	moved, err := db.MoveTask(ctx, b.ID, doing.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, doing.ID, moved.ColumnID)
	assert.Equal(t, 1, moved.Position)

	assert.Equal(t, []int64{a.ID, c.ID}, taskOrder(t, db, todo.ID))
	assert.Equal(t, []int64{x.ID, b.ID, y.ID}, taskOrder(t, db, doing.ID))
}

func TestMoveTaskToEmptyColumn(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := mustUser(t, db, "alice@example.com", "alice")
	board := mustBoard(t, db, owner.ID, "Roadmap")
	todo := mustColumn(t, db, board.ID, "Todo")
	empty := mustColumn(t, db, board.ID, "Done")

	a := mustTask(t, db, todo.ID, "A")

	moved, err := db.MoveTask(ctx, a.ID, empty.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, empty.ID, moved.ColumnID)
	assert.Equal(t, 0, moved.Position)
	assert.Empty(t, taskOrder(t, db, todo.ID))
}

func TestMoveTaskErrors(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := mustUser(t, db, "alice@example.com", "alice")
	board := mustBoard(t, db, owner.ID, "Roadmap")
	otherBoard := mustBoard(t, db, owner.ID, "Elsewhere")
	column := mustColumn(t, db, board.ID, "Todo")
	foreign := mustColumn(t, db, otherBoard.ID, "Inbox")
	task := mustTask(t, db, column.ID, "A")

	_, err := db.MoveTask(ctx, 404, column.ID, 0)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = db.MoveTask(ctx, task.ID, 404, 0)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = db.MoveTask(ctx, task.ID, foreign.ID, 0)
	assert.ErrorIs(t, err, ErrCrossBoardMove)

	// Failed moves leave the column untouched.
	assert.Equal(t, []int64{task.ID}, taskOrder(t, db, column.ID))
}

func TestGetBoardNested(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := mustUser(t, db, "alice@example.com", "alice")
	board := mustBoard(t, db, owner.ID, "Roadmap")
	todo := mustColumn(t, db, board.ID, "Todo")
	doing := mustColumn(t, db, board.ID, "Doing")
	a := mustTask(t, db, todo.ID, "A")
	b := mustTask(t, db, todo.ID, "B")
	x := mustTask(t, db, doing.ID, "X")

	fetched, err := db.GetBoard(ctx, board.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Columns, 2)
	assert.Equal(t, todo.ID, fetched.Columns[0].ID)
	assert.Equal(t, doing.ID, fetched.Columns[1].ID)

	require.Len(t, fetched.Columns[0].Tasks, 2)
	assert.Equal(t, a.ID, fetched.Columns[0].Tasks[0].ID)
	assert.Equal(t, b.ID, fetched.Columns[0].Tasks[1].ID)
	require.Len(t, fetched.Columns[1].Tasks, 1)
	assert.Equal(t, x.ID, fetched.Columns[1].Tasks[0].ID)
}
