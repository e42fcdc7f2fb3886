// Corkboard - Collaborative Kanban Board Server
// Copyright 2026 Corkboard contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/corkboard/corkboard

// Package reorder computes the minimal position shifts needed to keep an
// ordered sibling list dense when an item moves, is inserted, or is removed.
//
// Siblings sharing a parent (tasks in a column, columns on a board) hold a
// zero-based contiguous position: the multiset of positions is always
// {0..count-1}. PlanMove and PlanRemoval are pure functions from the current
// sibling lists to a batch of {id, parent, position} updates; the storage
// layer applies the batch in a single transaction so concurrent readers
// never observe a partially shifted list.
//
// The engine does not validate bounds. Callers supply positions derived from
// trusted storage state; a target position at or beyond the sibling count
// behaves as an append.
package reorder

import (
	"errors"
	"fmt"
)

// ErrItemNotFound is returned when the moved item is not among the supplied
// source siblings.
var ErrItemNotFound = errors.New("reorder: item not found among source siblings")

// Item is one ordered sibling as currently stored.
type Item struct {
	ID       int64
	Position int
}

// Update assigns an item a new parent and position. Every item named in a
// plan has changed and must be written (with a fresh modification
// timestamp) by the caller.
type Update struct {
	ID       int64
	ParentID int64
	Position int
}

// Move describes relocating one item to a target parent and position. The
// target position is the insertion index in the target sibling list as it
// will read after the move completes.
type Move struct {
	ItemID       int64
	SourceParent int64
	TargetParent int64
	NewPosition  int
}

// PlanMove computes the updates for a same-parent or cross-parent move.
//
// sourceSiblings must be the complete current sibling list of the source
// parent, including the moved item. For a cross-parent move targetSiblings
// must be the complete current list of the target parent; for a same-parent
// move it is ignored. Order of the input slices does not matter.
//
// A same-parent move to the item's current position returns an empty plan.
func PlanMove(sourceSiblings, targetSiblings []Item, mv Move) ([]Update, error) {
	oldPos, found := positionOf(sourceSiblings, mv.ItemID)
	if !found {
		return nil, fmt.Errorf("%w: item %d in parent %d", ErrItemNotFound, mv.ItemID, mv.SourceParent)
	}

	if mv.SourceParent == mv.TargetParent {
		return planSameParent(sourceSiblings, mv, oldPos), nil
	}
	return planCrossParent(sourceSiblings, targetSiblings, mv, oldPos), nil
}

// planSameParent shifts the band of siblings between the old and new
// positions by one, then places the moved item.
func planSameParent(siblings []Item, mv Move, oldPos int) []Update {
	newPos := mv.NewPosition
	if newPos == oldPos {
		return nil
	}

	var updates []Update
	for _, s := range siblings {
		if s.ID == mv.ItemID {
			continue
		}
		switch {
		case newPos < oldPos && s.Position >= newPos && s.Position < oldPos:
			// Moving earlier: the band [newPos, oldPos) slides down one slot.
			updates = append(updates, Update{ID: s.ID, ParentID: mv.TargetParent, Position: s.Position + 1})
		case newPos > oldPos && s.Position > oldPos && s.Position <= newPos:
			// Moving later: the band (oldPos, newPos] slides up one slot.
			updates = append(updates, Update{ID: s.ID, ParentID: mv.TargetParent, Position: s.Position - 1})
		}
	}

	return append(updates, Update{ID: mv.ItemID, ParentID: mv.TargetParent, Position: newPos})
}

// planCrossParent closes the gap in the source parent and opens a slot in
// the target parent.
func planCrossParent(sourceSiblings, targetSiblings []Item, mv Move, oldPos int) []Update {
	var updates []Update

	for _, s := range sourceSiblings {
		if s.ID == mv.ItemID {
			continue
		}
		if s.Position > oldPos {
			updates = append(updates, Update{ID: s.ID, ParentID: mv.SourceParent, Position: s.Position - 1})
		}
	}

	for _, s := range targetSiblings {
		if s.Position >= mv.NewPosition {
			updates = append(updates, Update{ID: s.ID, ParentID: mv.TargetParent, Position: s.Position + 1})
		}
	}

	return append(updates, Update{ID: mv.ItemID, ParentID: mv.TargetParent, Position: mv.NewPosition})
}

// PlanRemoval computes the updates that close the gap left by removing one
// item from its sibling list. The removed item itself is not part of the
// plan. Removing an unknown id yields an empty plan.
func PlanRemoval(parentID int64, siblings []Item, removedID int64) []Update {
	removedPos, found := positionOf(siblings, removedID)
	if !found {
		return nil
	}

	var updates []Update
	for _, s := range siblings {
		if s.ID == removedID {
			continue
		}
		if s.Position > removedPos {
			updates = append(updates, Update{ID: s.ID, ParentID: parentID, Position: s.Position - 1})
		}
	}
	return updates
}

func positionOf(siblings []Item, id int64) (int, bool) {
	for _, s := range siblings {
		if s.ID == id {
			return s.Position, true
		}
	}
	return 0, false
}
