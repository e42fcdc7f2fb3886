// Corkboard - Collaborative Kanban Board Server
// Copyright 2026 Corkboard contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/corkboard/corkboard

// Package locks implements the in-memory advisory lock table used to
// coordinate concurrent edits to board resources.
//
// A lock is held per resource key ("task_5", "column_2") for a fixed 30
// seconds unless released earlier. Expiry is lazy: every operation checks
// the stored expiry against the clock instead of running a background
// sweeper, which is the simplest correct approach for a single-process
// advisory table. Locks are lost on restart by design; they are a UI hint,
// not a storage correctness guarantee.
package locks

import (
	"fmt"
	"sync"
	"time"

	"github.com/corkboard/corkboard/internal/logging"
	"github.com/corkboard/corkboard/internal/metrics"
	"github.com/corkboard/corkboard/internal/models"
)

// Duration is the fixed lifetime of an advisory lock.
const Duration = 30 * time.Second

// Key builds the resource key for a lockable entity.
func Key(resourceType string, resourceID int64) string {
	return fmt.Sprintf("%s_%d", resourceType, resourceID)
}

// Table is a mutex-guarded map from resource key to the live lock. All
// operations are safe for concurrent use; acquisition is an atomic
// check-and-set, so two concurrent TryAcquire calls on the same key can
// never both succeed.
type Table struct {
	mu    sync.Mutex
	locks map[string]models.ResourceLock
	now   func() time.Time
}

// NewTable creates an empty lock table using the wall clock.
func NewTable() *Table {
	return NewTableWithClock(time.Now)
}

// NewTableWithClock creates a lock table with an injectable clock, used by
// tests to exercise expiry without sleeping.
func NewTableWithClock(now func() time.Time) *Table {
	return &Table{
		locks: make(map[string]models.ResourceLock),
		now:   now,
	}
}

// TryAcquire attempts to take the lock for userID. It succeeds when no
// entry exists or the existing entry has expired (which is evicted on this
// call). A live lock denies every caller, including the current holder:
// re-acquisition does not extend the expiry.
func (t *Table) TryAcquire(key string, userID int64, username string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.locks[key]; ok {
		if !existing.Expired(t.now()) {
			logging.Debug().
				Str("key", key).
				Int64("holder", existing.UserID).
				Int64("requester", userID).
				Msg("lock denied, already held")
			metrics.LocksDeniedTotal.Inc()
			return false
		}
		delete(t.locks, key)
		metrics.LocksExpiredTotal.Inc()
		metrics.LocksHeld.Dec()
		logging.Debug().Str("key", key).Msg("expired lock evicted")
	}

	t.locks[key] = models.ResourceLock{
		UserID:    userID,
		Username:  username,
		ExpiresAt: t.now().Add(Duration),
	}
	metrics.LocksAcquiredTotal.Inc()
	metrics.LocksHeld.Inc()
	logging.Debug().Str("key", key).Int64("user_id", userID).Msg("lock acquired")
	return true
}

// Release removes the lock only when userID is the current holder. It
// returns false without side effects otherwise; releasing a lock you do
// not hold is not an error.
func (t *Table) Release(key string, userID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	existing, ok := t.locks[key]
	if !ok {
		return false
	}
	if existing.UserID != userID {
		logging.Warn().
			Str("key", key).
			Int64("holder", existing.UserID).
			Int64("requester", userID).
			Msg("release refused, not the lock holder")
		return false
	}

	delete(t.locks, key)
	metrics.LocksReleasedTotal.Inc()
	metrics.LocksHeld.Dec()
	logging.Debug().Str("key", key).Int64("user_id", userID).Msg("lock released")
	return true
}

// Get returns the live lock for key. An expired entry is evicted and
// reported as absent.
func (t *Table) Get(key string) (models.ResourceLock, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	existing, ok := t.locks[key]
	if !ok {
		return models.ResourceLock{}, false
	}
	if existing.Expired(t.now()) {
		delete(t.locks, key)
		metrics.LocksExpiredTotal.Inc()
		metrics.LocksHeld.Dec()
		return models.ResourceLock{}, false
	}
	return existing, true
}

// ReleaseAll removes every lock held by userID, used when the user's
// connection drops. No-op if none are held.
func (t *Table) ReleaseAll(userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for key, l := range t.locks {
		if l.UserID == userID {
			delete(t.locks, key)
			metrics.LocksReleasedTotal.Inc()
			metrics.LocksHeld.Dec()
			logging.Debug().Str("key", key).Int64("user_id", userID).Msg("lock auto-released on disconnect")
		}
	}
}

// Len returns the number of entries currently stored, including entries
// that expired but have not been touched since.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.locks)
}
