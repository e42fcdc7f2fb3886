// Corkboard - Collaborative Kanban Board Server
// Copyright 2026 Corkboard contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/corkboard/corkboard

// Package models defines the domain types shared across Corkboard: boards,
// columns, tasks, users, board membership, advisory resource locks, the
// realtime board event envelope, and the standard API response wrapper.
package models
