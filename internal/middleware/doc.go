// Corkboard - Collaborative Kanban Board Server
// Copyright 2026 Corkboard contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/corkboard/corkboard

// Package middleware provides http.HandlerFunc middleware shared by the API
// routes: request id propagation, Prometheus instrumentation, and JWT
// authentication. CORS and rate limiting come from the go-chi ecosystem and
// are wired directly in the router.
package middleware
