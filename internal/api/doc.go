// Corkboard - Collaborative Kanban Board Server
// Copyright 2026 Corkboard contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/corkboard/corkboard

// Package api provides the HTTP surface of Corkboard: Chi routing, the REST
// handlers for boards, columns, tasks, and members, the auth endpoints, and
// the WebSocket handshake that hands upgraded connections to the realtime
// hub. Every successful mutation broadcasts the matching board event so
// connected clients converge without polling.
package api
