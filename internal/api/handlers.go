// Corkboard - Collaborative Kanban Board Server
// Copyright 2026 Corkboard contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/corkboard/corkboard

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/corkboard/corkboard/internal/auth"
	"github.com/corkboard/corkboard/internal/config"
	"github.com/corkboard/corkboard/internal/database"
	"github.com/corkboard/corkboard/internal/logging"
	"github.com/corkboard/corkboard/internal/middleware"
	"github.com/corkboard/corkboard/internal/realtime"
)

// healthCheckTimeout bounds the database probe in the health handler.
const healthCheckTimeout = 5 * time.Second

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	db         *database.DB
	hub        *realtime.Hub
	jwtManager *auth.JWTManager
	config     *config.Config
}

// NewHandler creates an API handler.
func NewHandler(db *database.DB, hub *realtime.Hub, jwtManager *auth.JWTManager, cfg *config.Config) *Handler {
	return &Handler{
		db:         db,
		hub:        hub,
		jwtManager: jwtManager,
		config:     cfg,
	}
}

// claims extracts the authenticated user from the request context. Routes
// behind the auth middleware always carry claims; a miss means the route
// was wired without it.
func (h *Handler) claims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return nil, false
	}
	return claims, true
}

// Health reports process and database health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		respondError(w, http.StatusServiceUnavailable, "UNHEALTHY", "Database unreachable", err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"status":              "healthy",
		"realtimeConnections": h.hub.ClientCount(),
	})
}

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout against slow-client attacks.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates WebSocket connection origins. Browser
// WebSockets always send Origin; an empty header means a non-browser client
// bypassing CORS and is rejected.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	if h.config == nil {
		return true
	}

	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}
