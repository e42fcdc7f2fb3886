// Corkboard - Collaborative Kanban Board Server
// Copyright 2026 Corkboard contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/corkboard/corkboard

package api

import (
	"net/http"
	"strconv"

	"github.com/corkboard/corkboard/internal/logging"
	"github.com/corkboard/corkboard/internal/metrics"
)

// WebSocket upgrades the connection and attaches it to the realtime hub,
// scoped to one board. Browsers cannot set an Authorization header on a
// WebSocket handshake, so the token travels as a query parameter alongside
// the board id. Rejections happen before the upgrade, as plain HTTP errors.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	boardID, err := strconv.ParseInt(r.URL.Query().Get("boardId"), 10, 64)
	if err != nil || boardID <= 0 {
		metrics.RealtimeHandshakeRejections.WithLabelValues("board_id").Inc()
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "boardId must be a positive integer", nil)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		metrics.RealtimeHandshakeRejections.WithLabelValues("token").Inc()
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "token query parameter required", nil)
		return
	}

	claims, err := h.jwtManager.ValidateToken(token)
	if err != nil {
		metrics.RealtimeHandshakeRejections.WithLabelValues("token").Inc()
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		logging.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	h.hub.Attach(conn, claims.UserID, claims.Username, boardID)
}
