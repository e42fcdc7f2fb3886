// Corkboard - Collaborative Kanban Board Server
// Copyright 2026 Corkboard contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/corkboard/corkboard

package api

import (
	"errors"
	"net/http"

	"github.com/corkboard/corkboard/internal/auth"
	"github.com/corkboard/corkboard/internal/database"
	"github.com/corkboard/corkboard/internal/logging"
)

// Register creates an account and returns a session token so clients can
// skip a separate login round-trip.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process credentials", err)
		return
	}

	user, err := h.db.CreateUser(r.Context(), req.Email, req.Username, hash)
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			respondError(w, http.StatusConflict, "DUPLICATE", "Email or username already registered", nil)
			return
		}
		respondDatabaseError(w, err)
		return
	}

	token, expiresAt, err := h.jwtManager.GenerateToken(user.ID, user.Username)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue token", err)
		return
	}

	logging.Info().Int64("user_id", user.ID).Str("username", sanitizeLogValue(user.Username)).Msg("user registered")

	respondSuccess(w, http.StatusCreated, AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	})
}

// Login verifies credentials and issues a session token. Unknown emails and
// wrong passwords produce the same response so accounts cannot be
// enumerated.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.db.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", nil)
			return
		}
		respondDatabaseError(w, err)
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		respondError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", nil)
		return
	}

	token, expiresAt, err := h.jwtManager.GenerateToken(user.ID, user.Username)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue token", err)
		return
	}

	logging.Info().Int64("user_id", user.ID).Msg("user logged in")

	respondSuccess(w, http.StatusOK, AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	})
}
