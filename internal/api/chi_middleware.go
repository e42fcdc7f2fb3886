// Corkboard - Collaborative Kanban Board Server
// Copyright 2026 Corkboard contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/corkboard/corkboard

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/corkboard/corkboard/internal/config"
)

// authRateLimit is the strict limit applied to register and login, against
// credential stuffing. Independent of the configurable API-wide limit.
var authRateLimit = struct {
	requests int
	window   time.Duration
}{requests: 10, window: time.Minute}

// ChiMiddleware provides Chi-compatible middleware factories built from the
// security configuration: CORS via go-chi/cors and rate limiting via
// go-chi/httprate.
type ChiMiddleware struct {
	cfg  *config.SecurityConfig
	cors func(http.Handler) http.Handler
}

// NewChiMiddleware creates the middleware factory.
func NewChiMiddleware(cfg *config.SecurityConfig) *ChiMiddleware {
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           86400,
	})

	return &ChiMiddleware{
		cfg:  cfg,
		cors: corsHandler,
	}
}

// CORS returns the CORS middleware. Applied globally so OPTIONS preflight
// requests are handled on every route.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit returns the IP-keyed limiter for general API routes, or a no-op
// when rate limiting is disabled in config.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	if m.cfg.RateLimitDisabled {
		return passthrough
	}

	return httprate.Limit(
		m.cfg.RateLimitReqs,
		m.cfg.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
	)
}

// RateLimitAuth returns the strict limiter for credential endpoints.
func (m *ChiMiddleware) RateLimitAuth() func(http.Handler) http.Handler {
	if m.cfg.RateLimitDisabled {
		return passthrough
	}

	return httprate.LimitByIP(authRateLimit.requests, authRateLimit.window)
}

func passthrough(next http.Handler) http.Handler {
	return next
}
