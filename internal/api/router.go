// Corkboard - Collaborative Kanban Board Server
// Copyright 2026 Corkboard contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/corkboard/corkboard

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/corkboard/corkboard/internal/middleware"
)

// chiMiddleware adapts http.HandlerFunc middleware to Chi's
// func(http.Handler) http.Handler so it can be used with r.Use().
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Router wires handlers and middleware into the Chi route tree.
type Router struct {
	handler       *Handler
	auth          *middleware.AuthMiddleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router around an API handler.
func NewRouter(handler *Handler) *Router {
	return &Router{
		handler:       handler,
		auth:          middleware.NewAuthMiddleware(handler.jwtManager),
		chiMiddleware: NewChiMiddleware(&handler.config.Security),
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight works everywhere

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Get("/", router.handler.Health)
	})

	// Credential endpoints carry the strict limiter against brute force.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitAuth())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.Post("/register", router.handler.Register)
		r.Post("/login", router.handler.Login)
	})

	// Data endpoints: everything requires a valid bearer token.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())

		// The WebSocket handshake authenticates via query parameter and
		// hijacks the connection, so it skips the auth and metrics
		// wrappers; the metrics response writer does not implement
		// http.Hijacker.
		r.Get("/ws", router.handler.WebSocket)

		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware(middleware.PrometheusMetrics))
			r.Use(chiMiddleware(router.auth.Authenticate))

			r.Route("/boards", func(r chi.Router) {
				r.Get("/", router.handler.ListBoards)
				r.Post("/", router.handler.CreateBoard)

				r.Route("/{boardId}", func(r chi.Router) {
					r.Get("/", router.handler.GetBoard)
					r.Put("/", router.handler.UpdateBoard)
					r.Delete("/", router.handler.DeleteBoard)

					r.Get("/members", router.handler.ListMembers)
					r.Post("/members", router.handler.AddMember)
					r.Delete("/members", router.handler.RemoveMember)

					r.Get("/columns", router.handler.ListColumns)
					r.Post("/columns", router.handler.CreateColumn)
				})
			})

			r.Route("/columns/{columnId}", func(r chi.Router) {
				r.Get("/", router.handler.GetColumn)
				r.Put("/", router.handler.UpdateColumn)
				r.Delete("/", router.handler.DeleteColumn)

				r.Get("/tasks", router.handler.ListTasks)
				r.Post("/tasks", router.handler.CreateTask)
			})

			r.Route("/tasks/{taskId}", func(r chi.Router) {
				r.Get("/", router.handler.GetTask)
				r.Put("/", router.handler.UpdateTask)
				r.Delete("/", router.handler.DeleteTask)
				r.Patch("/move", router.handler.MoveTask)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
