// Corkboard - Collaborative Kanban Board Server
// Copyright 2026 Corkboard contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/corkboard/corkboard

/*
Package config provides centralized configuration management for Corkboard.

Configuration is loaded with Koanf v2 from three layered sources, later
layers overriding earlier ones:

 1. Built-in defaults
 2. An optional YAML config file (config.yaml, or CONFIG_PATH)
 3. Environment variables

# Configuration Structure

  - ServerConfig: HTTP bind address, port, request timeout, environment
  - DatabaseConfig: DuckDB path and resource limits
  - SecurityConfig: JWT secret and session lifetime, rate limiting, CORS
  - RealtimeConfig: WebSocket frame limits, timeouts, send buffering
  - LoggingConfig: level, format, caller annotation

# Environment Variables

Common variables:

  - HTTP_HOST: bind address (default: 0.0.0.0)
  - HTTP_PORT: listen port (default: 8080)
  - DUCKDB_PATH: database file path (default: /data/corkboard.duckdb)
  - JWT_SECRET: HMAC signing secret, minimum 32 characters (required)
  - SESSION_TIMEOUT: token lifetime (default: 24h)
  - RATE_LIMIT_REQUESTS / RATE_LIMIT_WINDOW: request throttling
  - CORS_ORIGINS: comma-separated allowed origins (default: *)
  - LOG_LEVEL / LOG_FORMAT: logging controls

Any nested field is also reachable with SECTION_FIELD naming, for example
REALTIME_PONG_TIMEOUT or SERVER_ENVIRONMENT.
*/
package config
