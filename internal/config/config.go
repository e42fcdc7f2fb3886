// Corkboard - Collaborative Kanban Board Server
// Copyright 2026 Corkboard contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/corkboard/corkboard

package config

import (
	"fmt"
	"time"
)

// Config is the top-level application configuration, loaded from defaults,
// an optional YAML file, and environment variables (highest priority).
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Security SecurityConfig `koanf:"security"`
	Realtime RealtimeConfig `koanf:"realtime"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // "development", "staging", "production"
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = use runtime.NumCPU()
}

// SecurityConfig holds authentication and request-limiting settings
type SecurityConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	SessionTimeout    time.Duration `koanf:"session_timeout"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// RealtimeConfig holds WebSocket hub settings
type RealtimeConfig struct {
	// MaxMessageSize caps inbound client frames in bytes. Lock request
	// payloads are tiny; anything large is a misbehaving client.
	MaxMessageSize int64 `koanf:"max_message_size"`

	// WriteTimeout bounds a single outbound frame write.
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// PongTimeout is how long a connection may go without a pong before it
	// is considered dead. Pings are sent at 90% of this interval.
	PongTimeout time.Duration `koanf:"pong_timeout"`

	// SendBufferSize is the per-connection outbound queue depth. A client
	// that falls this far behind is disconnected rather than blocking the
	// broadcast path.
	SendBufferSize int `koanf:"send_buffer_size"`
}

// LoggingConfig holds structured logging settings
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// minJWTSecretLength is the minimum accepted HMAC secret length. Shorter
// secrets make brute-forcing the signing key practical.
const minJWTSecretLength = 32

// Validate checks configuration invariants that would otherwise surface as
// confusing runtime failures. It is called by Load after all layers merge.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server timeout must be positive, got %s", c.Server.Timeout)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("database threads must be >= 0, got %d", c.Database.Threads)
	}

	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.Security.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters, got %d", minJWTSecretLength, len(c.Security.JWTSecret))
	}
	if c.Security.SessionTimeout <= 0 {
		return fmt.Errorf("session timeout must be positive, got %s", c.Security.SessionTimeout)
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("rate limit requests must be >= 1, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("rate limit window must be positive, got %s", c.Security.RateLimitWindow)
		}
	}

	if c.Realtime.MaxMessageSize < 1 {
		return fmt.Errorf("realtime max message size must be >= 1, got %d", c.Realtime.MaxMessageSize)
	}
	if c.Realtime.WriteTimeout <= 0 {
		return fmt.Errorf("realtime write timeout must be positive, got %s", c.Realtime.WriteTimeout)
	}
	if c.Realtime.PongTimeout <= 0 {
		return fmt.Errorf("realtime pong timeout must be positive, got %s", c.Realtime.PongTimeout)
	}
	if c.Realtime.SendBufferSize < 1 {
		return fmt.Errorf("realtime send buffer size must be >= 1, got %d", c.Realtime.SendBufferSize)
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging format must be json or console, got %q", c.Logging.Format)
	}

	return nil
}

// IsProduction reports whether the server runs in production mode. Some
// surfaces (CORS, error detail) tighten up in production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
