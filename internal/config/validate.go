// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

package config

import (
	"fmt"
	"strings"
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateRealtime(); err != nil {
		return err
	}
	if err := c.validateNATS(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must list at least one origin (use * to allow all)")
	}
	if !c.Server.RateLimitDisabled {
		if c.Server.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQS must be at least 1")
		}
		if c.Server.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
		}
	}
	return nil
}

func (c *Config) validateRealtime() error {
	if c.Realtime.AlertTTL <= 0 {
		return fmt.Errorf("ALERT_TTL must be positive")
	}
	if c.Realtime.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive")
	}
	if c.Realtime.AlertCooldown < 0 {
		return fmt.Errorf("ALERT_COOLDOWN must not be negative")
	}
	if c.Realtime.ChatHistory < 0 {
		return fmt.Errorf("CHAT_HISTORY must not be negative")
	}
	if c.Realtime.SendBuffer < 1 {
		return fmt.Errorf("WS_SEND_BUFFER must be at least 1")
	}
	return nil
}

func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}
	if !c.NATS.Embedded && c.NATS.URL == "" {
		return fmt.Errorf("NATS_URL is required when NATS_ENABLED=true")
	}
	if c.NATS.Embedded && (c.NATS.EmbeddedPort < -1 || c.NATS.EmbeddedPort > 65535) {
		return fmt.Errorf("NATS_EMBEDDED_PORT must be between 1 and 65535")
	}
	if strings.TrimSpace(c.NATS.SubjectPrefix) == "" || strings.ContainsAny(c.NATS.SubjectPrefix, " *>") {
		return fmt.Errorf("NATS_SUBJECT_PREFIX must be a non-empty subject token without wildcards")
	}
	if c.NATS.QueueSize < 1 {
		return fmt.Errorf("NATS_QUEUE_SIZE must be at least 1")
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace":    true,
	"debug":    true,
	"info":     true,
	"warn":     true,
	"warning":  true,
	"error":    true,
	"disabled": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error, disabled")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// AllowsAnyOrigin reports whether the origin list contains "*".
func (s ServerConfig) AllowsAnyOrigin() bool {
	for _, o := range s.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}
