// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

// Package config loads Ghostmap configuration.
//
// Sources, lowest to highest precedence:
//  1. Defaults built into the binary
//  2. Optional YAML file (CONFIG_PATH, ./config.yaml, /etc/ghostmap/config.yaml)
//  3. Environment variables, after an optional .env file is loaded
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("invalid configuration")
//	}
//	addr := cfg.Server.Addr()
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Realtime RealtimeConfig `koanf:"realtime"`
	NATS     NATSConfig     `koanf:"nats"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host      string        `koanf:"host"`
	Port      int           `koanf:"port"`
	Timeout   time.Duration `koanf:"timeout"`
	StaticDir string        `koanf:"static_dir"`
	TilesDir  string        `koanf:"tiles_dir"`

	// AllowedOrigins applies to CORS and the websocket origin check.
	// "*" allows any origin.
	AllowedOrigins []string `koanf:"allowed_origins"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// Addr returns host:port for net.Listen.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// RealtimeConfig holds shared map state and transport settings.
type RealtimeConfig struct {
	// AlertTTL is how long a danger alert stays on the map.
	AlertTTL time.Duration `koanf:"alert_ttl"`

	// SweepInterval is the time between expiry passes.
	SweepInterval time.Duration `koanf:"sweep_interval"`

	// AlertCooldown is the minimum time between alerts from one connection.
	// Zero disables the limit.
	AlertCooldown time.Duration `koanf:"alert_cooldown"`

	// ChatHistory is the number of chat messages replayed to new clients.
	// Zero keeps no history.
	ChatHistory int `koanf:"chat_history"`

	// SendBuffer is the outbound queue length per connection.
	SendBuffer int `koanf:"send_buffer"`
}

// NATSConfig holds the optional event feed configuration.
type NATSConfig struct {
	Enabled       bool   `koanf:"enabled"`
	URL           string `koanf:"url"`
	Embedded      bool   `koanf:"embedded"`
	EmbeddedHost  string `koanf:"embedded_host"`
	EmbeddedPort  int    `koanf:"embedded_port"`
	SubjectPrefix string `koanf:"subject_prefix"`
	QueueSize     int    `koanf:"queue_size"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns the built-in defaults.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3000,
			Timeout:         30 * time.Second,
			StaticDir:       "public",
			TilesDir:        "tiles",
			AllowedOrigins:  []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Realtime: RealtimeConfig{
			AlertTTL:      5 * time.Minute,
			SweepInterval: 60 * time.Second,
			AlertCooldown: 10 * time.Second,
			ChatHistory:   100,
			SendBuffer:    256,
		},
		NATS: NATSConfig{
			Enabled:       false,
			URL:           "nats://127.0.0.1:4222",
			Embedded:      false,
			EmbeddedHost:  "127.0.0.1",
			EmbeddedPort:  4222,
			SubjectPrefix: "ghostmap",
			QueueSize:     1024,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}
