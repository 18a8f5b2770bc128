// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/ghostmap/config.yaml",
	"/etc/ghostmap/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotEnvFile is loaded into the environment before configuration is read.
// Variables already set in the environment win.
var DotEnvFile = ".env"

// Load reads .env (if present) and then the layered configuration.
func Load() (*Config, error) {
	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}
	return LoadWithKoanf()
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

// LoadWithKoanf loads configuration from defaults, an optional config file
// and environment variables, then validates it. Precedence: ENV > File >
// Defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are parsed from comma-separated strings when set by env.
var sliceConfigPaths = []string{
	"server.allowed_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to config keys.
var envMappings = map[string]string{
	"http_host":           "server.host",
	"http_port":           "server.port",
	"port":                "server.port",
	"http_timeout":        "server.timeout",
	"static_dir":          "server.static_dir",
	"tiles_dir":           "server.tiles_dir",
	"cors_origins":        "server.allowed_origins",
	"rate_limit_reqs":     "server.rate_limit_reqs",
	"rate_limit_window":   "server.rate_limit_window",
	"disable_rate_limit":  "server.rate_limit_disabled",
	"alert_ttl":           "realtime.alert_ttl",
	"sweep_interval":      "realtime.sweep_interval",
	"alert_cooldown":      "realtime.alert_cooldown",
	"chat_history":        "realtime.chat_history",
	"ws_send_buffer":      "realtime.send_buffer",
	"nats_enabled":        "nats.enabled",
	"nats_url":            "nats.url",
	"nats_embedded":       "nats.embedded",
	"nats_embedded_host":  "nats.embedded_host",
	"nats_embedded_port":  "nats.embedded_port",
	"nats_subject_prefix": "nats.subject_prefix",
	"nats_queue_size":     "nats.queue_size",
	"log_level":           "logging.level",
	"log_format":          "logging.format",
	"log_caller":          "logging.caller",
}

// envTransformFunc maps an environment variable to its config key. Unmapped
// variables return "" and are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
