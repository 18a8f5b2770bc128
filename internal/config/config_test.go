// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// isolate runs the test from an empty directory with no config file or .env.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(ConfigPathEnvVar, filepath.Join(dir, "missing.yaml"))

	orig := DefaultConfigPaths
	DefaultConfigPaths = []string{"config.yaml"}
	t.Cleanup(func() { DefaultConfigPaths = orig })
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Server.Addr() != "0.0.0.0:3000" {
		t.Errorf("Server.Addr() = %q", cfg.Server.Addr())
	}
	if cfg.Realtime.AlertTTL != 5*time.Minute {
		t.Errorf("Realtime.AlertTTL = %v, want 5m", cfg.Realtime.AlertTTL)
	}
	if cfg.Realtime.SweepInterval != 60*time.Second {
		t.Errorf("Realtime.SweepInterval = %v, want 60s", cfg.Realtime.SweepInterval)
	}
	if cfg.Realtime.AlertCooldown != 10*time.Second {
		t.Errorf("Realtime.AlertCooldown = %v, want 10s", cfg.Realtime.AlertCooldown)
	}
	if cfg.Realtime.ChatHistory != 100 {
		t.Errorf("Realtime.ChatHistory = %d, want 100", cfg.Realtime.ChatHistory)
	}
	if cfg.NATS.Enabled {
		t.Error("NATS.Enabled should default to false")
	}
	if !cfg.Server.AllowsAnyOrigin() {
		t.Error("default origins should allow any origin")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("ALERT_TTL", "90s")
	t.Setenv("CHAT_HISTORY", "0")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("NATS_ENABLED", "true")
	t.Setenv("NATS_SUBJECT_PREFIX", "map")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Realtime.AlertTTL != 90*time.Second {
		t.Errorf("Realtime.AlertTTL = %v, want 90s", cfg.Realtime.AlertTTL)
	}
	if cfg.Realtime.ChatHistory != 0 {
		t.Errorf("Realtime.ChatHistory = %d, want 0", cfg.Realtime.ChatHistory)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.Server.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.Server.AllowedOrigins, want)
	}
	if cfg.Server.AllowsAnyOrigin() {
		t.Error("explicit origin list should not allow any origin")
	}
	if !cfg.NATS.Enabled || cfg.NATS.SubjectPrefix != "map" {
		t.Errorf("NATS = %+v", cfg.NATS)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_PortAlias(t *testing.T) {
	isolate(t)
	t.Setenv("PORT", "4000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 4000 {
		t.Errorf("Server.Port = %d, want 4000", cfg.Server.Port)
	}
}

func TestLoad_FilePrecedence(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "ghostmap.yaml")
	writeFile(t, path, `
server:
  port: 5000
  static_dir: /srv/www
realtime:
  alert_ttl: 2m
  send_buffer: 32
logging:
  format: console
`)
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "6000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 6000 {
		t.Errorf("env should beat file: Server.Port = %d, want 6000", cfg.Server.Port)
	}
	if cfg.Server.StaticDir != "/srv/www" {
		t.Errorf("Server.StaticDir = %q, want /srv/www", cfg.Server.StaticDir)
	}
	if cfg.Realtime.AlertTTL != 2*time.Minute {
		t.Errorf("Realtime.AlertTTL = %v, want 2m", cfg.Realtime.AlertTTL)
	}
	if cfg.Realtime.SendBuffer != 32 {
		t.Errorf("Realtime.SendBuffer = %d, want 32", cfg.Realtime.SendBuffer)
	}
	if cfg.Realtime.SweepInterval != 60*time.Second {
		t.Errorf("unset key should keep default: SweepInterval = %v", cfg.Realtime.SweepInterval)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("Logging.Format = %q, want console", cfg.Logging.Format)
	}
}

func TestLoad_DefaultPathSearch(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config.yaml"), "server:\n  tiles_dir: /data/tiles\n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.TilesDir != "/data/tiles" {
		t.Errorf("Server.TilesDir = %q, want /data/tiles", cfg.Server.TilesDir)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".env"), "SWEEP_INTERVAL=15s\nALERT_COOLDOWN=0s\n")

	// godotenv writes into the process environment; register the keys so
	// t.Setenv restores them afterwards.
	t.Setenv("SWEEP_INTERVAL", "")
	t.Setenv("ALERT_COOLDOWN", "")
	os.Unsetenv("SWEEP_INTERVAL")
	os.Unsetenv("ALERT_COOLDOWN")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Realtime.SweepInterval != 15*time.Second {
		t.Errorf("Realtime.SweepInterval = %v, want 15s", cfg.Realtime.SweepInterval)
	}
	if cfg.Realtime.AlertCooldown != 0 {
		t.Errorf("Realtime.AlertCooldown = %v, want 0", cfg.Realtime.AlertCooldown)
	}
}

func TestLoad_DotEnvDoesNotOverrideEnv(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".env"), "HTTP_PORT=7000\n")
	t.Setenv("HTTP_PORT", "7100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7100 {
		t.Errorf("Server.Port = %d, want 7100", cfg.Server.Port)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bad.yaml")
	writeFile(t, path, "server: [unterminated\n")
	t.Setenv(ConfigPathEnvVar, path)

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail on malformed YAML")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	isolate(t)
	t.Setenv("HTTP_PORT", "70000")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should reject out-of-range port")
	}
	if !strings.Contains(err.Error(), "HTTP_PORT") {
		t.Errorf("error = %v, want mention of HTTP_PORT", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"PORT", "server.port"},
		{"CORS_ORIGINS", "server.allowed_origins"},
		{"WS_SEND_BUFFER", "realtime.send_buffer"},
		{"NATS_URL", "nats.url"},
		{"log_level", "logging.level"},
		{"HOME", ""},
		{"PATH", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := envTransformFunc(tt.in); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
