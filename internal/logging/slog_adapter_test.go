// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSlogHandler_WritesThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	slogger := slog.New(NewSlogHandlerWithLogger(zerolog.New(&buf)))

	slogger.Info("service started", "service", "websocket-hub", "restarts", 2)

	output := buf.String()
	for _, want := range []string{`"message":"service started"`, `"service":"websocket-hub"`, `"restarts":2`, `"level":"info"`} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output: %s", want, output)
		}
	}
}

func TestSlogHandler_Levels(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelDebug, `"level":"debug"`},
		{slog.LevelInfo, `"level":"info"`},
		{slog.LevelWarn, `"level":"warn"`},
		{slog.LevelError, `"level":"error"`},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			zerolog.SetGlobalLevel(zerolog.TraceLevel)
			defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

			slog.New(NewSlogHandlerWithLogger(zerolog.New(&buf))).Log(context.Background(), tt.level, "x")
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("expected %s, got %s", tt.want, buf.String())
			}
		})
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	h := NewSlogHandlerWithLogger(zerolog.New(&bytes.Buffer{}).Level(zerolog.WarnLevel))

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled on a warn logger")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled on a warn logger")
	}
}

func TestSlogHandler_GroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	slogger := slog.New(NewSlogHandlerWithLogger(zerolog.New(&buf))).
		With("tree", "ghostmap").
		WithGroup("svc")

	slogger.Info("backoff",
		"name", "sweeper",
		"wait", 15*time.Second,
		"err", errors.New("boom"),
		slog.Group("failures", "count", 3),
	)

	output := buf.String()
	for _, want := range []string{`"svc.tree":"ghostmap"`, `"svc.name":"sweeper"`, `"svc.err":"boom"`, `"svc.failures.count":3`} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output: %s", want, output)
		}
	}
}

func TestSlogHandler_EmptyGroupIsNoop(t *testing.T) {
	h := NewSlogHandler()
	if h.WithGroup("") != h {
		t.Error("WithGroup(\"\") should return the same handler")
	}
}
