// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	requestIDKey    contextKey = "request_id"
	connectionIDKey contextKey = "conn_id"
)

// GenerateRequestID returns a new random request id.
func GenerateRequestID() string {
	return uuid.New().String()
}

// ContextWithRequestID attaches an HTTP request id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request id, or "" if none is set.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithConnectionID attaches a websocket connection id.
func ContextWithConnectionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, connectionIDKey, id)
}

// ConnectionIDFromContext returns the connection id, or "" if none is set.
func ConnectionIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(connectionIDKey).(string); ok {
		return id
	}
	return ""
}

// Ctx returns the global logger with request_id and conn_id fields taken
// from ctx when present.
//
//	logging.Ctx(ctx).Info().Msg("websocket upgraded")
func Ctx(ctx context.Context) *zerolog.Logger {
	logCtx := With()

	if id := RequestIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("request_id", id)
	}
	if id := ConnectionIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("conn_id", id)
	}

	logger := logCtx.Logger()
	return &logger
}
