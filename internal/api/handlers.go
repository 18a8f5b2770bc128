// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/ghostmap/internal/logging"
	"github.com/tomtom215/ghostmap/internal/mapstate"
	"github.com/tomtom215/ghostmap/internal/models"
	ws "github.com/tomtom215/ghostmap/internal/websocket"
)

// registerTimeout bounds how long an upgraded connection waits for the hub
// to accept it.
const registerTimeout = 5 * time.Second

// StateReader is the read-only view of the shared map used by HTTP handlers.
// Satisfied by *mapstate.Store.
type StateReader interface {
	Snapshot() models.Snapshot
	Counts() mapstate.Counts
}

// FeedStatus reports whether the optional event feed is connected.
// Satisfied by *eventfeed.Feed.
type FeedStatus interface {
	IsRunning() bool
}

// Handler contains dependencies for the HTTP handlers.
type Handler struct {
	state          StateReader
	hub            *ws.Hub
	feed           FeedStatus
	allowedOrigins []string
	startTime      time.Time
}

// HandlerDeps lists the collaborators of Handler. Feed may be nil when the
// event feed is disabled.
type HandlerDeps struct {
	State          StateReader
	Hub            *ws.Hub
	Feed           FeedStatus
	AllowedOrigins []string
}

// NewHandler creates a Handler.
func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		state:          deps.State,
		hub:            deps.Hub,
		feed:           deps.Feed,
		allowedOrigins: deps.AllowedOrigins,
		startTime:      time.Now(),
	}
}

func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin accepts "*", an exact match, or a missing Origin.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	for _, allowed := range h.allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().Str("origin", origin).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

// WebSocket upgrades the request and hands the connection to the hub.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "WebSocket service unavailable", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logging.Ctx(r.Context()).Debug().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := ws.NewClient(h.hub, conn)

	ctx, cancel := context.WithTimeout(r.Context(), registerTimeout)
	defer cancel()
	if err := h.hub.Connect(ctx, client); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("WebSocket hub did not accept connection")
		_ = conn.Close()
		return
	}
	client.Start()
}

// Health reports liveness and collection sizes.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	counts := h.state.Counts()

	status := models.HealthStatus{
		Status:  "healthy",
		Users:   counts.Users,
		Markers: counts.Markers,
		Alerts:  counts.Alerts,
		Chat:    counts.Chat,
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
	}
	if h.hub != nil {
		status.Clients = h.hub.GetClientCount()
	}
	if h.feed != nil {
		status.Feed = "disconnected"
		if h.feed.IsRunning() {
			status.Feed = "connected"
		}
	}

	respondSuccess(w, status)
}

// State returns the current snapshot.
func (h *Handler) State(w http.ResponseWriter, _ *http.Request) {
	respondSuccess(w, h.state.Snapshot())
}
