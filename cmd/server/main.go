// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/ghostmap/internal/api"
	"github.com/tomtom215/ghostmap/internal/config"
	"github.com/tomtom215/ghostmap/internal/logging"
	"github.com/tomtom215/ghostmap/internal/mapstate"
	"github.com/tomtom215/ghostmap/internal/router"
	"github.com/tomtom215/ghostmap/internal/supervisor"
	"github.com/tomtom215/ghostmap/internal/supervisor/services"
	"github.com/tomtom215/ghostmap/internal/sweeper"
	ws "github.com/tomtom215/ghostmap/internal/websocket"
)

const httpShutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Dur("alert_ttl", cfg.Realtime.AlertTTL).
		Dur("sweep_interval", cfg.Realtime.SweepInterval).
		Dur("alert_cooldown", cfg.Realtime.AlertCooldown).
		Int("chat_history", cfg.Realtime.ChatHistory).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Msg("Starting Ghostmap")

	if cfg.Server.AllowsAnyOrigin() {
		logging.Warn().Msg("CORS_ORIGINS=* accepts websocket and API requests from any site")
	}
	if cfg.Server.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	store := mapstate.New(storeConfig(cfg))
	rt := router.New(store, router.Config{AlertCooldown: cfg.Realtime.AlertCooldown})

	feed := initEventFeed(cfg)
	hubCfg := ws.HubConfig{SendBuffer: cfg.Realtime.SendBuffer}
	if feed != nil {
		hubCfg.Mirror = feed
	}
	hub := ws.NewHub(rt, hubCfg)

	sw := sweeper.New(hub, sweeper.Config{Interval: cfg.Realtime.SweepInterval})

	handlerDeps := api.HandlerDeps{
		State:          store,
		Hub:            hub,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}
	if feed != nil {
		handlerDeps.Feed = feed
	}
	handler := api.NewHandler(handlerDeps)
	httpRouter := api.NewRouter(handler, routerConfig(cfg))
	server := newHTTPServer(cfg, httpRouter.SetupChi())

	// Bind before the tree starts: a port we cannot bind is fatal, not a
	// restart loop.
	listener, err := net.Listen("tcp", cfg.Server.Addr())
	if err != nil {
		logging.Fatal().Err(err).Str("addr", cfg.Server.Addr()).Msg("Failed to bind HTTP listener")
	}
	logging.Info().Str("addr", listener.Addr().String()).Msg("HTTP listener bound")

	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddMessagingService(services.NewSweeperService(sw))
	addEventFeedToSupervisor(tree, feed)
	tree.AddAPIService(services.NewHTTPServerService(server, listener, httpShutdownTimeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	logging.Info().Msg("Ghostmap stopped")
}

// storeConfig maps configuration onto the store. CHAT_HISTORY=0 means no
// history, which the store spells as a negative bound.
func storeConfig(cfg *config.Config) mapstate.Config {
	history := cfg.Realtime.ChatHistory
	if history == 0 {
		history = -1
	}
	return mapstate.Config{
		AlertTTL:    cfg.Realtime.AlertTTL,
		ChatHistory: history,
	}
}

func routerConfig(cfg *config.Config) api.RouterConfig {
	mw := api.DefaultChiMiddlewareConfig()
	mw.CORSAllowedOrigins = cfg.Server.AllowedOrigins
	mw.RateLimitRequests = cfg.Server.RateLimitReqs
	mw.RateLimitWindow = cfg.Server.RateLimitWindow
	mw.RateLimitDisabled = cfg.Server.RateLimitDisabled

	return api.RouterConfig{
		Middleware: mw,
		StaticDir:  cfg.Server.StaticDir,
		TilesDir:   cfg.Server.TilesDir,
	}
}

// newHTTPServer leaves WriteTimeout unset; websocket connections set their
// own write deadlines per frame.
func newHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}
}
