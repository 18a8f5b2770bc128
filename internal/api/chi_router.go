// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

package api

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/ghostmap/internal/logging"
	"github.com/tomtom215/ghostmap/internal/middleware"
)

// RouterConfig holds the HTTP surface settings.
type RouterConfig struct {
	Middleware *ChiMiddlewareConfig

	// StaticDir serves the browser client at "/". Empty disables it.
	StaticDir string

	// TilesDir serves offline map tiles at "/tiles/". Empty disables it.
	TilesDir string
}

// Router wires handlers and middleware onto chi.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	config        RouterConfig
}

// NewRouter creates a Router.
func NewRouter(handler *Handler, config RouterConfig) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(config.Middleware),
		config:        config,
	}
}

// SetupChi builds the http.Handler for every route.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(router.chiMiddleware.CORS())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed", nil)
	})

	r.With(router.chiMiddleware.RateLimit()).Get("/ws", router.handler.WebSocket)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())

		r.Get("/health", router.handler.Health)
		r.Get("/state", router.handler.State)
	})

	r.Handle("/metrics", promhttp.Handler())

	if dir := router.config.TilesDir; dir != "" {
		warnMissingDir("tiles", dir)
		r.With(
			chimiddleware.Compress(5),
			chimiddleware.SetHeader("Cache-Control", "public, max-age=86400"),
		).Handle("/tiles/*", http.StripPrefix("/tiles/", http.FileServer(http.Dir(dir))))
	}

	if dir := router.config.StaticDir; dir != "" {
		warnMissingDir("static", dir)
		r.With(chimiddleware.Compress(5)).Handle("/*", http.FileServer(http.Dir(dir)))
	}

	return r
}

// warnMissingDir logs once at startup; requests under a missing directory
// return 404.
func warnMissingDir(kind, dir string) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		logging.Warn().Str("kind", kind).Str("dir", dir).Msg("Asset directory not found")
	}
}
