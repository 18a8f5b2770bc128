// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// HTTPServer matches the *http.Server lifecycle methods used here.
type HTTPServer interface {
	Serve(l net.Listener) error
	Shutdown(ctx context.Context) error
}

// HTTPServerService serves an HTTP server on a listener bound before the
// supervisor tree starts, so a bind failure surfaces at startup instead of
// as a restart loop.
//
// Example usage:
//
//	ln, err := net.Listen("tcp", cfg.Server.Addr())
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("bind")
//	}
//	srv := &http.Server{Handler: router}
//	tree.AddAPIService(services.NewHTTPServerService(srv, ln, 10*time.Second))
type HTTPServerService struct {
	server          HTTPServer
	listener        net.Listener
	shutdownTimeout time.Duration
	name            string
}

// NewHTTPServerService creates the HTTP server service. A non-positive
// shutdownTimeout becomes 10s.
func NewHTTPServerService(server HTTPServer, listener net.Listener, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPServerService{
		server:          server,
		listener:        listener,
		shutdownTimeout: shutdownTimeout,
		name:            "http-server",
	}
}

// Serve implements suture.Service.
//
// http.ErrServerClosed is treated as a clean stop.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := h.server.Serve(h.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		// ctx is already canceled; Shutdown needs its own deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()

		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}

		<-errCh
		return ctx.Err()
	}
}

// String implements fmt.Stringer.
func (h *HTTPServerService) String() string {
	return h.name
}
