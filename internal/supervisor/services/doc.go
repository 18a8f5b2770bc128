// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

/*
Package services provides suture.Service wrappers for Ghostmap components.

Each wrapper translates a component's lifecycle into suture's
Serve(ctx) error and names itself through fmt.Stringer for supervisor logs.

# Available Services

RunnerService ("websocket-hub", "alert-sweeper"):
  - Wraps anything with RunWithContext(ctx) error
  - Used for the websocket hub and the expiry sweeper

HTTPServerService ("http-server"):
  - Serves *http.Server on a pre-bound listener
  - Shuts down with its own timeout once ctx is canceled

EventFeedService ("event-feed"):
  - Start, block, then Shutdown with a timeout
  - A failed Start is returned so suture retries with backoff

# Interfaces

The wrappers depend on small interfaces (ContextRunner, HTTPServer,
EventFeedRunner) rather than concrete types, which keeps this package free
of imports from the websocket and eventfeed packages.
*/
package services
