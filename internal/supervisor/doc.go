// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

/*
Package supervisor runs Ghostmap's long-lived services under suture v4.

# Overview

	RootSupervisor ("ghostmap")
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocketHubService ("websocket-hub")
	│   ├── SweeperService ("alert-sweeper")
	│   └── EventFeedService ("event-feed", if NATS_ENABLED)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService ("http-server")

Each layer counts failures independently, so a crashing event feed does not
take the HTTP listener down with it.

# Usage Example

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    logging.Fatal().Err(err).Msg("supervisor")
	}
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddMessagingService(services.NewSweeperService(sw))
	tree.AddAPIService(services.NewHTTPServerService(srv, ln, 10*time.Second))

	errCh := tree.ServeBackground(ctx)
	<-ctx.Done()
	<-errCh

# Failure Handling

Failures decay over FailureDecay seconds. Past FailureThreshold the
supervisor waits FailureBackoff before the next restart. Supervisor events
are logged through sutureslog.

Return behavior for services:
  - nil: stopped cleanly, not restarted
  - error: crashed, restarted
  - ctx.Err(): shutdown requested

# Debugging Shutdown Issues

	report, _ := tree.UnstoppedServiceReport()
	for _, svc := range report {
	    logging.Warn().Str("service", svc.Name).Msg("did not stop")
	}
*/
package supervisor
