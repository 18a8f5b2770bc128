// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

/*
Package main is the entry point for the Ghostmap server.

Ghostmap keeps a shared, in-memory map of live user positions, ghost
markers, short-lived danger alerts and a chat log, and fans every change out
to connected browsers over websockets.

# Application Architecture

	RootSupervisor ("ghostmap")
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocket Hub (single owner of all state mutations)
	│   ├── Alert Sweeper (expires alerts older than ALERT_TTL)
	│   └── Event Feed (optional NATS mirror, NATS_ENABLED=true)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (/ws, /api/v1, /metrics, tiles, static client)

Component initialization order:

 1. Configuration: .env, config.yaml, environment (koanf v2)
 2. Logging: zerolog, JSON or console
 3. State: store, router, hub
 4. Event feed (optional)
 5. Listener bind (failure is fatal)
 6. Supervisor tree

# Configuration

	HTTP_PORT=3000            # or PORT
	ALERT_TTL=5m
	SWEEP_INTERVAL=60s
	ALERT_COOLDOWN=10s        # 0 disables
	CHAT_HISTORY=100          # 0 keeps none
	CORS_ORIGINS=*            # comma-separated
	STATIC_DIR=public
	TILES_DIR=tiles
	NATS_ENABLED=false
	NATS_EMBEDDED=false
	LOG_LEVEL=info
	LOG_FORMAT=json

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains for up
to 10 seconds, the hub closes every websocket, and the event feed flushes
what it can before the process exits.
*/
package main
