// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

/*
Package websocket is the connection registry and transport for the shared map.

It uses gorilla/websocket with a hub-client architecture:

	             ┌──────────────┐
	 commands ──►│     Hub      │──► Dispatcher (router)
	             └──────┬───────┘
	                    │ scoped deliveries
	       ┌────────────┼────────────┐
	       ▼            ▼            ▼
	   Client A     Client B     Client C

Hub:

The hub goroutine is the only place connections are added, removed, or sent
to, and the only caller of the Dispatcher. Registration and the joining
client's snapshot happen in one step, so a new client sees every later event
and none from before it joined.

Each outbound protocol.Delivery carries a scope (all, others, sender). The
hub encodes the message once and offers the frame to every selected client
in connection-id order without blocking. A client whose queue is full is
removed, its queue is closed, and the Dispatcher's Leave runs for it; a later
Unregister for the same client is ignored.

Events scoped to all connections are also handed to the optional Mirror.

Client:

Each client runs two goroutines:
  - readPump: reads frames, decodes the envelope, queues commands on the hub
  - writePump: writes queued frames and keepalive pings

Frames that cannot be decoded are logged and dropped; the connection stays
open.

Usage:

	hub := websocket.NewHub(router.New(store, router.Config{}), websocket.HubConfig{})
	go hub.RunWithContext(ctx)

	conn, _ := upgrader.Upgrade(w, r, nil)
	client := websocket.NewClient(hub, conn)
	if err := hub.Connect(r.Context(), client); err == nil {
		client.Start()
	}

Sweeps are requested with Hub.Sweep, which runs the expiry pass on the hub
goroutine and returns once its removals have been delivered.
*/
package websocket
