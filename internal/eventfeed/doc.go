// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

/*
Package eventfeed mirrors broadcast map events onto NATS subjects.

Every event the hub delivers to all connections (updateLocation, newMarker,
removeMarker, dangerAlert, removeDangerMarker, userDisconnected,
chatMessage) is published to

	<prefix>.<event name>

with the same JSON payload the websocket clients receive. External
consumers (dashboards, loggers, bridges) can subscribe with a wildcard:

	nc.Subscribe("ghostmap.>", handler)

The feed is one-way. Nothing read from NATS reaches the map state.

Components:

  - Feed: bounded queue between the hub and the publisher. Mirror never
    blocks; when the queue is full the event is dropped and counted.
  - Publisher: Watermill NATS publisher (core NATS, JetStream disabled)
    wrapped in a gobreaker circuit breaker.
  - EmbeddedServer: optional in-process nats-server for single-node
    deployments.

Metrics:

  - ghostmap_feed_publish_total{result}: ok, error, breaker_open, dropped
  - ghostmap_circuit_breaker_state{name}: 0 closed, 1 half-open, 2 open
*/
package eventfeed
