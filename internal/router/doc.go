// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

/*
Package router turns client commands into store mutations and outbound
deliveries.

Every inbound command maps to exactly one store operation and one fan-out
scope. The mapping lives in a single table (policy.go); nothing else in the
service decides who receives what.

	| Command            | Store op     | Event              | Scope  |
	|--------------------|--------------|--------------------|--------|
	| sendLocation       | UpsertUser   | updateLocation     | all    |
	| placeMarker        | AddMarker    | newMarker          | all    |
	| deleteMarker       | RemoveMarker | removeMarker       | all    |
	| dangerAlert        | AddAlert     | dangerAlert        | all    |
	| deleteDangerMarker | RemoveAlert  | removeDangerMarker | all    |
	| chatMessage        | AppendChat   | chatMessage        | all    |
	| ping               | none         | pong               | sender |

Internal transitions use the same Delivery type:

  - Join: four snapshot events (users, markers, alerts, chat) to the sender
  - Leave: userDisconnected to all, only if the connection had a position
  - Sweep: removeDangerMarker to all for each expired alert

The Router is not safe for concurrent use. It is driven by the websocket hub
goroutine, which serializes joins, leaves, commands and sweeps so that a
joining connection's snapshot and its first live event never interleave.

Errors returned by Handle wrap one of ErrUnknownCommand, ErrMalformedPayload
or ErrRateLimited. The caller logs and drops the command; no state changes.
*/
package router
