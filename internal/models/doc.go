// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

/*
Package models defines the data structures shared by the store, the websocket
protocol and the HTTP API.

Map entities (map.go):

  - User: last reported position of a live connection
  - Marker: a ghost annotation, removed only by an explicit delete
  - Alert: a danger report that expires after the configured TTL
  - ChatMessage: one line of the shared chat log
  - Snapshot: a copy of every collection, used for join snapshots and /api/v1/state

HTTP envelope (api_responses.go):

  - APIResponse: {"status", "data", "metadata", "error"}
  - APIError: machine-readable code plus message
  - HealthStatus: payload of /api/v1/health

JSON tags use the camelCase field names the browser client already expects
(placedBy, senderId). Numeric ids are int64 and are encoded as JSON numbers.

The package has no dependencies beyond the standard library and holds no
behaviour; mutation rules live in package mapstate.
*/
package models
