// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

/*
Package mapstate holds the authoritative in-memory state of the shared map.

The Store owns four collections:

  - users: last reported position per live connection, keyed by connection id
  - markers: ghost markers keyed by a monotonic id, no expiry
  - alerts: danger alerts keyed by a monotonic id, expired after a TTL
  - chat: a bounded, append-only chat log

No other package holds a reference to these collections. Every mutation goes
through a Store method that reports whether it changed anything, so callers can
suppress events for no-op deletes:

	store := mapstate.New(mapstate.Config{AlertTTL: 5 * time.Minute})
	marker := store.AddMarker(44.43, 26.10, connID)
	if store.RemoveMarker(marker.ID) {
	    // emit removeMarker
	}
	store.RemoveMarker(marker.ID) // false, nothing to emit

# Identifiers

Marker and alert ids come from two independent counters that start at 1 and
only ever increase. Deleting an entry never frees its id.

# Time

Alert timestamps come from the Store's clock, never from the client. Tests
inject a clockwork.FakeClock to drive expiry deterministically.

# Concurrency

All methods are safe for concurrent use. In the running server a single hub
goroutine performs every mutation, and the RWMutex lets HTTP handlers and
metrics read a consistent Snapshot without going through the hub.
*/
package mapstate
