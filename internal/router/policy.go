// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

package router

import (
	"github.com/goccy/go-json"

	"github.com/tomtom215/ghostmap/internal/models"
	"github.com/tomtom215/ghostmap/internal/protocol"
)

// applyFunc performs the store operation for one command. It returns the
// event payload, or emit=false when the command was a no-op (for example a
// delete of an unknown id).
type applyFunc func(r *Router, origin models.ConnectionID, data json.RawMessage) (payload interface{}, emit bool, err error)

// route is one row of the fan-out policy.
type route struct {
	event string
	scope protocol.Scope
	apply applyFunc
}

// policy maps each inbound command to its store operation and fan-out.
var policy = map[string]route{
	protocol.CommandSendLocation:       {event: protocol.EventUpdateLocation, scope: protocol.ScopeAll, apply: (*Router).sendLocation},
	protocol.CommandPlaceMarker:        {event: protocol.EventNewMarker, scope: protocol.ScopeAll, apply: (*Router).placeMarker},
	protocol.CommandDeleteMarker:       {event: protocol.EventRemoveMarker, scope: protocol.ScopeAll, apply: (*Router).deleteMarker},
	protocol.CommandDangerAlert:        {event: protocol.EventDangerAlert, scope: protocol.ScopeAll, apply: (*Router).dangerAlert},
	protocol.CommandDeleteDangerMarker: {event: protocol.EventRemoveDangerMarker, scope: protocol.ScopeAll, apply: (*Router).deleteDangerMarker},
	protocol.CommandChatMessage:        {event: protocol.EventChatMessage, scope: protocol.ScopeAll, apply: (*Router).chatMessage},
	protocol.CommandPing:               {event: protocol.EventPong, scope: protocol.ScopeSender, apply: (*Router).ping},
}

// Scopes of the internal transitions.
const (
	joinScope   = protocol.ScopeSender
	leaveScope  = protocol.ScopeAll
	expiryScope = protocol.ScopeAll
)

// Commands lists the command names the router accepts.
func Commands() []string {
	return []string{
		protocol.CommandSendLocation,
		protocol.CommandPlaceMarker,
		protocol.CommandDeleteMarker,
		protocol.CommandDangerAlert,
		protocol.CommandDeleteDangerMarker,
		protocol.CommandChatMessage,
		protocol.CommandPing,
	}
}
