// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

// Package protocol defines the websocket wire format shared by the router and
// the transport: event names, the frame envelope, command payloads and the
// fan-out scope attached to every outbound message.
//
// Every frame is a JSON object:
//
//	{"type": "placeMarker", "data": {"lat": 44.43, "lng": 26.10}}
package protocol

import (
	"github.com/goccy/go-json"

	"github.com/tomtom215/ghostmap/internal/models"
)

// Inbound command names (client to server).
const (
	CommandSendLocation       = "sendLocation"
	CommandPlaceMarker        = "placeMarker"
	CommandDeleteMarker       = "deleteMarker"
	CommandDangerAlert        = "dangerAlert"
	CommandDeleteDangerMarker = "deleteDangerMarker"
	CommandChatMessage        = "chatMessage"
	CommandPing               = "ping"
)

// Outbound event names (server to client).
const (
	EventExistingUsers         = "existingUsers"
	EventExistingMarkers       = "existingMarkers"
	EventExistingDangerMarkers = "existingDangerMarkers"
	EventExistingChatMessages  = "existingChatMessages"
	EventUpdateLocation        = "updateLocation"
	EventNewMarker             = "newMarker"
	EventRemoveMarker          = "removeMarker"
	EventDangerAlert           = "dangerAlert"
	EventRemoveDangerMarker    = "removeDangerMarker"
	EventUserDisconnected      = "userDisconnected"
	EventChatMessage           = "chatMessage"
	EventPong                  = "pong"
)

// Scope selects which connections receive an outbound message.
type Scope int

const (
	// ScopeAll delivers to every registered connection, including the origin.
	ScopeAll Scope = iota
	// ScopeOthers delivers to every registered connection except the origin.
	ScopeOthers
	// ScopeSender delivers to the origin connection only.
	ScopeSender
)

// String returns the metric label for the scope.
func (s Scope) String() string {
	switch s {
	case ScopeAll:
		return "all"
	case ScopeOthers:
		return "others"
	case ScopeSender:
		return "sender"
	default:
		return "unknown"
	}
}

// Includes reports whether a connection should receive a message with this
// scope that originated from origin.
func (s Scope) Includes(conn, origin models.ConnectionID) bool {
	switch s {
	case ScopeAll:
		return true
	case ScopeOthers:
		return conn != origin
	case ScopeSender:
		return conn == origin
	default:
		return false
	}
}

// Message is an outbound frame.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Inbound is a frame read from a client. Data is decoded once Type is known.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Delivery is one outbound message together with its fan-out decision.
type Delivery struct {
	Scope   Scope
	Origin  models.ConnectionID
	Message Message
}

// IDPayload carries the id of a removed marker or alert.
type IDPayload struct {
	ID int64 `json:"id"`
}

// LocationPayload is the body of sendLocation. Pointer coordinates let
// validation tell a missing field from a zero coordinate.
type LocationPayload struct {
	Lat  *float64 `json:"lat" validate:"required"`
	Lng  *float64 `json:"lng" validate:"required"`
	Name string   `json:"name" validate:"max=64"`
}

// PlaceMarkerPayload is the body of placeMarker.
type PlaceMarkerPayload struct {
	Lat *float64 `json:"lat" validate:"required"`
	Lng *float64 `json:"lng" validate:"required"`
}

// DeletePayload is the body of deleteMarker and deleteDangerMarker.
type DeletePayload struct {
	ID int64 `json:"id" validate:"gte=1"`
}

// AlertPayload is the body of dangerAlert. Any senderId or timestamp sent by
// the client is not decoded: the server assigns both.
type AlertPayload struct {
	Message string   `json:"message" validate:"required,max=280"`
	Lat     *float64 `json:"lat" validate:"required"`
	Lng     *float64 `json:"lng" validate:"required"`
}

// ChatPayload is the body of chatMessage.
type ChatPayload struct {
	Name    string `json:"name" validate:"max=64"`
	Message string `json:"message" validate:"required,max=1000"`
}

// Encode marshals a message to its JSON frame.
func Encode(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// Decode parses a raw frame into its envelope.
func Decode(frame []byte) (Inbound, error) {
	var in Inbound
	err := json.Unmarshal(frame, &in)
	return in, err
}
