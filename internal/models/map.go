// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

package models

// ConnectionID identifies one live websocket session. It is assigned by the
// server when the connection is accepted and is never handed to another
// connection for the lifetime of the process.
type ConnectionID = string

// User is the last reported position of a live connection.
//
// A User exists only while its connection is live and after the connection
// has sent at least one location report.
type User struct {
	ID   ConnectionID `json:"id"`
	Lat  float64      `json:"lat"`
	Lng  float64      `json:"lng"`
	Name string       `json:"name"`
}

// Marker is a "ghost" annotation placed on the shared map. Markers have no
// expiry and are removed only by an explicit delete.
type Marker struct {
	ID       int64        `json:"id"`
	Lat      float64      `json:"lat"`
	Lng      float64      `json:"lng"`
	PlacedBy ConnectionID `json:"placedBy,omitempty"`
}

// Alert is a short-lived danger report. Timestamp is Unix milliseconds taken
// from the server clock when the alert was accepted.
type Alert struct {
	ID        int64        `json:"id"`
	Message   string       `json:"message"`
	Lat       float64      `json:"lat"`
	Lng       float64      `json:"lng"`
	SenderID  ConnectionID `json:"senderId"`
	Timestamp int64        `json:"timestamp"`
}

// ChatMessage is one entry of the shared chat log.
type ChatMessage struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Snapshot is a point-in-time copy of every collection in the shared state.
// Users is keyed by connection id to match the existingUsers wire payload.
// Markers and Alerts are ordered by ascending id.
type Snapshot struct {
	Users   map[ConnectionID]User `json:"users"`
	Markers []Marker              `json:"markers"`
	Alerts  []Alert               `json:"alerts"`
	Chat    []ChatMessage         `json:"chat"`
	TakenAt int64                 `json:"takenAt"`
}
