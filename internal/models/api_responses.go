// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

package models

import (
	"time"
)

// APIResponse is the envelope returned by every JSON HTTP endpoint.
//
// Status is "success" with Data populated, or "error" with Error populated.
//
//	{
//	  "status": "success",
//	  "data": {"status": "ok", "clients": 3},
//	  "metadata": {"timestamp": "2026-01-05T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response timing information.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
}

// APIError is a machine-readable error code plus a human-readable message.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is the payload of the health endpoint.
type HealthStatus struct {
	Status  string `json:"status"`
	Clients int    `json:"clients"`
	Users   int    `json:"users"`
	Markers int    `json:"markers"`
	Alerts  int    `json:"alerts"`
	Chat    int    `json:"chat"`
	Uptime  string `json:"uptime"`
	Feed    string `json:"feed,omitempty"`
}
