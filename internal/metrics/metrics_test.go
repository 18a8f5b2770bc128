// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/health", "200"))

	RecordAPIRequest("GET", "/api/v1/health", "200", 5*time.Millisecond)
	RecordAPIRequest("GET", "/api/v1/health", "200", 7*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/health", "200"))
	if after-before != 2 {
		t.Errorf("Expected 2 recorded requests, got %v", after-before)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("active requests = %v, want %v", got, before+1)
	}

	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("active requests = %v, want %v", got, before)
	}
}

func TestRecordCommand(t *testing.T) {
	tests := []struct {
		command string
		result  string
	}{
		{"sendLocation", "applied"},
		{"deleteMarker", "noop"},
		{"dangerAlert", "rate_limited"},
		{"bogus", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.command+"_"+tt.result, func(t *testing.T) {
			c := CommandsTotal.WithLabelValues(tt.command, tt.result)
			before := testutil.ToFloat64(c)
			RecordCommand(tt.command, tt.result)
			if got := testutil.ToFloat64(c); got != before+1 {
				t.Errorf("counter = %v, want %v", got, before+1)
			}
		})
	}
}

func TestRecordEvent(t *testing.T) {
	events := EventsTotal.WithLabelValues("newMarker", "all")
	beforeEvents := testutil.ToFloat64(events)
	beforeSent := testutil.ToFloat64(WSMessagesSent)

	RecordEvent("newMarker", "all", 3)

	if got := testutil.ToFloat64(events); got != beforeEvents+1 {
		t.Errorf("events = %v, want %v", got, beforeEvents+1)
	}
	if got := testutil.ToFloat64(WSMessagesSent); got != beforeSent+3 {
		t.Errorf("messages sent = %v, want %v", got, beforeSent+3)
	}
}

func TestRecordSweep(t *testing.T) {
	before := testutil.ToFloat64(AlertsExpired)

	RecordSweep(time.Millisecond, 2)
	RecordSweep(time.Millisecond, 0)

	if got := testutil.ToFloat64(AlertsExpired); got != before+2 {
		t.Errorf("expired = %v, want %v", got, before+2)
	}
}

func TestRecordCircuitBreakerTransition(t *testing.T) {
	RecordCircuitBreakerTransition("feed", "closed", "open", 2)

	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("feed")); got != 2 {
		t.Errorf("breaker state = %v, want 2", got)
	}
	if got := testutil.ToFloat64(CircuitBreakerTransitions.WithLabelValues("feed", "closed", "open")); got < 1 {
		t.Errorf("transitions = %v, want at least 1", got)
	}
}
