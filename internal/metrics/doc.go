// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

/*
Package metrics provides Prometheus collectors for the shared map service.

All collectors are registered with the default registry through promauto and
exposed by the HTTP server at /metrics:

	curl http://localhost:3000/metrics

# Available Metrics

HTTP:
  - ghostmap_http_requests_total{method,endpoint,status}
  - ghostmap_http_request_duration_seconds{method,endpoint}
  - ghostmap_http_requests_in_flight

WebSocket:
  - ghostmap_websocket_connections
  - ghostmap_websocket_messages_sent_total
  - ghostmap_websocket_messages_received_total
  - ghostmap_websocket_dropped_clients_total
  - ghostmap_websocket_errors_total{error_type}

Router and state:
  - ghostmap_commands_total{command,result}
  - ghostmap_events_total{event,scope}
  - ghostmap_state_entries{collection}
  - ghostmap_alerts_expired_total
  - ghostmap_sweep_duration_seconds

Event feed:
  - ghostmap_feed_publish_total{result}
  - ghostmap_circuit_breaker_state{name}
  - ghostmap_circuit_breaker_state_transitions_total{name,from_state,to_state}

Helpers such as RecordCommand and RecordEvent keep label usage consistent
across packages.
*/
package metrics
