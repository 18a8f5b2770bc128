// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

/*
Package api provides the HTTP surface of Ghostmap on a chi router.

# Routes

	GET /ws              websocket upgrade into the shared map hub
	GET /api/v1/health   liveness plus collection sizes
	GET /api/v1/state    read-only snapshot (same shape as the join snapshot)
	GET /metrics         Prometheus exposition
	GET /tiles/*         offline map tiles from TILES_DIR
	GET /*               static client from STATIC_DIR

# Middleware Stack

Global, in order: RequestID, RealIP, Recoverer, PrometheusMetrics, CORS.
/api/v1 and /ws add a per-IP httprate limit; /api/v1 also sets security
headers. Static files and tiles are gzip-compressed by chi's Compress.

# Origin Checking

The websocket upgrader accepts a request when the allowed origin list
contains "*", when the Origin header matches an entry exactly, or when the
Origin header is absent (non-browser clients).

# Responses

JSON endpoints use the models.APIResponse envelope:

	{"status": "success", "data": {...}, "metadata": {"timestamp": "..."}}
	{"status": "error", "data": null, "metadata": {...}, "error": {"code": "...", "message": "..."}}
*/
package api
