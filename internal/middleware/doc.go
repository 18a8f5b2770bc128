// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

/*
Package middleware provides HTTP middleware shared by the Ghostmap router.

Key Components:

  - PrometheusMetrics: request count, latency and in-flight gauge, labeled
    by chi route pattern
  - RequestID: X-Request-ID propagation into chi and logging contexts

Both are func(http.Handler) http.Handler and plug straight into r.Use:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)

The metrics writer forwards http.Hijacker, so the websocket endpoint can
sit behind it.
*/
package middleware
