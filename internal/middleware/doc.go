// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

/*
Package middleware provides HTTP middleware components for the application.

This package implements infrastructure middleware for request ID tracking and
Prometheus metrics instrumentation. These components work alongside the
authentication middleware in internal/auth to form the router's middleware
stack.

Key Components:

  - Request ID: UUID-based request tracking for log correlation
  - Prometheus Metrics: HTTP request/response instrumentation

All middleware follows the standard net/http pattern and composes with
chi's router:

	r.Use(middleware.RequestID)
	r.Use(middleware.Metrics)

Usage Example - Request ID:

	// Access the request ID in a handler
	func handler(w http.ResponseWriter, r *http.Request) {
	    id := middleware.GetRequestID(r.Context())
	    logging.Ctx(r.Context()).Info().Msg("processing request")
	}

The request ID is echoed in the X-Request-ID response header and honoured
when supplied by an upstream proxy.

Thread Safety:

All components are safe for concurrent use. Request IDs are carried in
immutable context values and metrics use Prometheus's atomic collectors.

See Also:

  - internal/auth: Authentication middleware
  - internal/api: HTTP handlers wrapped by this stack
  - internal/metrics: Prometheus metric definitions
*/
package middleware
