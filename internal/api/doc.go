// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

/*
Package api provides the HTTP surface of the service: routing, request
parsing, response shaping and the handlers that tie the catalog store,
the recommendation engine and the cache invalidator together.

# Architecture

Routing uses chi. Handlers are methods on a single Handler struct that
holds the service dependencies; the Router wires handlers to routes and
applies the middleware stack (request IDs, CORS, rate limiting, metrics,
JWT authentication).

Request flow for a typical endpoint:

	chi router
	  -> middleware.RequestID  (X-Request-ID, log correlation)
	  -> cors / httprate       (origin policy, per-IP limits)
	  -> middleware.Metrics    (Prometheus instrumentation)
	  -> auth middleware       (JWT, required or optional per route group)
	  -> handler               (parse, validate, call engine/store, respond)

All responses use the models.APIResponse envelope: a status string, the
payload under "data", metadata (timestamp, query time, cache state,
request ID) and a structured error object for failures. Error codes are
machine-readable strings such as VALIDATION_ERROR, NOT_FOUND and
AUTH_REQUIRED.

# Write endpoints and cache invalidation

Mutating endpoints (ratings, favorites, watch history, catalog writes)
perform the database write and then synchronously invalidate the cache
entries the write makes stale, before responding. A client that writes
and immediately reads therefore never observes its own stale data.

# Usage

	handler := api.NewHandler(db, engine, jwtManager, invalidator)
	router := api.NewRouter(handler, &cfg.Server)
	srv := &http.Server{Addr: addr, Handler: router.Setup()}
*/
package api
