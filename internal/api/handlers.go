// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package api

import (
	"net/http"
	"time"

	"github.com/cinescope/cinescope/internal/auth"
	"github.com/cinescope/cinescope/internal/cache"
	"github.com/cinescope/cinescope/internal/database"
	"github.com/cinescope/cinescope/internal/recommend"
)

// Handler bundles the service dependencies used by all HTTP handlers.
type Handler struct {
	db          *database.DB
	engine      *recommend.Engine
	jwt         *auth.JWTManager
	invalidator *cache.Invalidator
}

// NewHandler creates the handler set backing the router.
func NewHandler(db *database.DB, engine *recommend.Engine, jwt *auth.JWTManager, invalidator *cache.Invalidator) *Handler {
	return &Handler{
		db:          db,
		engine:      engine,
		jwt:         jwt,
		invalidator: invalidator,
	}
}

// Health reports service liveness and database reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	status := "healthy"
	dbStatus := "up"
	httpStatus := http.StatusOK
	if err := h.db.Ping(r.Context()); err != nil {
		status = "degraded"
		dbStatus = "down"
		httpStatus = http.StatusServiceUnavailable
	}

	respondData(w, r, httpStatus, start, false, map[string]string{
		"status":   status,
		"database": dbStatus,
	})
}
