// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cinescope/cinescope/internal/auth"
	"github.com/cinescope/cinescope/internal/logging"
	"github.com/cinescope/cinescope/internal/recommend"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Origin policy is enforced by the CORS middleware in front of the
	// router; the upgrader accepts what the router let through.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is a client message asking for a recommendation refresh.
type wsRequest struct {
	Algorithm string  `json:"algorithm"`
	Limit     int     `json:"limit"`
	MinRating float64 `json:"min_rating"`
}

// wsMessage is the server-to-client frame envelope.
type wsMessage struct {
	Type  string              `json:"type"`
	Data  *recommend.Response `json:"data,omitempty"`
	Error string              `json:"error,omitempty"`
}

// RecommendationsWS streams recommendations over a WebSocket. The server
// pushes an initial result set on connect, then recomputes whenever the
// client sends a request frame. Rating or favoriting in another tab
// followed by a refresh frame returns updated results because writes
// invalidate the cache eagerly.
func (h *Handler) RecommendationsWS(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, codeAuthRequired, "Authentication required", nil)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written its own error response.
		logging.Ctx(r.Context()).Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer func() { _ = conn.Close() }()

	logger := logging.Ctx(r.Context()).With().Int64("user_id", user.UserID).Logger()

	send := func(req recommend.Request) bool {
		resp, err := h.engine.Recommend(r.Context(), req)
		if err != nil {
			_ = conn.WriteJSON(wsMessage{Type: "error", Error: "failed to compute recommendations"})
			logger.Error().Err(err).Msg("WebSocket recommendation failed")
			return false
		}
		return conn.WriteJSON(wsMessage{Type: "recommendations", Data: resp}) == nil
	}

	// Initial push with defaults.
	if !send(recommend.Request{UserID: user.UserID, Algorithm: recommend.AlgorithmHybrid, ExcludeRated: true}) {
		return
	}

	for {
		if err := conn.SetReadDeadline(time.Now().Add(5 * time.Minute)); err != nil {
			return
		}

		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug().Err(err).Msg("WebSocket closed")
			}
			return
		}

		algorithm, err := recommend.ParseAlgorithm(req.Algorithm)
		if err != nil {
			_ = conn.WriteJSON(wsMessage{Type: "error", Error: "unknown algorithm"})
			continue
		}

		if !send(recommend.Request{
			UserID:       user.UserID,
			Algorithm:    algorithm,
			Limit:        req.Limit,
			MinRating:    req.MinRating,
			ExcludeRated: true,
		}) {
			return
		}
	}
}
