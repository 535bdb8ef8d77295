// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/cinescope/cinescope/internal/auth"
	"github.com/cinescope/cinescope/internal/recommend"
)

// recommendRequestFromQuery builds an engine request from query parameters.
// Unknown algorithm names and malformed or out-of-range values are rejected.
func recommendRequestFromQuery(r *http.Request, userID int64) (recommend.Request, error) {
	algorithm, err := recommend.ParseAlgorithm(r.URL.Query().Get("algorithm"))
	if err != nil {
		return recommend.Request{}, err
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		return recommend.Request{}, err
	}
	minRating, err := queryFloat(r, "min_rating", 0, 0, 10)
	if err != nil {
		return recommend.Request{}, err
	}
	excludeRated, err := queryBool(r, "exclude_rated", true)
	if err != nil {
		return recommend.Request{}, err
	}
	excludeWatched, err := queryBool(r, "exclude_watched", false)
	if err != nil {
		return recommend.Request{}, err
	}
	return recommend.Request{
		UserID:         userID,
		Algorithm:      algorithm,
		Limit:          limit,
		MinRating:      minRating,
		ExcludeRated:   excludeRated,
		ExcludeWatched: excludeWatched,
	}, nil
}

// Recommendations returns personalized recommendations for the
// authenticated user.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, codeAuthRequired, "Authentication required", nil)
		return
	}

	req, err := recommendRequestFromQuery(r, identity.UserID)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, codeValidation, err.Error(), nil)
		return
	}

	resp, err := h.engine.Recommend(r.Context(), req)
	if err != nil {
		if errors.Is(err, recommend.ErrInsufficientSignal) {
			// The popularity terminus never reports this, so reaching
			// here means an empty catalog.
			respondData(w, r, http.StatusOK, start, false, &recommend.Response{
				AlgorithmRequested: req.Algorithm,
				AlgorithmUsed:      recommend.AlgorithmPopularity,
				Recommendations:    []recommend.Recommendation{},
			})
			return
		}
		respondError(w, r, http.StatusInternalServerError, codeInternal, "Failed to compute recommendations", err)
		return
	}

	respondData(w, r, http.StatusOK, start, resp.Cached, resp)
}

// SimilarMovies returns movies similar to the given one by shared genres,
// tags or both.
func (h *Handler) SimilarMovies(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, ok := pathID(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, codeValidation, "Movie ID must be a positive integer", nil)
		return
	}

	method, err := recommend.ParseSimilarMethod(r.URL.Query().Get("method"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, codeValidation, "Unknown similarity method", nil)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, codeValidation, err.Error(), nil)
		return
	}

	results, cached, err := h.engine.SimilarMovies(r.Context(), id, method, limit)
	if err != nil {
		if errors.Is(err, recommend.ErrMovieNotFound) {
			respondError(w, r, http.StatusNotFound, codeNotFound, "Movie not found", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, codeInternal, "Failed to find similar movies", err)
		return
	}

	respondData(w, r, http.StatusOK, start, cached, results)
}

// TrendingMovies returns recently added movies ranked by popularity over
// a daily, weekly or monthly window.
func (h *Handler) TrendingMovies(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	period, err := recommend.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, codeValidation, "Unknown trending period", nil)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, codeValidation, err.Error(), nil)
		return
	}

	movies, cached, err := h.engine.Trending(r.Context(), period, limit)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, codeInternal, "Failed to compute trending movies", err)
		return
	}

	respondData(w, r, http.StatusOK, start, cached, movies)
}
