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
	"github.com/cinescope/cinescope/internal/database"
	"github.com/cinescope/cinescope/internal/models"
	"github.com/cinescope/cinescope/internal/recommend"
	"github.com/cinescope/cinescope/internal/validation"
)

// identity extracts the authenticated user, responding 401 when absent.
// Activity routes sit behind required auth so absence indicates a routing
// misconfiguration rather than a missing token.
func identity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, codeAuthRequired, "Authentication required", nil)
	}
	return id, ok
}

// RateMovie creates or updates the caller's rating for a movie, then
// invalidates the cached results the rating makes stale.
func (h *Handler) RateMovie(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	user, ok := identity(w, r)
	if !ok {
		return
	}
	movieID, ok := pathID(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, codeValidation, "Movie ID must be a positive integer", nil)
		return
	}

	var req rateMovieRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, codeValidation, "Invalid request body", err)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	rating, err := h.db.UpsertRating(r.Context(), user.UserID, movieID, req.Score, req.Review)
	if err != nil {
		if errors.Is(err, recommend.ErrMovieNotFound) {
			respondError(w, r, http.StatusNotFound, codeNotFound, "Movie not found", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, codeInternal, "Failed to save rating", err)
		return
	}

	h.invalidator.RatingChanged(r.Context(), user.UserID, movieID)

	respondData(w, r, http.StatusOK, start, false, rating)
}

// DeleteRating removes the caller's rating for a movie.
func (h *Handler) DeleteRating(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	user, ok := identity(w, r)
	if !ok {
		return
	}
	movieID, ok := pathID(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, codeValidation, "Movie ID must be a positive integer", nil)
		return
	}

	if err := h.db.DeleteRating(r.Context(), user.UserID, movieID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, codeNotFound, "Rating not found", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, codeInternal, "Failed to delete rating", err)
		return
	}

	h.invalidator.RatingChanged(r.Context(), user.UserID, movieID)

	respondData(w, r, http.StatusOK, start, false, map[string]int64{"movie_id": movieID})
}

// ListMyRatings returns all of the caller's ratings.
func (h *Handler) ListMyRatings(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	user, ok := identity(w, r)
	if !ok {
		return
	}

	ratings, err := h.db.RatingsForUser(r.Context(), user.UserID)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, codeInternal, "Failed to list ratings", err)
		return
	}

	respondData(w, r, http.StatusOK, start, false, ratings)
}

// AddFavorite marks a movie as one of the caller's favorites. Favoriting
// the same movie twice is a no-op that returns the existing record.
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	user, ok := identity(w, r)
	if !ok {
		return
	}
	movieID, ok := pathID(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, codeValidation, "Movie ID must be a positive integer", nil)
		return
	}

	favorite, err := h.db.AddFavorite(r.Context(), user.UserID, movieID)
	if err != nil {
		if errors.Is(err, recommend.ErrMovieNotFound) {
			respondError(w, r, http.StatusNotFound, codeNotFound, "Movie not found", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, codeInternal, "Failed to add favorite", err)
		return
	}

	h.invalidator.FavoriteChanged(r.Context(), user.UserID, movieID)

	respondData(w, r, http.StatusCreated, start, false, favorite)
}

// RemoveFavorite removes a movie from the caller's favorites.
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	user, ok := identity(w, r)
	if !ok {
		return
	}
	movieID, ok := pathID(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, codeValidation, "Movie ID must be a positive integer", nil)
		return
	}

	if err := h.db.RemoveFavorite(r.Context(), user.UserID, movieID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, codeNotFound, "Favorite not found", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, codeInternal, "Failed to remove favorite", err)
		return
	}

	h.invalidator.FavoriteChanged(r.Context(), user.UserID, movieID)

	respondData(w, r, http.StatusOK, start, false, map[string]int64{"movie_id": movieID})
}

// ListMyFavorites returns the caller's favorites.
func (h *Handler) ListMyFavorites(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	user, ok := identity(w, r)
	if !ok {
		return
	}

	favorites, err := h.db.FavoritesForUser(r.Context(), user.UserID)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, codeInternal, "Failed to list favorites", err)
		return
	}

	respondData(w, r, http.StatusOK, start, false, favorites)
}

// AddWatchHistory appends a watch event for the caller.
func (h *Handler) AddWatchHistory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	user, ok := identity(w, r)
	if !ok {
		return
	}

	var req watchHistoryRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, codeValidation, "Invalid request body", err)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	entry := &models.WatchHistory{
		UserID:          user.UserID,
		MovieID:         req.MovieID,
		DurationMinutes: req.DurationMinutes,
		Completed:       req.Completed,
	}
	if err := h.db.AddWatchHistory(r.Context(), entry); err != nil {
		if errors.Is(err, recommend.ErrMovieNotFound) {
			respondError(w, r, http.StatusNotFound, codeNotFound, "Movie not found", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, codeInternal, "Failed to record watch event", err)
		return
	}

	h.invalidator.WatchHistoryChanged(r.Context(), user.UserID, req.MovieID)

	respondData(w, r, http.StatusCreated, start, false, entry)
}

// ListMyWatchHistory returns the caller's watch events, most recent first.
func (h *Handler) ListMyWatchHistory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	user, ok := identity(w, r)
	if !ok {
		return
	}

	history, err := h.db.WatchHistoryForUser(r.Context(), user.UserID)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, codeInternal, "Failed to list watch history", err)
		return
	}

	respondData(w, r, http.StatusOK, start, false, history)
}
