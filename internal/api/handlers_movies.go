// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/cinescope/cinescope/internal/models"
	"github.com/cinescope/cinescope/internal/recommend"
	"github.com/cinescope/cinescope/internal/validation"
)

// GetMovie returns a single movie with genres, tags and rating aggregates.
func (h *Handler) GetMovie(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, ok := pathID(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, codeValidation, "Movie ID must be a positive integer", nil)
		return
	}

	movie, err := h.db.GetMovie(r.Context(), id)
	if err != nil {
		if errors.Is(err, recommend.ErrMovieNotFound) {
			respondError(w, r, http.StatusNotFound, codeNotFound, "Movie not found", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, codeInternal, "Failed to load movie", err)
		return
	}

	respondData(w, r, http.StatusOK, start, false, movie)
}

// ListMovies returns the catalog, optionally filtered by minimum IMDb
// rating and genre.
func (h *Handler) ListMovies(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	minRating, err := queryFloat(r, "min_rating", 0, 0, 10)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, codeValidation, err.Error(), nil)
		return
	}
	ratedOnly, err := queryBool(r, "rated_only", false)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, codeValidation, err.Error(), nil)
		return
	}
	genreID, err := queryInt(r, "genre_id", 0)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, codeValidation, err.Error(), nil)
		return
	}

	filter := recommend.MovieFilter{
		MinIMDBRating: minRating,
		RatedOnly:     ratedOnly,
	}
	if genreID > 0 {
		filter.GenreIDs = []int64{int64(genreID)}
	}

	movies, err := h.db.ListMovies(r.Context(), filter)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, codeInternal, "Failed to list movies", err)
		return
	}

	respondData(w, r, http.StatusOK, start, false, movies)
}

// PopularMovies returns the catalog ranked by popularity, served from
// cache when fresh.
func (h *Handler) PopularMovies(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, codeValidation, err.Error(), nil)
		return
	}
	minRating, err := queryFloat(r, "min_rating", 0, 0, 10)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, codeValidation, err.Error(), nil)
		return
	}

	results, cached, err := h.engine.Popular(r.Context(), limit, minRating)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, codeInternal, "Failed to rank movies", err)
		return
	}

	respondData(w, r, http.StatusOK, start, cached, results)
}

// GetMovieStats returns a movie's rating aggregates, served from cache
// when fresh.
func (h *Handler) GetMovieStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, ok := pathID(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, codeValidation, "Movie ID must be a positive integer", nil)
		return
	}

	stats, cached, err := h.engine.MovieStats(r.Context(), id)
	if err != nil {
		if errors.Is(err, recommend.ErrMovieNotFound) {
			respondError(w, r, http.StatusNotFound, codeNotFound, "Movie not found", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, codeInternal, "Failed to load movie stats", err)
		return
	}

	respondData(w, r, http.StatusOK, start, cached, stats)
}

// ListGenres returns all genres in the catalog.
func (h *Handler) ListGenres(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	genres, err := h.db.ListGenres(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, codeInternal, "Failed to list genres", err)
		return
	}

	respondData(w, r, http.StatusOK, start, false, genres)
}

// CreateMovie adds a catalog entry. Genre and tag names are upserted so
// new attributes can be introduced alongside the movie.
func (h *Handler) CreateMovie(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req createMovieRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, codeValidation, "Invalid request body", err)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	movie := &models.Movie{
		Title:           req.Title,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		PosterURL:       req.PosterURL,
		IMDBRating:      req.IMDBRating,
		PopularityScore: req.PopularityScore,
	}
	if req.ReleaseDate != "" {
		released, err := time.Parse("2006-01-02", req.ReleaseDate)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, codeValidation, "Release date must be YYYY-MM-DD", nil)
			return
		}
		movie.ReleaseDate = released
	}

	for _, name := range req.Genres {
		genre, err := h.db.UpsertGenre(r.Context(), name)
		if err != nil {
			respondError(w, r, http.StatusInternalServerError, codeInternal, "Failed to create movie", err)
			return
		}
		movie.Genres = append(movie.Genres, genre)
	}
	for _, name := range req.Tags {
		tag, err := h.db.UpsertTag(r.Context(), name)
		if err != nil {
			respondError(w, r, http.StatusInternalServerError, codeInternal, "Failed to create movie", err)
			return
		}
		movie.Tags = append(movie.Tags, tag)
	}

	if err := h.db.CreateMovie(r.Context(), movie); err != nil {
		respondError(w, r, http.StatusInternalServerError, codeInternal, "Failed to create movie", err)
		return
	}

	h.invalidator.MovieChanged(r.Context(), movie.ID)

	respondData(w, r, http.StatusCreated, start, false, movie)
}
