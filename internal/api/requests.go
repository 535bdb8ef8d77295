// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// queryInt parses a non-negative integer query parameter. An absent
// parameter yields def; a malformed or negative value is an error the
// handler must surface as a 400.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return v, nil
}

// queryFloat parses a float query parameter constrained to [min, max].
func queryFloat(r *http.Request, name string, def, min, max float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < min || v > max {
		return 0, fmt.Errorf("%s must be a number between %g and %g", name, min, max)
	}
	return v, nil
}

// queryBool parses a boolean query parameter. Accepts the forms
// strconv.ParseBool does (true/false/1/0/t/f).
func queryBool(r *http.Request, name string, def bool) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean", name)
	}
	return v, nil
}

// pathID parses the {id} URL parameter as a positive int64. ok is false
// when the parameter is missing, malformed or non-positive.
func pathID(r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// registerRequest is the body of POST /auth/register.
type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// loginRequest is the body of POST /auth/login.
type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// rateMovieRequest is the body of PUT /me/ratings/{id}.
type rateMovieRequest struct {
	Score  float64 `json:"score" validate:"rating_score"`
	Review string  `json:"review" validate:"omitempty,max=2000"`
}

// watchHistoryRequest is the body of POST /me/watch-history.
type watchHistoryRequest struct {
	MovieID         int64 `json:"movie_id" validate:"required,gt=0"`
	DurationMinutes int   `json:"duration_minutes" validate:"omitempty,gte=0"`
	Completed       bool  `json:"completed"`
}

// createMovieRequest is the body of POST /movies.
type createMovieRequest struct {
	Title           string   `json:"title" validate:"required,max=512"`
	Description     string   `json:"description" validate:"omitempty,max=4096"`
	ReleaseDate     string   `json:"release_date" validate:"omitempty,datetime=2006-01-02"`
	DurationMinutes int      `json:"duration_minutes" validate:"omitempty,gte=0"`
	PosterURL       string   `json:"poster_url" validate:"omitempty,url"`
	IMDBRating      float64  `json:"imdb_rating" validate:"gte=0,lte=10"`
	PopularityScore float64  `json:"popularity_score" validate:"gte=0"`
	Genres          []string `json:"genres" validate:"omitempty,dive,required"`
	Tags            []string `json:"tags" validate:"omitempty,dive,required"`
}
