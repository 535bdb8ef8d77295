// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/goccy/go-json"

	"github.com/cinescope/cinescope/internal/models"
)

func ratingPath(movieID int64) string {
	return fmt.Sprintf("/api/v1/me/ratings/%d", movieID)
}

func favoritePath(movieID int64) string {
	return fmt.Sprintf("/api/v1/me/favorites/%d", movieID)
}

func TestRateMovie(t *testing.T) {
	ts := newTestServer(t)
	catalog := ts.seedCatalog()
	token := ts.register("astrid")
	movieID := catalog["Die Fast"].ID

	status, env := ts.do(http.MethodPut, ratingPath(movieID), token, rateMovieRequest{
		Score:  4.5,
		Review: "relentless",
	})
	if status != http.StatusOK {
		t.Fatalf("status = %d, error %+v", status, env.Error)
	}

	var rating models.Rating
	if err := json.Unmarshal(env.Data, &rating); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rating.Score != 4.5 || rating.Review != "relentless" {
		t.Errorf("rating = %+v", rating)
	}

	// Re-rating updates in place rather than duplicating.
	status, env = ts.do(http.MethodPut, ratingPath(movieID), token, rateMovieRequest{Score: 3.0})
	if status != http.StatusOK {
		t.Fatalf("re-rate status = %d, error %+v", status, env.Error)
	}

	status, env = ts.do(http.MethodGet, "/api/v1/me/ratings", token, nil)
	if status != http.StatusOK {
		t.Fatalf("list status = %d", status)
	}
	var ratings []models.Rating
	if err := json.Unmarshal(env.Data, &ratings); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(ratings) != 1 {
		t.Fatalf("got %d ratings, want 1", len(ratings))
	}
	if ratings[0].Score != 3.0 {
		t.Errorf("score = %.1f, want 3.0", ratings[0].Score)
	}

	// Aggregates on the movie reflect the rating.
	status, env = ts.do(http.MethodGet, moviePath(movieID, ""), "", nil)
	if status != http.StatusOK {
		t.Fatalf("get movie status = %d", status)
	}
	var movie models.Movie
	if err := json.Unmarshal(env.Data, &movie); err != nil {
		t.Fatalf("decode movie: %v", err)
	}
	if movie.RatingCount != 1 || movie.AverageRating != 3.0 {
		t.Errorf("aggregates = count %d avg %.1f, want 1 / 3.0", movie.RatingCount, movie.AverageRating)
	}
}

func TestRateMovieErrors(t *testing.T) {
	ts := newTestServer(t)
	catalog := ts.seedCatalog()
	token := ts.register("astrid")

	tests := []struct {
		name       string
		path       string
		token      string
		req        rateMovieRequest
		wantStatus int
	}{
		{
			name:       "no token",
			path:       ratingPath(catalog["Die Fast"].ID),
			req:        rateMovieRequest{Score: 4.0},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "score above scale",
			path:       ratingPath(catalog["Die Fast"].ID),
			token:      token,
			req:        rateMovieRequest{Score: 5.5},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "score below scale",
			path:       ratingPath(catalog["Die Fast"].ID),
			token:      token,
			req:        rateMovieRequest{Score: 0.0},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown movie",
			path:       ratingPath(9999),
			token:      token,
			req:        rateMovieRequest{Score: 4.0},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := ts.do(http.MethodPut, tt.path, tt.token, tt.req)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
		})
	}
}

func TestDeleteRating(t *testing.T) {
	ts := newTestServer(t)
	catalog := ts.seedCatalog()
	token := ts.register("astrid")
	movieID := catalog["Die Fast"].ID

	if status, _ := ts.do(http.MethodPut, ratingPath(movieID), token, rateMovieRequest{Score: 4.0}); status != http.StatusOK {
		t.Fatalf("rate status = %d", status)
	}

	if status, _ := ts.do(http.MethodDelete, ratingPath(movieID), token, nil); status != http.StatusOK {
		t.Fatalf("delete status = %d", status)
	}

	// Deleting again reports not found.
	if status, _ := ts.do(http.MethodDelete, ratingPath(movieID), token, nil); status != http.StatusNotFound {
		t.Errorf("second delete status = %d, want %d", status, http.StatusNotFound)
	}
}

func TestFavorites(t *testing.T) {
	ts := newTestServer(t)
	catalog := ts.seedCatalog()
	token := ts.register("astrid")
	movieID := catalog["Quiet Rooms"].ID

	status, env := ts.do(http.MethodPost, favoritePath(movieID), token, nil)
	if status != http.StatusCreated {
		t.Fatalf("add status = %d, error %+v", status, env.Error)
	}

	// Favoriting twice is idempotent.
	if status, _ = ts.do(http.MethodPost, favoritePath(movieID), token, nil); status != http.StatusCreated {
		t.Fatalf("repeat add status = %d", status)
	}

	status, env = ts.do(http.MethodGet, "/api/v1/me/favorites", token, nil)
	if status != http.StatusOK {
		t.Fatalf("list status = %d", status)
	}
	var favorites []models.Favorite
	if err := json.Unmarshal(env.Data, &favorites); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(favorites) != 1 || favorites[0].MovieID != movieID {
		t.Fatalf("favorites = %+v, want single entry for movie %d", favorites, movieID)
	}

	if status, _ = ts.do(http.MethodDelete, favoritePath(movieID), token, nil); status != http.StatusOK {
		t.Fatalf("remove status = %d", status)
	}
	if status, _ = ts.do(http.MethodDelete, favoritePath(movieID), token, nil); status != http.StatusNotFound {
		t.Errorf("second remove status = %d, want %d", status, http.StatusNotFound)
	}
}

func TestWatchHistory(t *testing.T) {
	ts := newTestServer(t)
	catalog := ts.seedCatalog()
	token := ts.register("astrid")

	status, env := ts.do(http.MethodPost, "/api/v1/me/watch-history", token, watchHistoryRequest{
		MovieID:         catalog["The Letter"].ID,
		DurationMinutes: 104,
		Completed:       true,
	})
	if status != http.StatusCreated {
		t.Fatalf("add status = %d, error %+v", status, env.Error)
	}

	var entry models.WatchHistory
	if err := json.Unmarshal(env.Data, &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry.ID == 0 || entry.WatchedAt.IsZero() {
		t.Errorf("entry not fully populated: %+v", entry)
	}

	status, env = ts.do(http.MethodGet, "/api/v1/me/watch-history", token, nil)
	if status != http.StatusOK {
		t.Fatalf("list status = %d", status)
	}
	var history []models.WatchHistory
	if err := json.Unmarshal(env.Data, &history); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(history) != 1 || history[0].MovieID != catalog["The Letter"].ID {
		t.Errorf("history = %+v", history)
	}
}

func TestWatchHistoryUnknownMovie(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register("astrid")

	status, _ := ts.do(http.MethodPost, "/api/v1/me/watch-history", token, watchHistoryRequest{MovieID: 424242})
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want %d", status, http.StatusNotFound)
	}
}

// TestRatingInvalidatesCachedRecommendations covers the write-then-read
// contract: a cached recommendation list is recomputed after the user
// rates, never served stale.
func TestRatingInvalidatesCachedRecommendations(t *testing.T) {
	ts := newTestServer(t)
	catalog := ts.seedCatalog()
	token := ts.register("astrid")

	// Prime the cache.
	status, env := ts.do(http.MethodGet, "/api/v1/recommendations/for-me", token, nil)
	if status != http.StatusOK {
		t.Fatalf("first status = %d, error %+v", status, env.Error)
	}
	status, env = ts.do(http.MethodGet, "/api/v1/recommendations/for-me", token, nil)
	if status != http.StatusOK {
		t.Fatalf("second status = %d", status)
	}
	if !env.Metadata.Cached {
		t.Fatal("second read should be cached")
	}

	// A rating drops the user's cached entries.
	if status, _ = ts.do(http.MethodPut, ratingPath(catalog["Die Fast"].ID), token, rateMovieRequest{Score: 5.0}); status != http.StatusOK {
		t.Fatalf("rate status = %d", status)
	}

	status, env = ts.do(http.MethodGet, "/api/v1/recommendations/for-me", token, nil)
	if status != http.StatusOK {
		t.Fatalf("third status = %d", status)
	}
	if env.Metadata.Cached {
		t.Error("read after rating should be recomputed, not cached")
	}
}
