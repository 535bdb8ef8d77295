// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/cinescope/cinescope/internal/models"
)

func recIDs(recs []Recommendation) []int64 {
	ids := make([]int64, len(recs))
	for i, r := range recs {
		ids[i] = r.Movie.ID
	}
	return ids
}

func assertIDs(t *testing.T, recs []Recommendation, want []int64) {
	t.Helper()
	got := recIDs(recs)
	if len(got) != len(want) {
		t.Fatalf("got movies %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got movies %v, want %v", got, want)
		}
	}
}

func TestPopularityStrategy(t *testing.T) {
	store := catalogFixture()
	s := NewPopularityStrategy(store, DefaultConfig())

	tests := []struct {
		name string
		req  Request
		want []int64
	}{
		{
			name: "ranks rated movies by popularity",
			req:  Request{Limit: 10},
			want: []int64{1, 2, 3, 4, 5, 6},
		},
		{
			name: "honors limit",
			req:  Request{Limit: 2},
			want: []int64{1, 2},
		},
		{
			name: "min rating filters on imdb score",
			req:  Request{Limit: 10, MinRating: 7.5},
			want: []int64{3, 4, 5},
		},
		{
			name: "exclude rated removes the requester's movies",
			req:  Request{UserID: 1, Limit: 10, ExcludeRated: true},
			want: []int64{3, 5, 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := s.Recommend(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("Recommend: %v", err)
			}
			assertIDs(t, recs, tt.want)
		})
	}
}

func TestPopularityStrategyScoresNonIncreasing(t *testing.T) {
	s := NewPopularityStrategy(catalogFixture(), DefaultConfig())
	recs, err := s.Recommend(context.Background(), Request{Limit: 10})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].Score > recs[i-1].Score {
			t.Fatalf("score increased at rank %d: %v then %v", i, recs[i-1].Score, recs[i].Score)
		}
	}
}

func TestPopularityStrategyEmptyCatalog(t *testing.T) {
	s := NewPopularityStrategy(&stubStore{}, DefaultConfig())
	recs, err := s.Recommend(context.Background(), Request{Limit: 10})
	if err != nil {
		t.Fatalf("empty catalog must not error, got %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected no recommendations, got %v", recIDs(recs))
	}
}

func TestGenreStrategy(t *testing.T) {
	// User 10 likes two action movies and favorites a drama. The
	// profile weighs action 4.5+5.0 and drama 5.5; both genres are in
	// the top set and the three source movies never come back.
	store := catalogFixture()
	store.ratings = append(store.ratings,
		models.Rating{ID: 90, UserID: 10, MovieID: 1, Score: 4.5},
		models.Rating{ID: 91, UserID: 10, MovieID: 2, Score: 5.0},
	)
	store.favorites = append(store.favorites,
		models.Favorite{ID: 1, UserID: 10, MovieID: 4},
	)

	s := NewGenreStrategy(store, DefaultConfig())
	recs, err := s.Recommend(context.Background(), Request{UserID: 10, Limit: 10})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	// Action and drama candidates minus the rated/favorited movies,
	// popularity order.
	assertIDs(t, recs, []int64{3, 5})

	for _, r := range recs {
		if r.Reason == "" {
			t.Errorf("movie %d has empty reason", r.Movie.ID)
		}
	}
}

func TestGenreStrategyInsufficientSignal(t *testing.T) {
	store := catalogFixture()
	// User 11 has only a low rating, below the like threshold.
	store.ratings = append(store.ratings,
		models.Rating{ID: 95, UserID: 11, MovieID: 1, Score: 2.0},
	)
	s := NewGenreStrategy(store, DefaultConfig())

	tests := []struct {
		name   string
		userID int64
	}{
		{name: "anonymous", userID: 0},
		{name: "no activity", userID: 99},
		{name: "only dislikes", userID: 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Recommend(context.Background(), Request{UserID: tt.userID, Limit: 10})
			if !errors.Is(err, ErrInsufficientSignal) {
				t.Fatalf("err = %v, want ErrInsufficientSignal", err)
			}
		})
	}
}

func TestGenreStrategyFavoriteOutweighsRatings(t *testing.T) {
	// One favorited comedy against two liked action ratings: the
	// favorite weight (5.5) puts comedy above any single rating, so
	// comedy must appear in the top genres.
	store := catalogFixture()
	store.movies = append(store.movies,
		movie(7, "Second Banana", 2021, 30, 6.0, []models.Genre{genreComedy}, nil),
	)
	store.ratings = append(store.ratings,
		models.Rating{ID: 90, UserID: 10, MovieID: 1, Score: 4.0},
		models.Rating{ID: 91, UserID: 4, MovieID: 7, Score: 3.0},
	)
	store.favorites = append(store.favorites,
		models.Favorite{ID: 1, UserID: 10, MovieID: 6},
	)

	cfg := DefaultConfig()
	cfg.TopGenres = 1
	s := NewGenreStrategy(store, cfg)
	recs, err := s.Recommend(context.Background(), Request{UserID: 10, Limit: 10})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	for _, r := range recs {
		for _, g := range r.Movie.Genres {
			if g.ID == genreComedy.ID {
				return
			}
		}
	}
	t.Fatalf("expected comedy candidates, got %v", recIDs(recs))
}

func TestGenreStrategyExcludeWatched(t *testing.T) {
	store := catalogFixture()
	store.ratings = append(store.ratings,
		models.Rating{ID: 90, UserID: 10, MovieID: 1, Score: 5.0},
	)
	store.watched[10] = []int64{2}

	s := NewGenreStrategy(store, DefaultConfig())

	recs, err := s.Recommend(context.Background(), Request{UserID: 10, Limit: 10, ExcludeWatched: true})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	for _, id := range recIDs(recs) {
		if id == 2 {
			t.Fatal("watched movie 2 leaked into results")
		}
	}

	recs, err = s.Recommend(context.Background(), Request{UserID: 10, Limit: 10})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	found := false
	for _, id := range recIDs(recs) {
		if id == 2 {
			found = true
		}
	}
	if !found {
		t.Fatal("without the flag, watched movie 2 should be recommendable")
	}
}
