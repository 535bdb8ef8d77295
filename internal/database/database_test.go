// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package database

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/cinescope/cinescope/internal/config"
	"github.com/cinescope/cinescope/internal/models"
	"github.com/cinescope/cinescope/internal/recommend"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "256MB",
		Threads:   2,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return db
}

func seedMovie(t *testing.T, db *DB, title string, year int, imdb, popularity float64, genres []models.Genre, tags []models.Tag) *models.Movie {
	t.Helper()
	m := &models.Movie{
		Title:           title,
		ReleaseDate:     time.Date(year, time.March, 1, 0, 0, 0, 0, time.UTC),
		IMDBRating:      imdb,
		PopularityScore: popularity,
		Genres:          genres,
		Tags:            tags,
	}
	if err := db.CreateMovie(context.Background(), m); err != nil {
		t.Fatalf("CreateMovie(%q): %v", title, err)
	}
	return m
}

func TestMovieRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	action, err := db.UpsertGenre(ctx, "Action")
	if err != nil {
		t.Fatalf("UpsertGenre: %v", err)
	}
	heist, err := db.UpsertTag(ctx, "heist")
	if err != nil {
		t.Fatalf("UpsertTag: %v", err)
	}

	created := seedMovie(t, db, "Test Movie", 2020, 7.5, 80, []models.Genre{action}, []models.Tag{heist})
	if created.ID == 0 {
		t.Fatal("CreateMovie did not assign an ID")
	}

	got, err := db.GetMovie(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetMovie: %v", err)
	}
	if got.Title != "Test Movie" || got.IMDBRating != 7.5 {
		t.Errorf("got %+v", got)
	}
	if len(got.Genres) != 1 || got.Genres[0].Name != "Action" {
		t.Errorf("genres = %+v, want Action", got.Genres)
	}
	if len(got.Tags) != 1 || got.Tags[0].Name != "heist" {
		t.Errorf("tags = %+v, want heist", got.Tags)
	}
	if got.RatingCount != 0 || got.AverageRating != 0 {
		t.Errorf("fresh movie has aggregates %v/%d", got.AverageRating, got.RatingCount)
	}
}

func TestGetMovieNotFound(t *testing.T) {
	db := newTestDB(t)
	_, err := db.GetMovie(context.Background(), 12345)
	if !errors.Is(err, recommend.ErrMovieNotFound) {
		t.Fatalf("err = %v, want ErrMovieNotFound", err)
	}
}

func TestUpsertGenreIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first, err := db.UpsertGenre(ctx, "Drama")
	if err != nil {
		t.Fatalf("first UpsertGenre: %v", err)
	}
	second, err := db.UpsertGenre(ctx, "Drama")
	if err != nil {
		t.Fatalf("second UpsertGenre: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("duplicate genre created: %d vs %d", first.ID, second.ID)
	}
}

func TestRatingUpsertAndAggregates(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	m := seedMovie(t, db, "Rated Movie", 2018, 7.0, 50, nil, nil)
	u, err := db.CreateUser(ctx, "alice", "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if _, err := db.UpsertRating(ctx, u.ID, m.ID, 3.0, ""); err != nil {
		t.Fatalf("UpsertRating: %v", err)
	}
	// Re-rating replaces, never duplicates.
	r, err := db.UpsertRating(ctx, u.ID, m.ID, 4.5, "solid rewatch")
	if err != nil {
		t.Fatalf("re-rate: %v", err)
	}
	if r.Score != 4.5 {
		t.Errorf("score = %v, want 4.5", r.Score)
	}

	ratings, err := db.RatingsForUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("RatingsForUser: %v", err)
	}
	if len(ratings) != 1 {
		t.Fatalf("got %d ratings, want 1", len(ratings))
	}

	got, err := db.GetMovie(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetMovie: %v", err)
	}
	if got.RatingCount != 1 || math.Abs(got.AverageRating-4.5) > 1e-9 {
		t.Errorf("aggregates = %v/%d, want 4.5/1", got.AverageRating, got.RatingCount)
	}
}

func TestUpsertRatingUnknownMovie(t *testing.T) {
	db := newTestDB(t)
	_, err := db.UpsertRating(context.Background(), 1, 999, 4.0, "")
	if !errors.Is(err, recommend.ErrMovieNotFound) {
		t.Fatalf("err = %v, want ErrMovieNotFound", err)
	}
}

func TestDeleteRating(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	m := seedMovie(t, db, "Movie", 2018, 7.0, 50, nil, nil)
	if _, err := db.UpsertRating(ctx, 1, m.ID, 4.0, ""); err != nil {
		t.Fatalf("UpsertRating: %v", err)
	}
	if err := db.DeleteRating(ctx, 1, m.ID); err != nil {
		t.Fatalf("DeleteRating: %v", err)
	}
	if err := db.DeleteRating(ctx, 1, m.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestFavoritesIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	m := seedMovie(t, db, "Favorite Movie", 2018, 7.0, 50, nil, nil)

	first, err := db.AddFavorite(ctx, 7, m.ID)
	if err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}
	second, err := db.AddFavorite(ctx, 7, m.ID)
	if err != nil {
		t.Fatalf("repeat AddFavorite: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("favorite duplicated: %d vs %d", first.ID, second.ID)
	}

	favorites, err := db.FavoritesForUser(ctx, 7)
	if err != nil {
		t.Fatalf("FavoritesForUser: %v", err)
	}
	if len(favorites) != 1 {
		t.Fatalf("got %d favorites, want 1", len(favorites))
	}

	if err := db.RemoveFavorite(ctx, 7, m.ID); err != nil {
		t.Fatalf("RemoveFavorite: %v", err)
	}
	if err := db.RemoveFavorite(ctx, 7, m.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second remove err = %v, want ErrNotFound", err)
	}
}

func TestWatchHistory(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	m := seedMovie(t, db, "Watched Movie", 2018, 7.0, 50, nil, nil)

	// Two views of the same movie are two rows but one watched ID.
	for range 2 {
		w := &models.WatchHistory{UserID: 3, MovieID: m.ID, DurationMinutes: 100, Completed: true}
		if err := db.AddWatchHistory(ctx, w); err != nil {
			t.Fatalf("AddWatchHistory: %v", err)
		}
		if w.ID == 0 {
			t.Fatal("watch event did not get an ID")
		}
	}

	history, err := db.WatchHistoryForUser(ctx, 3)
	if err != nil {
		t.Fatalf("WatchHistoryForUser: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("got %d events, want 2", len(history))
	}

	ids, err := db.WatchedMovieIDs(ctx, 3)
	if err != nil {
		t.Fatalf("WatchedMovieIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != m.ID {
		t.Fatalf("watched IDs = %v, want [%d]", ids, m.ID)
	}
}

func TestListMoviesFilters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	action, _ := db.UpsertGenre(ctx, "Action")
	drama, _ := db.UpsertGenre(ctx, "Drama")

	m1 := seedMovie(t, db, "Action High", 2020, 8.0, 90, []models.Genre{action}, nil)
	m2 := seedMovie(t, db, "Drama Low", 2019, 6.0, 40, []models.Genre{drama}, nil)
	if _, err := db.UpsertRating(ctx, 1, m1.ID, 4.0, ""); err != nil {
		t.Fatalf("UpsertRating: %v", err)
	}

	rated, err := db.ListMovies(ctx, recommend.MovieFilter{RatedOnly: true})
	if err != nil {
		t.Fatalf("ListMovies rated: %v", err)
	}
	if len(rated) != 1 || rated[0].ID != m1.ID {
		t.Fatalf("rated-only = %+v, want only movie %d", rated, m1.ID)
	}

	highbrow, err := db.ListMovies(ctx, recommend.MovieFilter{MinIMDBRating: 7.0})
	if err != nil {
		t.Fatalf("ListMovies imdb: %v", err)
	}
	if len(highbrow) != 1 || highbrow[0].ID != m1.ID {
		t.Fatalf("imdb filter = %+v", highbrow)
	}

	dramas, err := db.ListMovies(ctx, recommend.MovieFilter{GenreIDs: []int64{drama.ID}})
	if err != nil {
		t.Fatalf("ListMovies genre: %v", err)
	}
	if len(dramas) != 1 || dramas[0].ID != m2.ID {
		t.Fatalf("genre filter = %+v", dramas)
	}

	byIDs, err := db.MoviesByIDs(ctx, []int64{m1.ID, m2.ID, 999})
	if err != nil {
		t.Fatalf("MoviesByIDs: %v", err)
	}
	if len(byIDs) != 2 {
		t.Fatalf("MoviesByIDs returned %d movies, want 2", len(byIDs))
	}
	if byIDs[0].ID > byIDs[1].ID {
		t.Error("MoviesByIDs not ordered by ID")
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.CreateUser(ctx, "bob", "bob@example.com", "hash"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := db.CreateUser(ctx, "bob", "other@example.com", "hash"); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate err = %v, want ErrDuplicate", err)
	}

	u, err := db.GetUserByUsername(ctx, "bob")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	byID, err := db.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if byID.Username != "bob" {
		t.Errorf("username = %q, want bob", byID.Username)
	}

	if _, err := db.GetUserByUsername(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing user err = %v, want ErrNotFound", err)
	}
}

func TestSeedSampleDataIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.SeedSampleData(ctx); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	movies, err := db.ListMovies(ctx, recommend.MovieFilter{})
	if err != nil {
		t.Fatalf("ListMovies: %v", err)
	}
	if len(movies) == 0 {
		t.Fatal("seed created no movies")
	}

	if err := db.SeedSampleData(ctx); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	again, err := db.ListMovies(ctx, recommend.MovieFilter{})
	if err != nil {
		t.Fatalf("ListMovies after reseed: %v", err)
	}
	if len(again) != len(movies) {
		t.Errorf("reseed changed catalog size: %d -> %d", len(movies), len(again))
	}

	// Seeded ratings give the engine a working neighborhood.
	ratings, err := db.AllRatings(ctx)
	if err != nil {
		t.Fatalf("AllRatings: %v", err)
	}
	if len(ratings) == 0 {
		t.Fatal("seed created no ratings")
	}
}
