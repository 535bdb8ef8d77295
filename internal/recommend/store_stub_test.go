// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package recommend

import (
	"context"
	"sort"
	"time"

	"github.com/cinescope/cinescope/internal/models"
)

// stubStore implements Store over in-memory slices with the same
// ordering guarantees as the database layer.
type stubStore struct {
	movies    []models.Movie
	ratings   []models.Rating
	favorites []models.Favorite
	watched   map[int64][]int64
}

func (s *stubStore) GetMovie(_ context.Context, id int64) (*models.Movie, error) {
	for i := range s.movies {
		if s.movies[i].ID == id {
			m := s.movies[i]
			var total float64
			for _, r := range s.ratings {
				if r.MovieID == id {
					m.RatingCount++
					total += r.Score
				}
			}
			if m.RatingCount > 0 {
				m.AverageRating = total / float64(m.RatingCount)
			}
			return &m, nil
		}
	}
	return nil, ErrMovieNotFound
}

func (s *stubStore) ListMovies(_ context.Context, f MovieFilter) ([]models.Movie, error) {
	counts := make(map[int64]int)
	totals := make(map[int64]float64)
	for _, r := range s.ratings {
		counts[r.MovieID]++
		totals[r.MovieID] += r.Score
	}

	var out []models.Movie
	for _, m := range s.movies {
		if f.RatedOnly && counts[m.ID] == 0 {
			continue
		}
		if f.MinIMDBRating > 0 && m.IMDBRating < f.MinIMDBRating {
			continue
		}
		if !f.CreatedAfter.IsZero() && !m.CreatedAt.After(f.CreatedAfter) {
			continue
		}
		if len(f.GenreIDs) > 0 && !hasAnyGenre(&m, f.GenreIDs) {
			continue
		}
		if n := counts[m.ID]; n > 0 {
			m.RatingCount = n
			m.AverageRating = totals[m.ID] / float64(n)
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubStore) MoviesByIDs(ctx context.Context, ids []int64) ([]models.Movie, error) {
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	all, err := s.ListMovies(ctx, MovieFilter{})
	if err != nil {
		return nil, err
	}
	var out []models.Movie
	for _, m := range all {
		if _, ok := want[m.ID]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *stubStore) RatingsForUser(_ context.Context, userID int64) ([]models.Rating, error) {
	var out []models.Rating
	for _, r := range s.ratings {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubStore) AllRatings(_ context.Context) ([]models.Rating, error) {
	out := make([]models.Rating, len(s.ratings))
	copy(out, s.ratings)
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].MovieID < out[j].MovieID
	})
	return out, nil
}

func (s *stubStore) FavoritesForUser(_ context.Context, userID int64) ([]models.Favorite, error) {
	var out []models.Favorite
	for _, f := range s.favorites {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *stubStore) WatchedMovieIDs(_ context.Context, userID int64) ([]int64, error) {
	return s.watched[userID], nil
}

func hasAnyGenre(m *models.Movie, ids []int64) bool {
	for _, g := range m.Genres {
		for _, id := range ids {
			if g.ID == id {
				return true
			}
		}
	}
	return false
}

// Fixture genres and helpers shared across strategy tests.
var (
	genreAction = models.Genre{ID: 1, Name: "Action"}
	genreDrama  = models.Genre{ID: 2, Name: "Drama"}
	genreComedy = models.Genre{ID: 3, Name: "Comedy"}

	tagHeist = models.Tag{ID: 1, Name: "heist"}
	tagSpace = models.Tag{ID: 2, Name: "space"}
)

func movie(id int64, title string, year int, popularity, imdb float64, genres []models.Genre, tags []models.Tag) models.Movie {
	return models.Movie{
		ID:              id,
		Title:           title,
		ReleaseDate:     time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC),
		IMDBRating:      imdb,
		PopularityScore: popularity,
		Genres:          genres,
		Tags:            tags,
		CreatedAt:       time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

// catalogFixture builds a small catalog with known rankings:
// Action movies 1-3, drama 4-5, comedy 6. Users 1-3 rate action
// consistently so users 1 and 2 are similar.
func catalogFixture() *stubStore {
	return &stubStore{
		movies: []models.Movie{
			movie(1, "Die Fast", 1995, 90, 7.1, []models.Genre{genreAction}, []models.Tag{tagHeist}),
			movie(2, "Skyfire", 2005, 80, 6.8, []models.Genre{genreAction}, []models.Tag{tagSpace}),
			movie(3, "Last Stand", 2015, 70, 7.9, []models.Genre{genreAction, genreDrama}, nil),
			movie(4, "Quiet Rooms", 2014, 60, 8.2, []models.Genre{genreDrama}, nil),
			movie(5, "The Letter", 1998, 50, 7.5, []models.Genre{genreDrama}, []models.Tag{tagHeist}),
			movie(6, "Banana Court", 2020, 40, 6.1, []models.Genre{genreComedy}, nil),
		},
		ratings: []models.Rating{
			{ID: 1, UserID: 1, MovieID: 1, Score: 4.5},
			{ID: 2, UserID: 1, MovieID: 2, Score: 5.0},
			{ID: 3, UserID: 1, MovieID: 4, Score: 2.0},
			{ID: 4, UserID: 2, MovieID: 1, Score: 4.5},
			{ID: 5, UserID: 2, MovieID: 2, Score: 5.0},
			{ID: 6, UserID: 2, MovieID: 3, Score: 4.5},
			{ID: 7, UserID: 2, MovieID: 5, Score: 4.0},
			{ID: 8, UserID: 3, MovieID: 1, Score: 1.0},
			{ID: 9, UserID: 3, MovieID: 6, Score: 5.0},
			{ID: 10, UserID: 3, MovieID: 3, Score: 4.0},
		},
		watched: map[int64][]int64{},
	}
}
