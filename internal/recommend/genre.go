// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/cinescope/cinescope/internal/models"
)

// GenreStrategy recommends movies from the genres the user has shown
// affinity for. Affinity accumulates from liked ratings at their score
// and from favorites at the configured favorite weight, so a favorite
// always counts for more than any explicit rating.
type GenreStrategy struct {
	store Store
	cfg   Config
}

// NewGenreStrategy creates the genre affinity strategy.
func NewGenreStrategy(store Store, cfg Config) *GenreStrategy {
	return &GenreStrategy{store: store, cfg: cfg}
}

// Name implements Strategy.
func (s *GenreStrategy) Name() Algorithm { return AlgorithmGenre }

// Recommend implements Strategy. It requires at least one liked rating
// or favorite; otherwise it reports ErrInsufficientSignal so the engine
// falls back to popularity.
func (s *GenreStrategy) Recommend(ctx context.Context, req Request) ([]Recommendation, error) {
	if req.UserID == 0 {
		return nil, ErrInsufficientSignal
	}

	profile, seen, err := s.genreProfile(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if len(profile.Genres) == 0 {
		return nil, ErrInsufficientSignal
	}

	top := profile.TopGenres(s.cfg.TopGenres)
	movies, err := s.store.ListMovies(ctx, MovieFilter{
		GenreIDs:      top,
		MinIMDBRating: req.MinRating,
	})
	if err != nil {
		return nil, fmt.Errorf("list genre movies: %w", err)
	}

	if req.ExcludeWatched {
		watched, err := s.store.WatchedMovieIDs(ctx, req.UserID)
		if err != nil {
			return nil, fmt.Errorf("load watch history: %w", err)
		}
		for _, id := range watched {
			seen[id] = struct{}{}
		}
	}

	kept := movies[:0]
	for _, m := range movies {
		if _, drop := seen[m.ID]; !drop {
			kept = append(kept, m)
		}
	}
	movies = kept

	rankByPopularity(movies)
	limit := s.cfg.clampLimit(req.Limit)
	if len(movies) > limit {
		movies = movies[:limit]
	}

	topSet := make(map[int64]struct{}, len(top))
	for _, id := range top {
		topSet[id] = struct{}{}
	}

	recs := make([]Recommendation, 0, len(movies))
	for _, m := range movies {
		recs = append(recs, Recommendation{
			Movie:  m,
			Score:  m.PopularityScore,
			Reason: fmt.Sprintf("Matches your taste in %s", matchedGenres(&m, topSet)),
		})
	}
	return recs, nil
}

// genreProfile builds the user's genre affinity vector and the set of
// movies already rated or favorited, which are never recommended back.
func (s *GenreStrategy) genreProfile(ctx context.Context, userID int64) (*PreferenceVector, map[int64]struct{}, error) {
	ratings, err := s.store.RatingsForUser(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load user ratings: %w", err)
	}
	favorites, err := s.store.FavoritesForUser(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load favorites: %w", err)
	}

	seen := make(map[int64]struct{}, len(ratings)+len(favorites))
	weights := make(map[int64]float64)
	for _, r := range ratings {
		seen[r.MovieID] = struct{}{}
		if r.Score >= s.cfg.LikeThreshold {
			weights[r.MovieID] = r.Score
		}
	}
	for _, f := range favorites {
		seen[f.MovieID] = struct{}{}
		// Favorites dominate: overwrite any rating-derived weight.
		weights[f.MovieID] = s.cfg.FavoriteWeight
	}
	if len(weights) == 0 {
		return NewPreferenceVector(), seen, nil
	}

	ids := make([]int64, 0, len(weights))
	for id := range weights {
		ids = append(ids, id)
	}
	liked, err := s.store.MoviesByIDs(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("load liked movies: %w", err)
	}

	profile := NewPreferenceVector()
	for i := range liked {
		profile.Add(&liked[i], weights[liked[i].ID])
	}
	return profile, seen, nil
}

// matchedGenres names the movie's genres that drove the recommendation.
func matchedGenres(m *models.Movie, top map[int64]struct{}) string {
	var names []string
	for _, g := range m.Genres {
		if _, ok := top[g.ID]; ok {
			names = append(names, g.Name)
		}
	}
	if len(names) == 0 {
		return "these genres"
	}
	if len(names) > 3 {
		names = names[:3]
	}
	return strings.Join(names, ", ")
}
