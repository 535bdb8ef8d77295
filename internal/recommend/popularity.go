// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package recommend

import (
	"context"
	"fmt"
)

// PopularityStrategy ranks the whole catalog by popularity score. It
// needs no user signal and serves as the terminal fallback for every
// other strategy.
type PopularityStrategy struct {
	store Store
	cfg   Config
}

// NewPopularityStrategy creates the popularity strategy.
func NewPopularityStrategy(store Store, cfg Config) *PopularityStrategy {
	return &PopularityStrategy{store: store, cfg: cfg}
}

// Name implements Strategy.
func (s *PopularityStrategy) Name() Algorithm { return AlgorithmPopularity }

// Recommend implements Strategy. Only movies with at least one user
// rating qualify; an empty catalog yields an empty list, never an
// error.
func (s *PopularityStrategy) Recommend(ctx context.Context, req Request) ([]Recommendation, error) {
	movies, err := s.store.ListMovies(ctx, MovieFilter{
		RatedOnly:     true,
		MinIMDBRating: req.MinRating,
	})
	if err != nil {
		return nil, fmt.Errorf("list rated movies: %w", err)
	}

	exclude, err := exclusionSet(ctx, s.store, req)
	if err != nil {
		return nil, err
	}
	if len(exclude) > 0 {
		kept := movies[:0]
		for _, m := range movies {
			if _, drop := exclude[m.ID]; !drop {
				kept = append(kept, m)
			}
		}
		movies = kept
	}

	rankByPopularity(movies)
	limit := s.cfg.clampLimit(req.Limit)
	if len(movies) > limit {
		movies = movies[:limit]
	}

	recs := make([]Recommendation, 0, len(movies))
	for _, m := range movies {
		recs = append(recs, Recommendation{
			Movie:  m,
			Score:  m.PopularityScore,
			Reason: fmt.Sprintf("Popular with viewers: rated %.1f on average by %d users", m.AverageRating, m.RatingCount),
		})
	}
	return recs, nil
}

// exclusionSet collects the movie IDs a request asked to filter out.
// Anonymous requests have nothing to exclude.
func exclusionSet(ctx context.Context, store Store, req Request) (map[int64]struct{}, error) {
	exclude := make(map[int64]struct{})
	if req.UserID == 0 {
		return exclude, nil
	}
	if req.ExcludeRated {
		ratings, err := store.RatingsForUser(ctx, req.UserID)
		if err != nil {
			return nil, fmt.Errorf("load user ratings: %w", err)
		}
		for _, r := range ratings {
			exclude[r.MovieID] = struct{}{}
		}
	}
	if req.ExcludeWatched {
		watched, err := store.WatchedMovieIDs(ctx, req.UserID)
		if err != nil {
			return nil, fmt.Errorf("load watch history: %w", err)
		}
		for _, id := range watched {
			exclude[id] = struct{}{}
		}
	}
	return exclude, nil
}
