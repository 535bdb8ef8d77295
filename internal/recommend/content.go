// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package recommend

import (
	"context"
	"fmt"
	"sort"

	"github.com/cinescope/cinescope/internal/models"
)

// ContentStrategy recommends movies whose genres, tags and release
// decade resemble the movies the user rated highly. Unlike the genre
// strategy it scores candidates on the full attribute profile instead
// of ranking a genre slice by popularity.
type ContentStrategy struct {
	store Store
	cfg   Config
}

// NewContentStrategy creates the content-based strategy.
func NewContentStrategy(store Store, cfg Config) *ContentStrategy {
	return &ContentStrategy{store: store, cfg: cfg}
}

// Name implements Strategy.
func (s *ContentStrategy) Name() Algorithm { return AlgorithmContent }

// Recommend implements Strategy. It requires at least one rating at or
// above the like threshold; otherwise it reports
// ErrInsufficientSignal.
func (s *ContentStrategy) Recommend(ctx context.Context, req Request) ([]Recommendation, error) {
	if req.UserID == 0 {
		return nil, ErrInsufficientSignal
	}

	ratings, err := s.store.RatingsForUser(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user ratings: %w", err)
	}

	rated := make(map[int64]struct{}, len(ratings))
	likedWeights := make(map[int64]float64)
	for _, r := range ratings {
		rated[r.MovieID] = struct{}{}
		if r.Score >= s.cfg.LikeThreshold {
			likedWeights[r.MovieID] = r.Score
		}
	}
	if len(likedWeights) == 0 {
		return nil, ErrInsufficientSignal
	}

	ids := make([]int64, 0, len(likedWeights))
	for id := range likedWeights {
		ids = append(ids, id)
	}
	liked, err := s.store.MoviesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load liked movies: %w", err)
	}

	profile := NewPreferenceVector()
	for i := range liked {
		profile.Add(&liked[i], likedWeights[liked[i].ID])
	}
	if profile.IsZero() {
		return nil, ErrInsufficientSignal
	}

	if req.ExcludeWatched {
		watched, err := s.store.WatchedMovieIDs(ctx, req.UserID)
		if err != nil {
			return nil, fmt.Errorf("load watch history: %w", err)
		}
		for _, id := range watched {
			rated[id] = struct{}{}
		}
	}

	catalog, err := s.store.ListMovies(ctx, MovieFilter{MinIMDBRating: req.MinRating})
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}

	type scored struct {
		movie models.Movie
		score float64
	}
	candidates := make([]scored, 0, len(catalog))
	for _, m := range catalog {
		if _, drop := rated[m.ID]; drop {
			continue
		}
		score := profile.Score(&m, s.cfg.GenreWeight, s.cfg.TagWeight, s.cfg.DecadeWeight)
		if score <= 0 {
			continue
		}
		candidates = append(candidates, scored{movie: m, score: score})
	}
	if len(candidates) == 0 {
		return nil, ErrInsufficientSignal
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if candidates[i].movie.PopularityScore != candidates[j].movie.PopularityScore {
			return candidates[i].movie.PopularityScore > candidates[j].movie.PopularityScore
		}
		return candidates[i].movie.ID < candidates[j].movie.ID
	})

	limit := s.cfg.clampLimit(req.Limit)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	recs := make([]Recommendation, 0, len(candidates))
	for _, c := range candidates {
		recs = append(recs, Recommendation{
			Movie:  c.movie,
			Score:  c.score,
			Reason: "Similar genres, tags and era to movies you rated highly",
		})
	}
	return recs, nil
}
