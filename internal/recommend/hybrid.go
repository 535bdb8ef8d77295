// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package recommend

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// HybridStrategy blends the other strategies into one list. Popularity
// and genre always participate; collaborative and content join once
// the user has MinRatingsForHybrid ratings. Sub-strategies run
// concurrently and merge in a fixed order so the output is
// deterministic.
type HybridStrategy struct {
	store Store
	cfg   Config

	collaborative Strategy
	content       Strategy
	genre         Strategy
	popularity    Strategy
}

// NewHybridStrategy creates the hybrid strategy over the given
// sub-strategies.
func NewHybridStrategy(store Store, cfg Config, collaborative, content, genre, popularity Strategy) *HybridStrategy {
	return &HybridStrategy{
		store:         store,
		cfg:           cfg,
		collaborative: collaborative,
		content:       content,
		genre:         genre,
		popularity:    popularity,
	}
}

// Name implements Strategy.
func (s *HybridStrategy) Name() Algorithm { return AlgorithmHybrid }

// Recommend implements Strategy. Anonymous requests report
// ErrInsufficientSignal so the engine serves plain popularity instead.
func (s *HybridStrategy) Recommend(ctx context.Context, req Request) ([]Recommendation, error) {
	if req.UserID == 0 {
		return nil, ErrInsufficientSignal
	}

	ratings, err := s.store.RatingsForUser(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user ratings: %w", err)
	}

	// Merge order is fixed so first-occurrence dedup is deterministic:
	// popularity, genre, then the ratings-gated shares.
	parts := []Strategy{s.popularity, s.genre}
	if len(ratings) >= s.cfg.MinRatingsForHybrid {
		parts = []Strategy{s.popularity, s.genre, s.collaborative, s.content}
	}

	limit := s.cfg.clampLimit(req.Limit)
	subReq := req
	subReq.Limit = limit
	// The popularity share must not re-surface movies the user already
	// rated; the personalized shares exclude them unconditionally.
	subReq.ExcludeRated = true

	results := make([][]Recommendation, len(parts))
	g, gctx := errgroup.WithContext(ctx)
	for i, part := range parts {
		g.Go(func() error {
			recs, err := part.Recommend(gctx, subReq)
			if err != nil {
				// A sub-strategy without signal simply contributes
				// nothing to the blend.
				if errors.Is(err, ErrInsufficientSignal) {
					return nil
				}
				return fmt.Errorf("%s share: %w", part.Name(), err)
			}
			results[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return mergeShares(results, limit), nil
}

// mergeShares interleaves sub-strategy results: each contributor first
// gets an even share of the limit, then remaining slots fill from the
// leftovers in the same order. Duplicates keep their first occurrence.
func mergeShares(results [][]Recommendation, limit int) []Recommendation {
	contributors := 0
	for _, recs := range results {
		if len(recs) > 0 {
			contributors++
		}
	}
	if contributors == 0 {
		return []Recommendation{}
	}
	share := limit / contributors
	if share < 1 {
		share = 1
	}

	merged := make([]Recommendation, 0, limit)
	seen := make(map[int64]struct{}, limit)
	take := func(recs []Recommendation, n int) {
		for _, r := range recs {
			if len(merged) == limit || n == 0 {
				return
			}
			if _, dup := seen[r.Movie.ID]; dup {
				continue
			}
			seen[r.Movie.ID] = struct{}{}
			merged = append(merged, r)
			n--
		}
	}

	for _, recs := range results {
		take(recs, share)
	}
	// Fill remaining slots from whatever is left, same order.
	for _, recs := range results {
		if len(merged) == limit {
			break
		}
		take(recs, limit)
	}
	return merged
}
