// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package recommend

import (
	"context"
	"fmt"
	"sort"
)

// CollaborativeStrategy implements user-based collaborative filtering.
// It finds users whose ratings agree with the requester's, then
// recommends movies those neighbors liked that the requester has not
// rated yet.
type CollaborativeStrategy struct {
	store Store
	cfg   Config
}

// NewCollaborativeStrategy creates the collaborative filtering
// strategy.
func NewCollaborativeStrategy(store Store, cfg Config) *CollaborativeStrategy {
	return &CollaborativeStrategy{store: store, cfg: cfg}
}

// Name implements Strategy.
func (s *CollaborativeStrategy) Name() Algorithm { return AlgorithmCollaborative }

// neighbor pairs a similar user with their similarity to the
// requester.
type neighbor struct {
	userID int64
	sim    float64
}

// candidate accumulates neighbor opinions about one movie.
type candidate struct {
	movieID int64
	total   float64
	count   int
}

func (c candidate) mean() float64 { return c.total / float64(c.count) }

// Recommend implements Strategy. The requester needs at least
// MinRatingsForCF ratings and at least one qualifying neighbor;
// otherwise it reports ErrInsufficientSignal and the engine falls back
// through genre to popularity.
func (s *CollaborativeStrategy) Recommend(ctx context.Context, req Request) ([]Recommendation, error) {
	if req.UserID == 0 {
		return nil, ErrInsufficientSignal
	}

	own, err := s.store.RatingsForUser(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user ratings: %w", err)
	}
	if len(own) < s.cfg.MinRatingsForCF {
		return nil, ErrInsufficientSignal
	}
	ownMap := ratingMap(own)

	all, err := s.store.AllRatings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rating matrix: %w", err)
	}
	byUser := make(map[int64]map[int64]float64)
	for _, r := range all {
		if r.UserID == req.UserID {
			continue
		}
		m, ok := byUser[r.UserID]
		if !ok {
			m = make(map[int64]float64)
			byUser[r.UserID] = m
		}
		m[r.MovieID] = r.Score
	}

	neighbors := s.selectNeighbors(ownMap, byUser)
	if len(neighbors) == 0 {
		return nil, ErrInsufficientSignal
	}

	exclude := make(map[int64]struct{}, len(ownMap))
	for id := range ownMap {
		exclude[id] = struct{}{}
	}
	if req.ExcludeWatched {
		watched, err := s.store.WatchedMovieIDs(ctx, req.UserID)
		if err != nil {
			return nil, fmt.Errorf("load watch history: %w", err)
		}
		for _, id := range watched {
			exclude[id] = struct{}{}
		}
	}

	candidates := s.collectCandidates(neighbors, byUser, exclude)
	if len(candidates) == 0 {
		return nil, ErrInsufficientSignal
	}

	return s.rank(ctx, candidates, req)
}

// selectNeighbors computes similarity against every other user and
// keeps the top MaxSimilarUsers above the threshold. Ties break on the
// lower user ID for determinism.
func (s *CollaborativeStrategy) selectNeighbors(own map[int64]float64, byUser map[int64]map[int64]float64) []neighbor {
	neighbors := make([]neighbor, 0)
	for userID, ratings := range byUser {
		sim, ok := UserSimilarity(own, ratings)
		if !ok || sim < s.cfg.SimilarityThreshold {
			continue
		}
		neighbors = append(neighbors, neighbor{userID: userID, sim: sim})
	}
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].sim != neighbors[j].sim {
			return neighbors[i].sim > neighbors[j].sim
		}
		return neighbors[i].userID < neighbors[j].userID
	})
	if len(neighbors) > s.cfg.MaxSimilarUsers {
		neighbors = neighbors[:s.cfg.MaxSimilarUsers]
	}
	return neighbors
}

// collectCandidates gathers movies the neighborhood liked, dropping
// excluded movies and anything with fewer supporting neighbors than
// MinNeighborSupport.
func (s *CollaborativeStrategy) collectCandidates(neighbors []neighbor, byUser map[int64]map[int64]float64, exclude map[int64]struct{}) []candidate {
	acc := make(map[int64]*candidate)
	for _, n := range neighbors {
		for movieID, score := range byUser[n.userID] {
			if score < s.cfg.LikeThreshold {
				continue
			}
			if _, drop := exclude[movieID]; drop {
				continue
			}
			c, ok := acc[movieID]
			if !ok {
				c = &candidate{movieID: movieID}
				acc[movieID] = c
			}
			c.total += score
			c.count++
		}
	}

	candidates := make([]candidate, 0, len(acc))
	for _, c := range acc {
		if c.count >= s.cfg.MinNeighborSupport {
			candidates = append(candidates, *c)
		}
	}
	return candidates
}

// rank orders candidates by mean neighbor score descending, then
// supporting neighbor count descending, then movie ID ascending, and
// resolves them to full movie records.
func (s *CollaborativeStrategy) rank(ctx context.Context, candidates []candidate, req Request) ([]Recommendation, error) {
	sort.Slice(candidates, func(i, j int) bool {
		mi, mj := candidates[i].mean(), candidates[j].mean()
		if mi != mj {
			return mi > mj
		}
		if candidates[i].count != candidates[j].count {
			return candidates[i].count > candidates[j].count
		}
		return candidates[i].movieID < candidates[j].movieID
	})

	ids := make([]int64, 0, len(candidates))
	byID := make(map[int64]candidate, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.movieID)
		byID[c.movieID] = c
	}
	movies, err := s.store.MoviesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load candidate movies: %w", err)
	}
	byMovie := make(map[int64]int, len(movies))
	for i := range movies {
		byMovie[movies[i].ID] = i
	}

	limit := s.cfg.clampLimit(req.Limit)
	recs := make([]Recommendation, 0, limit)
	for _, c := range candidates {
		idx, ok := byMovie[c.movieID]
		if !ok {
			continue
		}
		m := movies[idx]
		if req.MinRating > 0 && m.IMDBRating < req.MinRating {
			continue
		}
		recs = append(recs, Recommendation{
			Movie:  m,
			Score:  c.mean(),
			Reason: fmt.Sprintf("Users with similar taste rated it %.1f on average", c.mean()),
		})
		if len(recs) == limit {
			break
		}
	}
	if len(recs) == 0 {
		return nil, ErrInsufficientSignal
	}
	return recs, nil
}
