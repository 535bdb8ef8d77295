// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/cinescope/cinescope/internal/cache"
	"github.com/cinescope/cinescope/internal/metrics"
	"github.com/cinescope/cinescope/internal/models"
)

// fallbackChains maps each algorithm to the ordered strategies tried
// when earlier ones lack signal. Every chain ends in popularity, which
// always produces results.
var fallbackChains = map[Algorithm][]Algorithm{
	AlgorithmPopularity:    {AlgorithmPopularity},
	AlgorithmGenre:         {AlgorithmGenre, AlgorithmPopularity},
	AlgorithmCollaborative: {AlgorithmCollaborative, AlgorithmGenre, AlgorithmPopularity},
	AlgorithmContent:       {AlgorithmContent, AlgorithmGenre, AlgorithmPopularity},
	AlgorithmHybrid:        {AlgorithmHybrid, AlgorithmPopularity},
}

// Engine dispatches recommendation requests to strategies, walks
// fallback chains, and caches results. It is safe for concurrent use.
type Engine struct {
	store      Store
	cache      cache.Cache
	cfg        Config
	logger     zerolog.Logger
	strategies map[Algorithm]Strategy

	// clock overrides time.Now in tests.
	clock func() time.Time
}

// NewEngine creates a recommendation engine over the given store and
// cache.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(store Store, c cache.Cache, cfg Config, logger zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	popularity := NewPopularityStrategy(store, cfg)
	genre := NewGenreStrategy(store, cfg)
	collaborative := NewCollaborativeStrategy(store, cfg)
	content := NewContentStrategy(store, cfg)
	hybrid := NewHybridStrategy(store, cfg, collaborative, content, genre, popularity)

	return &Engine{
		store:  store,
		cache:  c,
		cfg:    cfg,
		logger: logger.With().Str("component", "recommend").Logger(),
		strategies: map[Algorithm]Strategy{
			AlgorithmPopularity:    popularity,
			AlgorithmGenre:         genre,
			AlgorithmCollaborative: collaborative,
			AlgorithmContent:       content,
			AlgorithmHybrid:        hybrid,
		},
	}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// Recommend serves a recommendation request, from cache when possible.
// When the requested strategy lacks signal the engine walks its
// fallback chain and reports the strategy that actually produced the
// results.
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	chain, ok := fallbackChains[req.Algorithm]
	if !ok {
		return nil, ErrUnknownAlgorithm
	}
	req.Limit = e.cfg.clampLimit(req.Limit)

	key := cache.Key(cache.NamespaceRecommendations, strconv.FormatInt(req.UserID, 10), map[string]string{
		"algorithm":       string(req.Algorithm),
		"limit":           strconv.Itoa(req.Limit),
		"min_rating":      strconv.FormatFloat(req.MinRating, 'f', -1, 64),
		"exclude_rated":   strconv.FormatBool(req.ExcludeRated),
		"exclude_watched": strconv.FormatBool(req.ExcludeWatched),
	})
	var resp Response
	if hit := e.cacheGet(ctx, cache.NamespaceRecommendations, key, &resp); hit {
		resp.Cached = true
		return &resp, nil
	}

	start := time.Now()
	result, err := e.computeChain(ctx, chain, req)
	if err != nil {
		return nil, err
	}
	metrics.RecommendationDuration.WithLabelValues(string(result.AlgorithmUsed)).Observe(time.Since(start).Seconds())
	metrics.RecommendationsTotal.WithLabelValues(string(result.AlgorithmUsed)).Inc()

	e.cacheSet(ctx, cache.NamespaceRecommendations, key, result, e.cfg.RecommendationsTTL)
	return result, nil
}

// computeChain tries each strategy in order until one produces
// results. ErrInsufficientSignal moves to the next link; any other
// error aborts the request.
func (e *Engine) computeChain(ctx context.Context, chain []Algorithm, req Request) (*Response, error) {
	requested := req.Algorithm
	for i, alg := range chain {
		recs, err := e.strategies[alg].Recommend(ctx, req)
		if err != nil {
			if errors.Is(err, ErrInsufficientSignal) && i < len(chain)-1 {
				next := chain[i+1]
				metrics.RecommendationFallbacks.WithLabelValues(string(alg), string(next)).Inc()
				e.logger.Debug().
					Int64("user_id", req.UserID).
					Str("from", string(alg)).
					Str("to", string(next)).
					Msg("strategy lacks signal, falling back")
				continue
			}
			return nil, fmt.Errorf("%s strategy: %w", alg, err)
		}
		if recs == nil {
			recs = []Recommendation{}
		}
		return &Response{
			AlgorithmRequested:   requested,
			AlgorithmUsed:        alg,
			TotalRecommendations: len(recs),
			Recommendations:      recs,
		}, nil
	}
	// Unreachable: popularity terminates every chain without
	// ErrInsufficientSignal.
	return nil, fmt.Errorf("%s: no strategy produced results", requested)
}

// SimilarMovies returns movies similar to the given one, from cache
// when possible. The second return reports a cache hit.
func (e *Engine) SimilarMovies(ctx context.Context, movieID int64, method SimilarMethod, limit int) ([]SimilarMovie, bool, error) {
	limit = e.cfg.clampLimit(limit)
	key := cache.Key(cache.NamespaceSimilarMovies, strconv.FormatInt(movieID, 10), map[string]string{
		"method": string(method),
		"limit":  strconv.Itoa(limit),
	})
	var cached []SimilarMovie
	if hit := e.cacheGet(ctx, cache.NamespaceSimilarMovies, key, &cached); hit {
		return cached, true, nil
	}

	similar, err := e.similarMovies(ctx, movieID, method, limit)
	if err != nil {
		return nil, false, err
	}
	e.cacheSet(ctx, cache.NamespaceSimilarMovies, key, similar, e.cfg.RecommendationsTTL)
	return similar, false, nil
}

// Trending returns movies added within the period's lookback window,
// from cache when possible.
func (e *Engine) Trending(ctx context.Context, period Period, limit int) ([]models.Movie, bool, error) {
	limit = e.cfg.clampLimit(limit)
	key := cache.Key(cache.NamespaceTrending, "", map[string]string{
		"period": string(period),
		"limit":  strconv.Itoa(limit),
	})
	var cached []models.Movie
	if hit := e.cacheGet(ctx, cache.NamespaceTrending, key, &cached); hit {
		return cached, true, nil
	}

	movies, err := e.trendingMovies(ctx, period, limit)
	if err != nil {
		return nil, false, err
	}
	e.cacheSet(ctx, cache.NamespaceTrending, key, movies, e.cfg.TrendingTTL)
	return movies, false, nil
}

// MovieStats returns a movie's rating aggregates, from cache when
// possible. The aggregates ride on the movie row, so the lookup also
// reports ErrMovieNotFound for unknown ids.
func (e *Engine) MovieStats(ctx context.Context, movieID int64) (*MovieStats, bool, error) {
	key := cache.Key(cache.NamespaceMovieStats, strconv.FormatInt(movieID, 10), nil)
	var cached MovieStats
	if hit := e.cacheGet(ctx, cache.NamespaceMovieStats, key, &cached); hit {
		return &cached, true, nil
	}

	movie, err := e.store.GetMovie(ctx, movieID)
	if err != nil {
		return nil, false, err
	}
	stats := &MovieStats{
		MovieID:       movie.ID,
		TotalRatings:  movie.RatingCount,
		AverageRating: math.Round(movie.AverageRating*100) / 100,
	}
	e.cacheSet(ctx, cache.NamespaceMovieStats, key, stats, e.cfg.PopularTTL)
	return stats, false, nil
}

// Popular returns the globally most popular rated movies, from cache
// when possible.
func (e *Engine) Popular(ctx context.Context, limit int, minRating float64) ([]Recommendation, bool, error) {
	limit = e.cfg.clampLimit(limit)
	key := cache.Key(cache.NamespacePopular, "", map[string]string{
		"limit":      strconv.Itoa(limit),
		"min_rating": strconv.FormatFloat(minRating, 'f', -1, 64),
	})
	var cached []Recommendation
	if hit := e.cacheGet(ctx, cache.NamespacePopular, key, &cached); hit {
		return cached, true, nil
	}

	recs, err := e.strategies[AlgorithmPopularity].Recommend(ctx, Request{
		Limit:     limit,
		MinRating: minRating,
	})
	if err != nil {
		return nil, false, err
	}
	e.cacheSet(ctx, cache.NamespacePopular, key, recs, e.cfg.PopularTTL)
	return recs, false, nil
}

// cacheGet reads through the cache, treating any cache failure as a
// miss so requests are served from the store instead of failing.
func (e *Engine) cacheGet(ctx context.Context, namespace, key string, dest any) bool {
	if e.cache == nil {
		return false
	}
	hit, err := e.cache.GetJSON(ctx, key, dest)
	if err != nil {
		e.logger.Warn().Err(err).Str("key", key).Msg("cache read failed, computing")
		return false
	}
	if hit {
		metrics.CacheHits.WithLabelValues(namespace).Inc()
	} else {
		metrics.CacheMisses.WithLabelValues(namespace).Inc()
	}
	return hit
}

// cacheSet stores a computed result. Failures are logged and dropped;
// caching is an optimization, never a dependency.
func (e *Engine) cacheSet(ctx context.Context, namespace, key string, value any, ttl time.Duration) {
	if e.cache == nil {
		return
	}
	if err := e.cache.SetJSON(ctx, key, value, ttl); err != nil {
		e.logger.Warn().Err(err).Str("key", key).Str("namespace", namespace).Msg("cache write failed")
	}
}
