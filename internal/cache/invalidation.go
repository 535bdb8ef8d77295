// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package cache

import (
	"context"
	"strconv"

	"github.com/cinescope/cinescope/internal/logging"
	"github.com/cinescope/cinescope/internal/metrics"
)

// Invalidator applies the eager invalidation contract: the mutation layer
// calls it synchronously after every successful write, before the write is
// acknowledged to the client. Invalidation failures are logged and swallowed;
// stale entries then age out via their TTL.
type Invalidator struct {
	cache Cache
}

// NewInvalidator wraps a Cache with the write-triggered invalidation rules.
func NewInvalidator(c Cache) *Invalidator {
	return &Invalidator{cache: c}
}

// RatingChanged handles a created, updated or deleted rating. It drops the
// user's recommendations (all algorithms), the movie's stats entry, and the
// popularity orderings the new score may have shifted.
func (i *Invalidator) RatingChanged(ctx context.Context, userID, movieID int64) {
	metrics.CacheInvalidations.WithLabelValues("rating").Inc()
	i.drop(ctx,
		ScopePattern(NamespaceRecommendations, formatID(userID)),
		statsKey(movieID),
		NamespacePattern(NamespacePopular),
		NamespacePattern(NamespaceTrending),
	)
}

// FavoriteChanged handles a created or deleted favorite.
func (i *Invalidator) FavoriteChanged(ctx context.Context, userID, movieID int64) {
	metrics.CacheInvalidations.WithLabelValues("favorite").Inc()
	i.drop(ctx, ScopePattern(NamespaceRecommendations, formatID(userID)))
}

// WatchHistoryChanged handles a recorded watch event.
func (i *Invalidator) WatchHistoryChanged(ctx context.Context, userID, movieID int64) {
	metrics.CacheInvalidations.WithLabelValues("watch_history").Inc()
	i.drop(ctx, ScopePattern(NamespaceRecommendations, formatID(userID)))
}

// MovieChanged handles a created, updated or deleted movie. Popularity
// ordering may shift, so every popular/trending entry goes, along with the
// movie's own similar-movies and stats entries.
func (i *Invalidator) MovieChanged(ctx context.Context, movieID int64) {
	metrics.CacheInvalidations.WithLabelValues("movie").Inc()
	i.drop(ctx,
		ScopePattern(NamespaceSimilarMovies, formatID(movieID)),
		statsKey(movieID),
		NamespacePattern(NamespacePopular),
		NamespacePattern(NamespaceTrending),
	)
}

// statsKey is the single cache key a movie's stats live under. A plain
// key needs no wildcard, so the invalidation is exact.
func statsKey(movieID int64) string {
	return Key(NamespaceMovieStats, formatID(movieID), nil)
}

func (i *Invalidator) drop(ctx context.Context, patterns ...string) {
	for _, pattern := range patterns {
		if err := i.cache.Invalidate(ctx, pattern); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("pattern", pattern).Msg("cache invalidation failed")
		}
	}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
