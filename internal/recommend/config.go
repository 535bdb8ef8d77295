// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package recommend

import (
	"fmt"
	"time"
)

// Config holds the tunable parameters of the recommendation engine.
type Config struct {
	// DefaultLimit is the result count when a request does not specify
	// one.
	DefaultLimit int

	// MaxLimit caps the result count regardless of what a request asks
	// for.
	MaxLimit int

	// LikeThreshold is the minimum rating score treated as a positive
	// signal.
	LikeThreshold float64

	// FavoriteWeight is the implicit rating assigned to favorited
	// movies when building preference profiles. It sits above the
	// rating scale so favorites outweigh any explicit rating.
	FavoriteWeight float64

	// TopGenres is how many of the user's highest-affinity genres the
	// genre strategy considers.
	TopGenres int

	// MinRatingsForCF is the minimum number of ratings a user needs
	// before collaborative filtering applies.
	MinRatingsForCF int

	// MaxSimilarUsers caps the neighborhood size in collaborative
	// filtering.
	MaxSimilarUsers int

	// SimilarityThreshold is the minimum user similarity for
	// neighborhood membership.
	SimilarityThreshold float64

	// MinNeighborSupport is the minimum number of neighbors that must
	// like a movie before collaborative filtering recommends it.
	MinNeighborSupport int

	// GenreWeight, TagWeight and DecadeWeight blend the components of
	// the content-based score. They should sum to 1.
	GenreWeight  float64
	TagWeight    float64
	DecadeWeight float64

	// MinRatingsForHybrid is the rating count at which the hybrid
	// strategy adds its collaborative and content shares.
	MinRatingsForHybrid int

	// RecommendationsTTL bounds staleness of cached personalized
	// results between eager invalidations.
	RecommendationsTTL time.Duration

	// PopularTTL bounds staleness of cached popularity listings.
	PopularTTL time.Duration

	// TrendingTTL bounds staleness of cached trending listings.
	TrendingTTL time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		DefaultLimit:        10,
		MaxLimit:            50,
		LikeThreshold:       4.0,
		FavoriteWeight:      5.5,
		TopGenres:           5,
		MinRatingsForCF:     3,
		MaxSimilarUsers:     10,
		SimilarityThreshold: 0.5,
		MinNeighborSupport:  2,
		GenreWeight:         0.4,
		TagWeight:           0.3,
		DecadeWeight:        0.3,
		MinRatingsForHybrid: 5,
		RecommendationsTTL:  5 * time.Minute,
		PopularTTL:          10 * time.Minute,
		TrendingTTL:         15 * time.Minute,
	}
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	if c.DefaultLimit < 1 {
		return fmt.Errorf("default limit must be positive, got %d", c.DefaultLimit)
	}
	if c.MaxLimit < c.DefaultLimit {
		return fmt.Errorf("max limit %d below default limit %d", c.MaxLimit, c.DefaultLimit)
	}
	if c.LikeThreshold < 0.5 || c.LikeThreshold > 5.0 {
		return fmt.Errorf("like threshold %.2f outside rating scale", c.LikeThreshold)
	}
	if c.FavoriteWeight <= 5.0 {
		return fmt.Errorf("favorite weight %.2f must exceed the rating scale maximum", c.FavoriteWeight)
	}
	if c.TopGenres < 1 {
		return fmt.Errorf("top genres must be positive, got %d", c.TopGenres)
	}
	if c.MinRatingsForCF < 1 {
		return fmt.Errorf("min ratings for collaborative filtering must be positive, got %d", c.MinRatingsForCF)
	}
	if c.MaxSimilarUsers < 1 {
		return fmt.Errorf("max similar users must be positive, got %d", c.MaxSimilarUsers)
	}
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold %.2f outside (0, 1]", c.SimilarityThreshold)
	}
	if c.MinNeighborSupport < 1 {
		return fmt.Errorf("min neighbor support must be positive, got %d", c.MinNeighborSupport)
	}
	sum := c.GenreWeight + c.TagWeight + c.DecadeWeight
	if sum < 0.99 || sum > 1.01 {
		return fmt.Errorf("content weights sum to %.2f, want 1.0", sum)
	}
	if c.MinRatingsForHybrid < 1 {
		return fmt.Errorf("min ratings for hybrid must be positive, got %d", c.MinRatingsForHybrid)
	}
	for _, ttl := range []time.Duration{c.RecommendationsTTL, c.PopularTTL, c.TrendingTTL} {
		if ttl <= 0 {
			return fmt.Errorf("cache TTLs must be positive")
		}
	}
	return nil
}

// clampLimit normalizes a requested result count against the
// configured bounds.
func (c Config) clampLimit(limit int) int {
	if limit <= 0 {
		return c.DefaultLimit
	}
	if limit > c.MaxLimit {
		return c.MaxLimit
	}
	return limit
}
