// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package recommend

import (
	"context"
	"errors"
	"time"

	"github.com/cinescope/cinescope/internal/models"
)

// Note: this package depends only on models and the cache interface.
// The Store interface allows integration with the database package
// without creating circular imports.

var (
	// ErrInsufficientSignal indicates a personalized strategy has too
	// little user activity to produce results. The engine treats it as a
	// cue to fall back, never as a request failure.
	ErrInsufficientSignal = errors.New("insufficient signal for personalized recommendations")

	// ErrMovieNotFound indicates the referenced movie does not exist.
	ErrMovieNotFound = errors.New("movie not found")

	// ErrUnknownAlgorithm indicates the requested algorithm is not part
	// of the closed strategy set.
	ErrUnknownAlgorithm = errors.New("unknown recommendation algorithm")

	// ErrAuthRequired indicates a personalized algorithm was requested
	// without an authenticated user.
	ErrAuthRequired = errors.New("personalized recommendations require authentication")
)

// Algorithm identifies a recommendation strategy. The set is closed:
// requests naming anything else are rejected before dispatch.
type Algorithm string

const (
	AlgorithmPopularity    Algorithm = "popularity"
	AlgorithmGenre         Algorithm = "genre"
	AlgorithmCollaborative Algorithm = "collaborative"
	AlgorithmContent       Algorithm = "content"
	AlgorithmHybrid        Algorithm = "hybrid"
)

// ParseAlgorithm validates an algorithm name from a request parameter.
// An empty name selects the hybrid strategy.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(name) {
	case "":
		return AlgorithmHybrid, nil
	case AlgorithmPopularity, AlgorithmGenre, AlgorithmCollaborative,
		AlgorithmContent, AlgorithmHybrid:
		return Algorithm(name), nil
	default:
		return "", ErrUnknownAlgorithm
	}
}

// SimilarMethod selects how similar-movie lookups measure similarity.
type SimilarMethod string

const (
	SimilarByGenre    SimilarMethod = "genre"
	SimilarByTags     SimilarMethod = "tags"
	SimilarByCombined SimilarMethod = "combined"
)

// ParseSimilarMethod validates a similarity method from a request
// parameter. An empty name selects genre similarity.
func ParseSimilarMethod(name string) (SimilarMethod, error) {
	switch SimilarMethod(name) {
	case "":
		return SimilarByGenre, nil
	case SimilarByGenre, SimilarByTags, SimilarByCombined:
		return SimilarMethod(name), nil
	default:
		return "", errors.New("unknown similarity method")
	}
}

// Period selects the lookback window for trending movies.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// ParsePeriod validates a trending period from a request parameter.
// An empty name selects the weekly window.
func ParsePeriod(name string) (Period, error) {
	switch Period(name) {
	case "":
		return PeriodWeekly, nil
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return Period(name), nil
	default:
		return "", errors.New("unknown trending period")
	}
}

// Lookback returns the time window covered by the period.
func (p Period) Lookback() time.Duration {
	switch p {
	case PeriodDaily:
		return 24 * time.Hour
	case PeriodMonthly:
		return 30 * 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

// Recommendation is a single scored result.
type Recommendation struct {
	// Movie is the recommended movie with genres, tags and rating
	// aggregates populated.
	Movie models.Movie `json:"movie"`

	// Score is the value the producing strategy ranked by. Scores are
	// only comparable within a single result list.
	Score float64 `json:"score"`

	// Reason is a human-readable explanation of why the movie was
	// recommended.
	Reason string `json:"reason"`
}

// Request describes a recommendation query after parameter validation.
type Request struct {
	// UserID is the authenticated user, or zero for anonymous requests.
	UserID int64

	// Algorithm is the requested strategy.
	Algorithm Algorithm

	// Limit is the maximum number of results to return.
	Limit int

	// MinRating filters out movies below this IMDb rating. Zero
	// disables the filter.
	MinRating float64

	// ExcludeRated removes movies the user has already rated. The
	// personalized strategies always exclude rated movies; this flag
	// extends the behavior to popularity results.
	ExcludeRated bool

	// ExcludeWatched removes movies present in the user's watch
	// history.
	ExcludeWatched bool
}

// Response carries the results of a recommendation query.
type Response struct {
	// AlgorithmRequested is the strategy named by the request.
	AlgorithmRequested Algorithm `json:"algorithm_requested"`

	// AlgorithmUsed is the strategy that actually produced the results
	// after fallback resolution.
	AlgorithmUsed Algorithm `json:"algorithm_used"`

	// TotalRecommendations is len(Recommendations), carried in the body
	// so clients need not count the array.
	TotalRecommendations int `json:"total_recommendations"`

	// Recommendations holds the scored results in rank order.
	Recommendations []Recommendation `json:"recommendations"`

	// Cached reports whether the response was served from cache.
	Cached bool `json:"cached"`
}

// MovieStats carries a movie's rating aggregates, rounded for display.
type MovieStats struct {
	MovieID       int64   `json:"movie_id"`
	TotalRatings  int     `json:"total_ratings"`
	AverageRating float64 `json:"average_rating"`
}

// MovieFilter narrows catalog reads. Zero values leave the dimension
// unconstrained.
type MovieFilter struct {
	// MinIMDBRating keeps only movies at or above this IMDb rating.
	MinIMDBRating float64

	// RatedOnly keeps only movies with at least one user rating.
	RatedOnly bool

	// GenreIDs keeps movies belonging to any of the listed genres.
	GenreIDs []int64

	// CreatedAfter keeps movies added to the catalog after this time.
	CreatedAfter time.Time
}

// Store defines the data access the engine needs. It is implemented by
// the database layer. All movie reads return genres, tags and rating
// aggregates populated, ordered by movie ID ascending.
type Store interface {
	// GetMovie returns a single movie, or ErrMovieNotFound.
	GetMovie(ctx context.Context, id int64) (*models.Movie, error)

	// ListMovies returns catalog movies matching the filter.
	ListMovies(ctx context.Context, f MovieFilter) ([]models.Movie, error)

	// MoviesByIDs returns the movies with the given IDs. Missing IDs
	// are silently skipped.
	MoviesByIDs(ctx context.Context, ids []int64) ([]models.Movie, error)

	// RatingsForUser returns all ratings recorded by one user.
	RatingsForUser(ctx context.Context, userID int64) ([]models.Rating, error)

	// AllRatings returns every rating in the system, ordered by user ID
	// then movie ID. Collaborative filtering scans this once per
	// computation.
	AllRatings(ctx context.Context) ([]models.Rating, error)

	// FavoritesForUser returns the user's favorited movies.
	FavoritesForUser(ctx context.Context, userID int64) ([]models.Favorite, error)

	// WatchedMovieIDs returns the distinct movie IDs in the user's
	// watch history.
	WatchedMovieIDs(ctx context.Context, userID int64) ([]int64, error)
}

// Strategy computes recommendations for a validated request. Strategies
// are stateless between calls and safe for concurrent use.
type Strategy interface {
	// Name returns the algorithm identifier the strategy serves.
	Name() Algorithm

	// Recommend computes scored results. Personalized strategies return
	// ErrInsufficientSignal when the user lacks the activity they need.
	Recommend(ctx context.Context, req Request) ([]Recommendation, error)
}
