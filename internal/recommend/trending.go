// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cinescope/cinescope/internal/models"
)

// trendingMovies lists movies added to the catalog within the period's
// lookback window, ordered by popularity score descending, then IMDb
// rating descending, then movie ID ascending.
func (e *Engine) trendingMovies(ctx context.Context, period Period, limit int) ([]models.Movie, error) {
	cutoff := e.now().Add(-period.Lookback())
	movies, err := e.store.ListMovies(ctx, MovieFilter{CreatedAfter: cutoff})
	if err != nil {
		return nil, fmt.Errorf("list recent movies: %w", err)
	}

	sort.Slice(movies, func(i, j int) bool {
		if movies[i].PopularityScore != movies[j].PopularityScore {
			return movies[i].PopularityScore > movies[j].PopularityScore
		}
		if movies[i].IMDBRating != movies[j].IMDBRating {
			return movies[i].IMDBRating > movies[j].IMDBRating
		}
		return movies[i].ID < movies[j].ID
	})

	if len(movies) > limit {
		movies = movies[:limit]
	}
	if movies == nil {
		movies = []models.Movie{}
	}
	return movies, nil
}

// now is replaceable in tests.
var timeNow = time.Now

func (e *Engine) now() time.Time {
	if e.clock != nil {
		return e.clock()
	}
	return timeNow()
}
