// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package recommend

import (
	"math"
	"sort"

	"github.com/cinescope/cinescope/internal/models"
)

// PreferenceVector aggregates a user's taste across genres, tags and
// release decades. Weights accumulate from rating scores and favorite
// markers; higher means stronger affinity.
type PreferenceVector struct {
	Genres  map[int64]float64
	Tags    map[int64]float64
	Decades map[int]float64
}

// NewPreferenceVector returns an empty vector.
func NewPreferenceVector() *PreferenceVector {
	return &PreferenceVector{
		Genres:  make(map[int64]float64),
		Tags:    make(map[int64]float64),
		Decades: make(map[int]float64),
	}
}

// Add accumulates a movie's attributes into the vector at the given
// weight.
func (v *PreferenceVector) Add(m *models.Movie, weight float64) {
	for _, g := range m.Genres {
		v.Genres[g.ID] += weight
	}
	for _, t := range m.Tags {
		v.Tags[t.ID] += weight
	}
	if d := m.Decade(); d != 0 {
		v.Decades[d] += weight
	}
}

// IsZero reports whether the vector carries no signal at all.
func (v *PreferenceVector) IsZero() bool {
	return len(v.Genres) == 0 && len(v.Tags) == 0 && len(v.Decades) == 0
}

// TopGenres returns the n highest-weight genre IDs. Ties break on the
// lower genre ID so the result is deterministic.
func (v *PreferenceVector) TopGenres(n int) []int64 {
	ids := make([]int64, 0, len(v.Genres))
	for id := range v.Genres {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		wi, wj := v.Genres[ids[i]], v.Genres[ids[j]]
		if wi != wj {
			return wi > wj
		}
		return ids[i] < ids[j]
	})
	if len(ids) > n {
		ids = ids[:n]
	}
	return ids
}

// Score measures how well a movie matches the vector. Each component is
// the weight share of the movie's matching attributes, blended by the
// configured component weights.
func (v *PreferenceVector) Score(m *models.Movie, genreW, tagW, decadeW float64) float64 {
	score := genreW * componentShare(v.Genres, m.GenreIDs())
	score += tagW * componentShare(v.Tags, m.TagIDs())
	if d := m.Decade(); d != 0 {
		if total := mapTotal(v.Decades); total > 0 {
			score += decadeW * v.Decades[d] / total
		}
	}
	return score
}

// componentShare returns the fraction of the vector component's total
// weight that the movie's attribute IDs account for. An empty component
// contributes zero rather than an error, so users with no tagged
// history still score on the remaining components.
func componentShare(weights map[int64]float64, ids []int64) float64 {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total == 0 {
		return 0
	}
	matched := 0.0
	for _, id := range ids {
		matched += weights[id]
	}
	return matched / total
}

func mapTotal(m map[int]float64) float64 {
	total := 0.0
	for _, w := range m {
		total += w
	}
	return total
}

// minCommonMovies is the rating overlap required before two users are
// considered comparable at all.
const minCommonMovies = 2

// UserSimilarity measures agreement between two users' rating maps on
// the movies both have rated. Each common movie contributes
// 1 - |a-b| / RatingRange; the result is the mean contribution, in
// [0, 1]. ok is false when the users share fewer than two rated movies.
func UserSimilarity(a, b map[int64]float64) (sim float64, ok bool) {
	common := 0
	total := 0.0
	for movieID, sa := range a {
		sb, shared := b[movieID]
		if !shared {
			continue
		}
		common++
		total += 1 - math.Abs(sa-sb)/models.RatingRange
	}
	if common < minCommonMovies {
		return 0, false
	}
	return total / float64(common), true
}

// rankByPopularity orders movies by popularity score descending, then
// average user rating descending, then movie ID ascending. This is the
// shared tie-break policy for popularity-ranked listings.
func rankByPopularity(movies []models.Movie) {
	sort.Slice(movies, func(i, j int) bool {
		if movies[i].PopularityScore != movies[j].PopularityScore {
			return movies[i].PopularityScore > movies[j].PopularityScore
		}
		if movies[i].AverageRating != movies[j].AverageRating {
			return movies[i].AverageRating > movies[j].AverageRating
		}
		return movies[i].ID < movies[j].ID
	})
}

// ratingMap converts a user's ratings to a movie ID keyed score map.
func ratingMap(ratings []models.Rating) map[int64]float64 {
	m := make(map[int64]float64, len(ratings))
	for _, r := range ratings {
		m[r.MovieID] = r.Score
	}
	return m
}

// idSet builds a membership set from ID slices.
func idSet(ids ...[]int64) map[int64]struct{} {
	set := make(map[int64]struct{})
	for _, group := range ids {
		for _, id := range group {
			set[id] = struct{}{}
		}
	}
	return set
}
