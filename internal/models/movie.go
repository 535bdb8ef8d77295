// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package models

import "time"

// Genre is a movie genre reference.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Tag is a free-form categorization label attached to movies.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Movie represents a catalog entry. Movies are immutable from the
// recommendation engine's perspective; the catalog store owns them.
//
// AverageRating and RatingCount are derived aggregates populated by store
// queries, not stored columns. AverageRating is 0 when the movie has no
// ratings.
type Movie struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	ReleaseDate     time.Time `json:"release_date"`
	DurationMinutes int       `json:"duration_minutes,omitempty"`
	PosterURL       string    `json:"poster_url,omitempty"`

	// IMDBRating is the external critic rating (0.0-10.0).
	IMDBRating float64 `json:"imdb_rating"`

	// PopularityScore is a pre-computed, non-negative popularity metric.
	PopularityScore float64 `json:"popularity_score"`

	Genres []Genre `json:"genres,omitempty"`
	Tags   []Tag   `json:"tags,omitempty"`

	AverageRating float64 `json:"average_rating"`
	RatingCount   int     `json:"rating_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Decade returns the movie's release decade (year rounded down to the
// nearest 10), or 0 when the release date is unset.
func (m *Movie) Decade() int {
	if m.ReleaseDate.IsZero() {
		return 0
	}
	year := m.ReleaseDate.Year()
	return year - year%10
}

// GenreIDs returns the IDs of the movie's genres.
func (m *Movie) GenreIDs() []int64 {
	ids := make([]int64, len(m.Genres))
	for i, g := range m.Genres {
		ids[i] = g.ID
	}
	return ids
}

// TagIDs returns the IDs of the movie's tags.
func (m *Movie) TagIDs() []int64 {
	ids := make([]int64, len(m.Tags))
	for i, t := range m.Tags {
		ids[i] = t.ID
	}
	return ids
}
