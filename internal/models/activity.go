// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package models

import "time"

// Rating score bounds. The catalog uses a 0.5-5.0 half-star scale, so the
// usable score range for similarity normalization is 4.5.
const (
	RatingMin   = 0.5
	RatingMax   = 5.0
	RatingRange = RatingMax - RatingMin
)

// Rating is a user's score for a movie. A user has at most one rating per
// movie; re-rating overwrites the existing row (upsert semantics).
type Rating struct {
	ID      int64   `json:"id"`
	UserID  int64   `json:"user_id"`
	MovieID int64   `json:"movie_id"`
	Score   float64 `json:"score"`
	Review  string  `json:"review,omitempty"`

	RatedAt   time.Time `json:"rated_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidScore reports whether s is within the allowed rating scale.
func ValidScore(s float64) bool {
	return s >= RatingMin && s <= RatingMax
}

// Favorite marks a movie as one of a user's favorites. Presence is a boolean
// preference signal, weighted more heavily than any single rating.
type Favorite struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	MovieID     int64     `json:"movie_id"`
	FavoritedAt time.Time `json:"favorited_at"`
}

// WatchHistory records a viewing event. Unlike ratings and favorites the
// (user, movie) pair is not unique; the engine treats any row as a
// watched-signal.
type WatchHistory struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	MovieID         int64     `json:"movie_id"`
	WatchedAt       time.Time `json:"watched_at"`
	DurationMinutes int       `json:"duration_minutes,omitempty"`
	Completed       bool      `json:"completed"`
}
