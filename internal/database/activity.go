// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cinescope/cinescope/internal/models"
	"github.com/cinescope/cinescope/internal/recommend"
)

// UpsertRating records or replaces a user's rating for a movie and
// returns the stored row. The caller validates the score range.
func (db *DB) UpsertRating(ctx context.Context, userID, movieID int64, score float64, review string) (*models.Rating, error) {
	if err := db.requireMovie(ctx, movieID); err != nil {
		return nil, err
	}
	var r models.Rating
	err := db.conn.QueryRowContext(ctx, `
		INSERT INTO ratings (user_id, movie_id, score, review)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, movie_id) DO UPDATE SET
			score = excluded.score,
			review = excluded.review,
			updated_at = current_timestamp
		RETURNING id, user_id, movie_id, score, review, rated_at, updated_at`,
		userID, movieID, score, review,
	).Scan(&r.ID, &r.UserID, &r.MovieID, &r.Score, &r.Review, &r.RatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert rating: %w", err)
	}
	return &r, nil
}

// DeleteRating removes a user's rating. Deleting a rating that does
// not exist returns ErrNotFound.
func (db *DB) DeleteRating(ctx context.Context, userID, movieID int64) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM ratings WHERE user_id = ? AND movie_id = ?`, userID, movieID)
	if err != nil {
		return fmt.Errorf("delete rating: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rating result: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// RatingsForUser implements recommend.Store, ordered by movie ID.
func (db *DB) RatingsForUser(ctx context.Context, userID int64) ([]models.Rating, error) {
	return db.queryRatings(ctx, `
		SELECT id, user_id, movie_id, score, review, rated_at, updated_at
		FROM ratings WHERE user_id = ? ORDER BY movie_id ASC`, userID)
}

// AllRatings implements recommend.Store, ordered by user then movie.
func (db *DB) AllRatings(ctx context.Context) ([]models.Rating, error) {
	return db.queryRatings(ctx, `
		SELECT id, user_id, movie_id, score, review, rated_at, updated_at
		FROM ratings ORDER BY user_id ASC, movie_id ASC`)
}

func (db *DB) queryRatings(ctx context.Context, query string, args ...any) ([]models.Rating, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer closeQuietly(rows)

	ratings := []models.Rating{}
	for rows.Next() {
		var r models.Rating
		if err := rows.Scan(&r.ID, &r.UserID, &r.MovieID, &r.Score, &r.Review, &r.RatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, r)
	}
	return ratings, rows.Err()
}

// AddFavorite marks a movie as a favorite. Favoriting twice is a
// no-op.
func (db *DB) AddFavorite(ctx context.Context, userID, movieID int64) (*models.Favorite, error) {
	if err := db.requireMovie(ctx, movieID); err != nil {
		return nil, err
	}
	if _, err := db.conn.ExecContext(ctx, `
		INSERT OR IGNORE INTO favorites (user_id, movie_id) VALUES (?, ?)`,
		userID, movieID); err != nil {
		return nil, fmt.Errorf("insert favorite: %w", err)
	}
	var f models.Favorite
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, user_id, movie_id, created_at
		FROM favorites WHERE user_id = ? AND movie_id = ?`,
		userID, movieID,
	).Scan(&f.ID, &f.UserID, &f.MovieID, &f.FavoritedAt)
	if err != nil {
		return nil, fmt.Errorf("read favorite: %w", err)
	}
	return &f, nil
}

// RemoveFavorite unmarks a favorite, returning ErrNotFound when it was
// not set.
func (db *DB) RemoveFavorite(ctx context.Context, userID, movieID int64) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND movie_id = ?`, userID, movieID)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete favorite result: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// FavoritesForUser implements recommend.Store, ordered by movie ID.
func (db *DB) FavoritesForUser(ctx context.Context, userID int64) ([]models.Favorite, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, user_id, movie_id, created_at
		FROM favorites WHERE user_id = ? ORDER BY movie_id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query favorites: %w", err)
	}
	defer closeQuietly(rows)

	favorites := []models.Favorite{}
	for rows.Next() {
		var f models.Favorite
		if err := rows.Scan(&f.ID, &f.UserID, &f.MovieID, &f.FavoritedAt); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		favorites = append(favorites, f)
	}
	return favorites, rows.Err()
}

// AddWatchHistory appends a viewing event. Repeat views of the same
// movie are separate rows.
func (db *DB) AddWatchHistory(ctx context.Context, w *models.WatchHistory) error {
	if err := db.requireMovie(ctx, w.MovieID); err != nil {
		return err
	}
	err := db.conn.QueryRowContext(ctx, `
		INSERT INTO watch_history (user_id, movie_id, duration_minutes, completed)
		VALUES (?, ?, ?, ?)
		RETURNING id, watched_at`,
		w.UserID, w.MovieID, w.DurationMinutes, w.Completed,
	).Scan(&w.ID, &w.WatchedAt)
	if err != nil {
		return fmt.Errorf("insert watch history: %w", err)
	}
	return nil
}

// WatchHistoryForUser returns viewing events newest first.
func (db *DB) WatchHistoryForUser(ctx context.Context, userID int64) ([]models.WatchHistory, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, user_id, movie_id, watched_at, duration_minutes, completed
		FROM watch_history WHERE user_id = ?
		ORDER BY watched_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query watch history: %w", err)
	}
	defer closeQuietly(rows)

	history := []models.WatchHistory{}
	for rows.Next() {
		var w models.WatchHistory
		if err := rows.Scan(&w.ID, &w.UserID, &w.MovieID, &w.WatchedAt, &w.DurationMinutes, &w.Completed); err != nil {
			return nil, fmt.Errorf("scan watch history: %w", err)
		}
		history = append(history, w)
	}
	return history, rows.Err()
}

// WatchedMovieIDs implements recommend.Store: distinct movie IDs in
// the user's history, ordered ascending.
func (db *DB) WatchedMovieIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT DISTINCT movie_id FROM watch_history
		WHERE user_id = ? ORDER BY movie_id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query watched movies: %w", err)
	}
	defer closeQuietly(rows)

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan watched movie: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// requireMovie verifies a movie exists before linking activity to it.
// DuckDB does not enforce foreign keys, so the check is explicit.
func (db *DB) requireMovie(ctx context.Context, movieID int64) error {
	var one int
	err := db.conn.QueryRowContext(ctx,
		`SELECT 1 FROM movies WHERE id = ?`, movieID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return recommend.ErrMovieNotFound
	}
	if err != nil {
		return fmt.Errorf("check movie %d: %w", movieID, err)
	}
	return nil
}
