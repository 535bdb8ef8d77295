// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package database

import (
	"context"
	"fmt"
)

// createSchema creates all tables, sequences and indexes. Every
// statement is idempotent so startup after a restart is a no-op.
func (db *DB) createSchema(ctx context.Context) error {
	statements := []string{
		`CREATE SEQUENCE IF NOT EXISTS seq_genre_id START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_tag_id START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_movie_id START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_user_id START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_rating_id START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_favorite_id START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_watch_id START 1`,

		`CREATE TABLE IF NOT EXISTS genres (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_genre_id'),
			name TEXT NOT NULL UNIQUE
		)`,

		`CREATE TABLE IF NOT EXISTS tags (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_tag_id'),
			name TEXT NOT NULL UNIQUE
		)`,

		`CREATE TABLE IF NOT EXISTS movies (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_movie_id'),
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			release_date DATE NOT NULL,
			duration_minutes INTEGER NOT NULL DEFAULT 0,
			poster_url TEXT NOT NULL DEFAULT '',
			imdb_rating DOUBLE NOT NULL DEFAULT 0,
			popularity_score DOUBLE NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			updated_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,

		`CREATE TABLE IF NOT EXISTS movie_genres (
			movie_id BIGINT NOT NULL,
			genre_id BIGINT NOT NULL,
			PRIMARY KEY (movie_id, genre_id)
		)`,

		`CREATE TABLE IF NOT EXISTS movie_tags (
			movie_id BIGINT NOT NULL,
			tag_id BIGINT NOT NULL,
			PRIMARY KEY (movie_id, tag_id)
		)`,

		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_user_id'),
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,

		// One rating per user per movie; writes are upserts.
		`CREATE TABLE IF NOT EXISTS ratings (
			id BIGINT NOT NULL DEFAULT nextval('seq_rating_id'),
			user_id BIGINT NOT NULL,
			movie_id BIGINT NOT NULL,
			score DOUBLE NOT NULL,
			review TEXT NOT NULL DEFAULT '',
			rated_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			updated_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			PRIMARY KEY (user_id, movie_id)
		)`,

		`CREATE TABLE IF NOT EXISTS favorites (
			id BIGINT NOT NULL DEFAULT nextval('seq_favorite_id'),
			user_id BIGINT NOT NULL,
			movie_id BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			PRIMARY KEY (user_id, movie_id)
		)`,

		`CREATE TABLE IF NOT EXISTS watch_history (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_watch_id'),
			user_id BIGINT NOT NULL,
			movie_id BIGINT NOT NULL,
			watched_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			duration_minutes INTEGER NOT NULL DEFAULT 0,
			completed BOOLEAN NOT NULL DEFAULT true
		)`,

		`CREATE INDEX IF NOT EXISTS idx_ratings_movie ON ratings(movie_id)`,
		`CREATE INDEX IF NOT EXISTS idx_favorites_movie ON favorites(movie_id)`,
		`CREATE INDEX IF NOT EXISTS idx_watch_user ON watch_history(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_movies_created ON movies(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_movie_genres_genre ON movie_genres(genre_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema statement: %s: %w", stmt, err)
		}
	}
	return nil
}
