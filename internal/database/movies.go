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
	"strings"

	"github.com/cinescope/cinescope/internal/models"
	"github.com/cinescope/cinescope/internal/recommend"
)

// movieSelect is the shared projection for movie reads: base columns
// plus rating aggregates from a grouped join.
const movieSelect = `
SELECT m.id, m.title, m.description, m.release_date, m.duration_minutes,
       m.poster_url, m.imdb_rating, m.popularity_score,
       COALESCE(r.avg_score, 0) AS average_rating,
       COALESCE(r.rating_count, 0) AS rating_count,
       m.created_at, m.updated_at
FROM movies m
LEFT JOIN (
    SELECT movie_id, AVG(score) AS avg_score, COUNT(*) AS rating_count
    FROM ratings GROUP BY movie_id
) r ON r.movie_id = m.id`

// GetMovie implements recommend.Store.
func (db *DB) GetMovie(ctx context.Context, id int64) (*models.Movie, error) {
	row := db.conn.QueryRowContext(ctx, movieSelect+` WHERE m.id = ?`, id)
	m, err := scanMovie(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, recommend.ErrMovieNotFound
		}
		return nil, fmt.Errorf("get movie %d: %w", id, err)
	}
	if err := db.attachAttributes(ctx, []*models.Movie{m}); err != nil {
		return nil, err
	}
	return m, nil
}

// ListMovies implements recommend.Store. Results are ordered by movie
// ID ascending.
func (db *DB) ListMovies(ctx context.Context, f recommend.MovieFilter) ([]models.Movie, error) {
	var (
		where []string
		args  []any
	)
	if f.RatedOnly {
		where = append(where, "COALESCE(r.rating_count, 0) > 0")
	}
	if f.MinIMDBRating > 0 {
		where = append(where, "m.imdb_rating >= ?")
		args = append(args, f.MinIMDBRating)
	}
	if !f.CreatedAfter.IsZero() {
		where = append(where, "m.created_at > ?")
		args = append(args, f.CreatedAfter)
	}
	if len(f.GenreIDs) > 0 {
		where = append(where, fmt.Sprintf(
			"m.id IN (SELECT movie_id FROM movie_genres WHERE genre_id IN (%s))",
			placeholders(len(f.GenreIDs))))
		for _, id := range f.GenreIDs {
			args = append(args, id)
		}
	}

	query := movieSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY m.id ASC"

	return db.queryMovies(ctx, query, args...)
}

// MoviesByIDs implements recommend.Store. Missing IDs are skipped.
func (db *DB) MoviesByIDs(ctx context.Context, ids []int64) ([]models.Movie, error) {
	if len(ids) == 0 {
		return []models.Movie{}, nil
	}
	query := movieSelect + fmt.Sprintf(" WHERE m.id IN (%s) ORDER BY m.id ASC", placeholders(len(ids)))
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return db.queryMovies(ctx, query, args...)
}

// CreateMovie inserts a movie with its genre and tag links. Used by
// seeding and catalog administration.
func (db *DB) CreateMovie(ctx context.Context, m *models.Movie) error {
	err := db.conn.QueryRowContext(ctx, `
		INSERT INTO movies (title, description, release_date, duration_minutes, poster_url, imdb_rating, popularity_score)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id, created_at, updated_at`,
		m.Title, m.Description, m.ReleaseDate, m.DurationMinutes, m.PosterURL,
		m.IMDBRating, m.PopularityScore,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert movie: %w", err)
	}

	for _, g := range m.Genres {
		if _, err := db.conn.ExecContext(ctx,
			`INSERT OR IGNORE INTO movie_genres (movie_id, genre_id) VALUES (?, ?)`,
			m.ID, g.ID); err != nil {
			return fmt.Errorf("link genre %d: %w", g.ID, err)
		}
	}
	for _, t := range m.Tags {
		if _, err := db.conn.ExecContext(ctx,
			`INSERT OR IGNORE INTO movie_tags (movie_id, tag_id) VALUES (?, ?)`,
			m.ID, t.ID); err != nil {
			return fmt.Errorf("link tag %d: %w", t.ID, err)
		}
	}
	return nil
}

// UpsertGenre returns the genre with the given name, creating it if
// needed.
func (db *DB) UpsertGenre(ctx context.Context, name string) (models.Genre, error) {
	var g models.Genre
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name FROM genres WHERE name = ?`, name).Scan(&g.ID, &g.Name)
	if err == nil {
		return g, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return g, fmt.Errorf("lookup genre %q: %w", name, err)
	}
	err = db.conn.QueryRowContext(ctx,
		`INSERT INTO genres (name) VALUES (?) RETURNING id, name`, name).Scan(&g.ID, &g.Name)
	if err != nil {
		return g, fmt.Errorf("insert genre %q: %w", name, err)
	}
	return g, nil
}

// UpsertTag returns the tag with the given name, creating it if
// needed.
func (db *DB) UpsertTag(ctx context.Context, name string) (models.Tag, error) {
	var t models.Tag
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name FROM tags WHERE name = ?`, name).Scan(&t.ID, &t.Name)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return t, fmt.Errorf("lookup tag %q: %w", name, err)
	}
	err = db.conn.QueryRowContext(ctx,
		`INSERT INTO tags (name) VALUES (?) RETURNING id, name`, name).Scan(&t.ID, &t.Name)
	if err != nil {
		return t, fmt.Errorf("insert tag %q: %w", name, err)
	}
	return t, nil
}

// ListGenres returns every genre ordered by name.
func (db *DB) ListGenres(ctx context.Context) ([]models.Genre, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id, name FROM genres ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	defer closeQuietly(rows)

	genres := []models.Genre{}
	for rows.Next() {
		var g models.Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

// queryMovies runs a movieSelect-based query and attaches genres and
// tags to every result.
func (db *DB) queryMovies(ctx context.Context, query string, args ...any) ([]models.Movie, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer closeQuietly(rows)

	movies := []models.Movie{}
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movies = append(movies, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}

	refs := make([]*models.Movie, len(movies))
	for i := range movies {
		refs[i] = &movies[i]
	}
	if err := db.attachAttributes(ctx, refs); err != nil {
		return nil, err
	}
	return movies, nil
}

// scanner abstracts sql.Row and sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanMovie(s scanner) (*models.Movie, error) {
	var m models.Movie
	err := s.Scan(
		&m.ID, &m.Title, &m.Description, &m.ReleaseDate, &m.DurationMinutes,
		&m.PosterURL, &m.IMDBRating, &m.PopularityScore,
		&m.AverageRating, &m.RatingCount,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// attachAttributes loads genres and tags for the given movies in two
// batched queries.
func (db *DB) attachAttributes(ctx context.Context, movies []*models.Movie) error {
	if len(movies) == 0 {
		return nil
	}
	byID := make(map[int64]*models.Movie, len(movies))
	args := make([]any, 0, len(movies))
	for _, m := range movies {
		byID[m.ID] = m
		args = append(args, m.ID)
	}
	ph := placeholders(len(movies))

	rows, err := db.conn.QueryContext(ctx, fmt.Sprintf(`
		SELECT mg.movie_id, g.id, g.name
		FROM movie_genres mg JOIN genres g ON g.id = mg.genre_id
		WHERE mg.movie_id IN (%s)
		ORDER BY mg.movie_id, g.id`, ph), args...)
	if err != nil {
		return fmt.Errorf("load genres: %w", err)
	}
	defer closeQuietly(rows)
	for rows.Next() {
		var (
			movieID int64
			g       models.Genre
		)
		if err := rows.Scan(&movieID, &g.ID, &g.Name); err != nil {
			return fmt.Errorf("scan movie genre: %w", err)
		}
		byID[movieID].Genres = append(byID[movieID].Genres, g)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate movie genres: %w", err)
	}

	tagRows, err := db.conn.QueryContext(ctx, fmt.Sprintf(`
		SELECT mt.movie_id, t.id, t.name
		FROM movie_tags mt JOIN tags t ON t.id = mt.tag_id
		WHERE mt.movie_id IN (%s)
		ORDER BY mt.movie_id, t.id`, ph), args...)
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	defer closeQuietly(tagRows)
	for tagRows.Next() {
		var (
			movieID int64
			t       models.Tag
		)
		if err := tagRows.Scan(&movieID, &t.ID, &t.Name); err != nil {
			return fmt.Errorf("scan movie tag: %w", err)
		}
		byID[movieID].Tags = append(byID[movieID].Tags, t)
	}
	return tagRows.Err()
}

// placeholders builds a "?, ?, ?" list of the given length.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
