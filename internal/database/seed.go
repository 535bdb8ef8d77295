// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/cinescope/cinescope/internal/logging"
	"github.com/cinescope/cinescope/internal/models"
)

// SeedSampleData loads a small deterministic catalog for demos and
// local development. It is a no-op when the catalog already has
// movies, so restarts never duplicate data.
func (db *DB) SeedSampleData(ctx context.Context) error {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies`).Scan(&count); err != nil {
		return fmt.Errorf("count movies: %w", err)
	}
	if count > 0 {
		logging.Debug().Int("movies", count).Msg("catalog already populated, skipping seed")
		return nil
	}
	logging.Info().Msg("seeding sample catalog")

	genres := map[string]models.Genre{}
	for _, name := range []string{"Action", "Drama", "Comedy", "Sci-Fi", "Thriller", "Romance"} {
		g, err := db.UpsertGenre(ctx, name)
		if err != nil {
			return err
		}
		genres[name] = g
	}
	tags := map[string]models.Tag{}
	for _, name := range []string{"heist", "space", "dystopia", "courtroom", "road-trip", "time-travel", "noir"} {
		t, err := db.UpsertTag(ctx, name)
		if err != nil {
			return err
		}
		tags[name] = t
	}

	type seedMovie struct {
		title      string
		year       int
		minutes    int
		imdb       float64
		popularity float64
		genres     []string
		tags       []string
	}
	catalog := []seedMovie{
		{"Orbital Decay", 2019, 128, 7.4, 88, []string{"Sci-Fi", "Thriller"}, []string{"space", "dystopia"}},
		{"The Velvet Case", 2015, 112, 7.9, 75, []string{"Drama", "Thriller"}, []string{"courtroom", "noir"}},
		{"Midnight Cartel", 2021, 135, 6.8, 92, []string{"Action", "Thriller"}, []string{"heist"}},
		{"Paper Lanterns", 2012, 104, 8.1, 61, []string{"Drama", "Romance"}, nil},
		{"Gravity Well", 2023, 141, 7.2, 95, []string{"Sci-Fi", "Action"}, []string{"space", "time-travel"}},
		{"The Long Detour", 2017, 98, 6.5, 48, []string{"Comedy"}, []string{"road-trip"}},
		{"Silent Verdict", 2008, 119, 7.7, 55, []string{"Drama"}, []string{"courtroom"}},
		{"Chrome City", 2020, 108, 6.9, 70, []string{"Action", "Sci-Fi"}, []string{"dystopia", "noir"}},
		{"Second Honeymoon", 2019, 95, 6.2, 42, []string{"Comedy", "Romance"}, []string{"road-trip"}},
		{"The Collector's Room", 2014, 122, 7.5, 64, []string{"Thriller"}, []string{"heist", "noir"}},
		{"Aurora Protocol", 2024, 132, 7.0, 90, []string{"Sci-Fi"}, []string{"space"}},
		{"Brass and Smoke", 2005, 116, 7.8, 51, []string{"Drama", "Action"}, nil},
		{"Laughing Matter", 2022, 101, 6.4, 58, []string{"Comedy", "Drama"}, []string{"courtroom"}},
		{"Run the Tide", 2018, 109, 6.7, 66, []string{"Action"}, []string{"heist"}},
		{"Winter Apartment", 2010, 93, 7.6, 45, []string{"Romance", "Drama"}, nil},
		{"Paradox Avenue", 2023, 126, 7.3, 84, []string{"Sci-Fi", "Comedy"}, []string{"time-travel"}},
	}

	for _, sm := range catalog {
		m := models.Movie{
			Title:           sm.title,
			ReleaseDate:     time.Date(sm.year, time.June, 15, 0, 0, 0, 0, time.UTC),
			DurationMinutes: sm.minutes,
			IMDBRating:      sm.imdb,
			PopularityScore: sm.popularity,
		}
		for _, name := range sm.genres {
			m.Genres = append(m.Genres, genres[name])
		}
		for _, name := range sm.tags {
			m.Tags = append(m.Tags, tags[name])
		}
		if err := db.CreateMovie(ctx, &m); err != nil {
			return fmt.Errorf("seed movie %q: %w", sm.title, err)
		}
	}

	// Sample viewers with overlapping taste so collaborative filtering
	// has a neighborhood to work with out of the box. The bcrypt hash
	// is for the password "cinescope-demo".
	const demoHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
	type seedRating struct {
		movie int // index into catalog
		score float64
	}
	viewers := []struct {
		username string
		ratings  []seedRating
	}{
		{"astrid", []seedRating{{0, 4.5}, {4, 5.0}, {10, 4.0}, {7, 3.5}, {5, 2.0}}},
		{"bruno", []seedRating{{0, 4.0}, {4, 4.5}, {10, 4.5}, {2, 4.0}, {13, 3.0}}},
		{"carmen", []seedRating{{1, 5.0}, {6, 4.5}, {3, 4.0}, {12, 3.5}, {0, 4.5}, {4, 4.5}}},
		{"dmitri", []seedRating{{2, 4.5}, {9, 4.0}, {13, 4.5}, {5, 3.0}}},
	}
	for _, v := range viewers {
		u, err := db.CreateUser(ctx, v.username, v.username+"@example.com", demoHash)
		if err != nil {
			return fmt.Errorf("seed user %q: %w", v.username, err)
		}
		for _, r := range v.ratings {
			movieID := int64(r.movie + 1)
			if _, err := db.UpsertRating(ctx, u.ID, movieID, r.score, ""); err != nil {
				return fmt.Errorf("seed rating: %w", err)
			}
		}
	}

	logging.Info().Int("movies", len(catalog)).Int("users", len(viewers)).Msg("sample catalog seeded")
	return nil
}
