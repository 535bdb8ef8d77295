// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

// Package database provides the DuckDB persistence layer.
//
// The DB type owns the connection, creates the schema on startup, and
// implements the recommend.Store interface so the recommendation
// engine stays decoupled from SQL. Movie reads always return genres,
// tags and rating aggregates populated, ordered by movie ID ascending
// for deterministic downstream ranking.
//
// Writes that feed recommendations (ratings, favorites, watch history)
// are idempotent upserts keyed on (user_id, movie_id), matching the
// one-row-per-user-per-movie invariant the API exposes.
package database
