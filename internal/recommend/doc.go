// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

// Package recommend implements the movie recommendation engine.
//
// # Architecture
//
// The engine dispatches per-request to one of five strategies:
//
//   - Popularity: global ranking by popularity score, usable anonymously
//   - Genre: affinity to the genres of movies the user liked or favorited
//   - Collaborative: user-based filtering over rating overlap
//   - Content: genre/tag/decade similarity to the user's liked movies
//   - Hybrid: a fixed-order blend of the above
//
// Every personalized strategy declares the signal it needs; when a user
// lacks it the strategy fails with ErrInsufficientSignal and the engine
// walks a fixed fallback chain, ultimately landing on popularity, which
// always produces results. The response reports the algorithm that
// actually produced the results, not the one requested.
//
// # Design Principles
//
//   - Deterministic: same catalog and activity produce identical output,
//     with explicit tie-breaking at every ranking step
//   - Synchronous: recommendations are computed per request; there is no
//     training phase and no model state
//   - Cached: results are stored through the cache.Cache interface and
//     invalidated eagerly when the underlying activity changes
//
// # Usage
//
//	engine := recommend.NewEngine(store, c, cfg, logger)
//	resp, err := engine.Recommend(ctx, recommend.Request{
//	    UserID:    userID,
//	    Algorithm: recommend.AlgorithmHybrid,
//	    Limit:     10,
//	})
//
// The Store interface decouples the engine from the database package and
// is typically implemented by the DuckDB layer.
package recommend
