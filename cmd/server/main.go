// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

// Package main is the entry point for the Cinescope server.
//
// Cinescope is a movie catalog backend with a personalized recommendation
// engine. It serves a REST API for browsing the catalog, recording user
// activity (ratings, favorites, watch history) and computing recommendations
// through five strategies: popularity, genre affinity, collaborative
// filtering, content similarity and a hybrid blend.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: settings from environment variables and config files (Koanf v2)
//  2. Logging: structured zerolog output, JSON or console format
//  3. Database: DuckDB catalog and activity store, optionally seeded
//  4. Cache: Redis when enabled, in-process LRU otherwise
//  5. Recommendation engine: strategies wired to store and cache
//  6. HTTP server: chi router with JWT auth, metrics and WebSocket support
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): CINESCOPE_-prefixed environment variables, a config file
// (config.yaml), then built-in defaults. A JWT secret of 32+ characters is
// required:
//
//	export CINESCOPE_SECURITY_JWT_SECRET=$(openssl rand -hex 32)
//	export CINESCOPE_DATABASE_PATH=/var/lib/cinescope/catalog.db
//	export CINESCOPE_REDIS_ENABLED=true
//	export CINESCOPE_REDIS_ADDR=localhost:6379
//	./cinescope
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it stops
// accepting new connections, waits up to 10 seconds for in-flight requests,
// then closes the cache and database.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cinescope/cinescope/internal/api"
	"github.com/cinescope/cinescope/internal/auth"
	"github.com/cinescope/cinescope/internal/cache"
	"github.com/cinescope/cinescope/internal/config"
	"github.com/cinescope/cinescope/internal/database"
	"github.com/cinescope/cinescope/internal/logging"
	"github.com/cinescope/cinescope/internal/recommend"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	logging.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Bool("redis", cfg.Redis.Enabled).
		Msg("Starting Cinescope")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close database")
		}
	}()

	if cfg.Database.SeedSampleData {
		if err := db.SeedSampleData(ctx); err != nil {
			return fmt.Errorf("seed sample data: %w", err)
		}
	}

	c, err := newCache(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init cache: %w", err)
	}
	defer func() {
		if closer, ok := c.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				logging.Error().Err(err).Msg("Failed to close cache")
			}
		}
	}()

	engine, err := recommend.NewEngine(db, c, engineConfig(cfg), logging.Logger())
	if err != nil {
		return fmt.Errorf("init recommendation engine: %w", err)
	}

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		return fmt.Errorf("init auth: %w", err)
	}

	handler := api.NewHandler(db, engine, jwtManager, cache.NewInvalidator(c))
	router := api.NewRouter(handler, &cfg.Server)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logging.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logging.Info().Msg("Shutdown complete")
	return nil
}

// newCache selects the cache backend. Redis keeps entries shared across
// replicas; the in-process cache suits single-instance deployments.
func newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	if cfg.Redis.Enabled {
		return cache.NewRedis(ctx, &cfg.Redis)
	}
	return cache.NewMemory(1024), nil
}

// engineConfig maps configuration onto the engine's tuning parameters.
func engineConfig(cfg *config.Config) recommend.Config {
	return recommend.Config{
		DefaultLimit:        cfg.Recommend.DefaultLimit,
		MaxLimit:            cfg.Recommend.MaxLimit,
		LikeThreshold:       cfg.Recommend.LikeThreshold,
		FavoriteWeight:      cfg.Recommend.FavoriteWeight,
		TopGenres:           cfg.Recommend.TopGenres,
		MinRatingsForCF:     cfg.Recommend.MinRatingsForCF,
		MaxSimilarUsers:     cfg.Recommend.MaxSimilarUsers,
		SimilarityThreshold: cfg.Recommend.SimilarityThreshold,
		MinNeighborSupport:  cfg.Recommend.MinNeighborSupport,
		GenreWeight:         cfg.Recommend.GenreWeight,
		TagWeight:           cfg.Recommend.TagWeight,
		DecadeWeight:        cfg.Recommend.DecadeWeight,
		MinRatingsForHybrid: cfg.Recommend.MinRatingsForHybrid,
		RecommendationsTTL:  cfg.Cache.RecommendationsTTL,
		PopularTTL:          cfg.Cache.PopularTTL,
		TrendingTTL:         cfg.Cache.TrendingTTL,
	}
}
