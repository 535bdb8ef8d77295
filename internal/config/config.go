// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

// Package config loads and validates Cinescope configuration.
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables > YAML config file > built-in
// defaults.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the Cinescope server.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	Security  SecurityConfig  `koanf:"security"`
	Recommend RecommendConfig `koanf:"recommend"`
	Cache     CacheConfig     `koanf:"cache"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	// CORSOrigins lists allowed CORS origins. "*" allows any origin.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitReqs requests per RateLimitWindow per client IP.
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the database file path. ":memory:" opens an in-memory database.
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`

	// SeedSampleData loads a small deterministic catalog on startup.
	SeedSampleData bool `koanf:"seed_sample_data"`
}

// RedisConfig holds cache backend settings. When Enabled is false the server
// runs with an in-process cache instead.
type RedisConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// SecurityConfig holds authentication settings.
type SecurityConfig struct {
	// JWTSecret signs HS256 tokens. Minimum 32 characters.
	JWTSecret    string        `koanf:"jwt_secret"`
	TokenTimeout time.Duration `koanf:"token_timeout"`
}

// RecommendConfig holds recommendation engine tuning knobs. Defaults follow
// the documented algorithm constants; overriding them changes ranking
// behavior but not the fallback structure.
type RecommendConfig struct {
	DefaultLimit int `koanf:"default_limit"`
	MaxLimit     int `koanf:"max_limit"`

	// LikeThreshold is the minimum rating score treated as a positive signal.
	LikeThreshold float64 `koanf:"like_threshold"`

	// FavoriteWeight is the preference-vector weight of a favorite. It must
	// exceed the maximum rating score so favorites outweigh any rating.
	FavoriteWeight float64 `koanf:"favorite_weight"`

	// TopGenres is how many of the user's highest-weighted genres the
	// genre strategy considers.
	TopGenres int `koanf:"top_genres"`

	// Collaborative filtering bounds.
	MinRatingsForCF     int     `koanf:"min_ratings_for_cf"`
	MaxSimilarUsers     int     `koanf:"max_similar_users"`
	SimilarityThreshold float64 `koanf:"similarity_threshold"`
	MinNeighborSupport  int     `koanf:"min_neighbor_support"`

	// Content-based vector weights (genre/tag/decade).
	GenreWeight  float64 `koanf:"genre_weight"`
	TagWeight    float64 `koanf:"tag_weight"`
	DecadeWeight float64 `koanf:"decade_weight"`

	// MinRatingsForHybrid gates the collaborative and content shares of the
	// hybrid composition.
	MinRatingsForHybrid int `koanf:"min_ratings_for_hybrid"`
}

// CacheConfig holds per-namespace TTLs.
type CacheConfig struct {
	RecommendationsTTL time.Duration `koanf:"recommendations_ttl"`
	PopularTTL         time.Duration `koanf:"popular_ttl"`
	TrendingTTL        time.Duration `koanf:"trending_ttl"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Database: DatabaseConfig{
			Path:           "/data/cinescope.duckdb",
			MaxMemory:      "1GB",
			Threads:        0, // 0 = runtime.NumCPU()
			SeedSampleData: false,
		},
		Redis: RedisConfig{
			Enabled:  true,
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
		},
		Security: SecurityConfig{
			JWTSecret:    "",
			TokenTimeout: 24 * time.Hour,
		},
		Recommend: RecommendConfig{
			DefaultLimit:        10,
			MaxLimit:            50,
			LikeThreshold:       4.0,
			FavoriteWeight:      5.5,
			TopGenres:           5,
			MinRatingsForCF:     3,
			MaxSimilarUsers:     10,
			SimilarityThreshold: 0.5,
			MinNeighborSupport:  2,
			GenreWeight:         0.4,
			TagWeight:           0.3,
			DecadeWeight:        0.3,
			MinRatingsForHybrid: 5,
		},
		Cache: CacheConfig{
			RecommendationsTTL: 5 * time.Minute,
			PopularTTL:         10 * time.Minute,
			TrendingTTL:        15 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks configuration invariants. It is called by Load; call it
// directly when constructing a Config by hand.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Security.JWTSecret != "" && len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("security.jwt_secret must be at least 32 characters")
	}
	r := &c.Recommend
	if r.DefaultLimit <= 0 || r.MaxLimit < r.DefaultLimit {
		return fmt.Errorf("recommend limits invalid: default=%d max=%d", r.DefaultLimit, r.MaxLimit)
	}
	if r.LikeThreshold < 0.5 || r.LikeThreshold > 5.0 {
		return fmt.Errorf("recommend.like_threshold %.2f outside rating scale", r.LikeThreshold)
	}
	if r.FavoriteWeight <= 5.0 {
		return fmt.Errorf("recommend.favorite_weight %.2f must exceed the maximum rating score", r.FavoriteWeight)
	}
	if r.SimilarityThreshold < 0 || r.SimilarityThreshold > 1 {
		return fmt.Errorf("recommend.similarity_threshold %.2f out of range", r.SimilarityThreshold)
	}
	if r.MaxSimilarUsers <= 0 {
		return fmt.Errorf("recommend.max_similar_users must be positive")
	}
	if r.GenreWeight < 0 || r.TagWeight < 0 || r.DecadeWeight < 0 {
		return fmt.Errorf("recommend vector weights must be non-negative")
	}
	if r.GenreWeight+r.TagWeight+r.DecadeWeight == 0 {
		return fmt.Errorf("recommend vector weights must not all be zero")
	}
	for _, ttl := range []time.Duration{c.Cache.RecommendationsTTL, c.Cache.PopularTTL, c.Cache.TrendingTTL} {
		if ttl <= 0 {
			return fmt.Errorf("cache TTLs must be positive")
		}
	}
	return nil
}
