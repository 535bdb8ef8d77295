// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cinescope/cinescope/internal/config"
	"github.com/cinescope/cinescope/internal/middleware"
)

// Router wires handlers to routes and applies the middleware stack.
type Router struct {
	handler *Handler
	cfg     *config.ServerConfig
}

// NewRouter creates a router for the given handler set.
func NewRouter(handler *Handler, cfg *config.ServerConfig) *Router {
	return &Router{handler: handler, cfg: cfg}
}

// Setup builds the chi route tree.
//
// Authentication is applied per route group: auth and health endpoints are
// public, catalog reads accept anonymous callers, and everything touching
// per-user state requires a valid token.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   router.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	rateLimit := httprate.LimitByIP(router.cfg.RateLimitReqs, router.cfg.RateLimitWindow)
	optionalAuth := router.handler.jwt.Middleware(false, rejectUnauthorized)
	requiredAuth := router.handler.jwt.Middleware(true, rejectUnauthorized)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimit)
		r.Use(middleware.Metrics)

		r.Get("/health", router.handler.Health)

		r.Route("/auth", func(r chi.Router) {
			// Tighter limit keeps credential stuffing slow.
			r.Use(httprate.LimitByIP(10, time.Minute))
			r.Post("/register", router.handler.Register)
			r.Post("/login", router.handler.Login)
		})

		// Catalog reads work for anonymous callers; a presented token is
		// still validated so exclusion filters can apply.
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)

			r.Get("/movies", router.handler.ListMovies)
			r.Get("/movies/popular", router.handler.PopularMovies)
			r.Get("/movies/{id}", router.handler.GetMovie)
			r.Get("/movies/{id}/stats", router.handler.GetMovieStats)
			r.Get("/genres", router.handler.ListGenres)

			r.Get("/recommendations/trending", router.handler.TrendingMovies)
			r.Get("/recommendations/movies/{id}/similar", router.handler.SimilarMovies)
		})

		// Per-user state requires authentication.
		r.Group(func(r chi.Router) {
			r.Use(requiredAuth)

			r.Post("/movies", router.handler.CreateMovie)

			r.Get("/recommendations/for-me", router.handler.Recommendations)
			r.Get("/recommendations/ws", router.handler.RecommendationsWS)

			r.Route("/me", func(r chi.Router) {
				r.Get("/ratings", router.handler.ListMyRatings)
				r.Put("/ratings/{id}", router.handler.RateMovie)
				r.Delete("/ratings/{id}", router.handler.DeleteRating)

				r.Get("/favorites", router.handler.ListMyFavorites)
				r.Post("/favorites/{id}", router.handler.AddFavorite)
				r.Delete("/favorites/{id}", router.handler.RemoveFavorite)

				r.Get("/watch-history", router.handler.ListMyWatchHistory)
				r.Post("/watch-history", router.handler.AddWatchHistory)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

// rejectUnauthorized is the auth middleware's rejection response.
func rejectUnauthorized(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusUnauthorized, codeAuthRequired, "Authentication required", nil)
}
