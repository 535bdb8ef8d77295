// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/cinescope/cinescope/internal/auth"
	"github.com/cinescope/cinescope/internal/cache"
	"github.com/cinescope/cinescope/internal/config"
	"github.com/cinescope/cinescope/internal/database"
	"github.com/cinescope/cinescope/internal/models"
	"github.com/cinescope/cinescope/internal/recommend"
)

const testJWTSecret = "0123456789abcdef0123456789abcdef"

// envelope mirrors models.APIResponse with a raw data payload so each test
// can decode data into its own type.
type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

type testServer struct {
	t   *testing.T
	srv *httptest.Server
	db  *database.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "256MB",
		Threads:   2,
	})
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})

	c := cache.NewMemory(256)
	engine, err := recommend.NewEngine(db, c, recommend.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	jwt, err := auth.NewJWTManager(&config.SecurityConfig{
		JWTSecret:    testJWTSecret,
		TokenTimeout: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}

	handler := NewHandler(db, engine, jwt, cache.NewInvalidator(c))
	router := NewRouter(handler, &config.ServerConfig{
		CORSOrigins:     []string{"*"},
		RateLimitReqs:   1000,
		RateLimitWindow: time.Minute,
	})

	srv := httptest.NewServer(router.Setup())
	t.Cleanup(srv.Close)

	return &testServer{t: t, srv: srv, db: db}
}

// do issues a request against the test server and decodes the response
// envelope. body is JSON-encoded when non-nil; token adds a bearer header.
func (ts *testServer) do(method, path, token string, body interface{}) (int, envelope) {
	ts.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			ts.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ts.srv.URL+path, reader)
	if err != nil {
		ts.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.srv.Client().Do(req)
	if err != nil {
		ts.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		ts.t.Fatalf("decode envelope for %s %s: %v", method, path, err)
	}
	return resp.StatusCode, env
}

// register creates an account through the API and returns its token.
func (ts *testServer) register(username string) string {
	ts.t.Helper()

	status, env := ts.do(http.MethodPost, "/api/v1/auth/register", "", registerRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct-horse-battery",
	})
	if status != http.StatusCreated {
		ts.t.Fatalf("register %s: status %d, error %+v", username, status, env.Error)
	}

	var data authResponse
	if err := json.Unmarshal(env.Data, &data); err != nil {
		ts.t.Fatalf("decode auth response: %v", err)
	}
	return data.Token
}

// seedMovie inserts a movie with the named genres and tags.
func (ts *testServer) seedMovie(title string, year int, popularity, imdb float64, genres, tags []string) *models.Movie {
	ts.t.Helper()
	ctx := context.Background()

	movie := &models.Movie{
		Title:           title,
		ReleaseDate:     time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC),
		PopularityScore: popularity,
		IMDBRating:      imdb,
	}
	for _, name := range genres {
		genre, err := ts.db.UpsertGenre(ctx, name)
		if err != nil {
			ts.t.Fatalf("UpsertGenre %s: %v", name, err)
		}
		movie.Genres = append(movie.Genres, genre)
	}
	for _, name := range tags {
		tag, err := ts.db.UpsertTag(ctx, name)
		if err != nil {
			ts.t.Fatalf("UpsertTag %s: %v", name, err)
		}
		movie.Tags = append(movie.Tags, tag)
	}
	if err := ts.db.CreateMovie(ctx, movie); err != nil {
		ts.t.Fatalf("CreateMovie %s: %v", title, err)
	}
	return movie
}

// seedCatalog loads a small fixed catalog and returns the movies by title.
func (ts *testServer) seedCatalog() map[string]*models.Movie {
	ts.t.Helper()

	catalog := map[string]*models.Movie{}
	for _, m := range []struct {
		title      string
		year       int
		popularity float64
		imdb       float64
		genres     []string
		tags       []string
	}{
		{"Die Fast", 1995, 90, 7.1, []string{"Action"}, []string{"heist"}},
		{"Skyfire", 2005, 80, 6.8, []string{"Action"}, []string{"space"}},
		{"Last Stand", 2015, 70, 7.9, []string{"Action", "Drama"}, nil},
		{"Quiet Rooms", 2014, 60, 8.2, []string{"Drama"}, nil},
		{"The Letter", 1998, 50, 7.5, []string{"Drama"}, []string{"heist"}},
	} {
		catalog[m.title] = ts.seedMovie(m.title, m.year, m.popularity, m.imdb, m.genres, m.tags)
	}
	return catalog
}

// moviePath formats a movie endpoint path.
func moviePath(id int64, suffix string) string {
	return fmt.Sprintf("/api/v1/movies/%d%s", id, suffix)
}
