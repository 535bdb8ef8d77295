// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(10)

	type payload struct {
		MovieID int64   `json:"movie_id"`
		Score   float64 `json:"score"`
	}

	in := []payload{{MovieID: 1, Score: 0.9}, {MovieID: 2, Score: 0.5}}
	if err := c.SetJSON(ctx, "k", in, time.Minute); err != nil {
		t.Fatalf("SetJSON() error: %v", err)
	}

	var out []payload
	found, err := c.GetJSON(ctx, "k", &out)
	if err != nil {
		t.Fatalf("GetJSON() error: %v", err)
	}
	if !found {
		t.Fatal("GetJSON() found = false, want true")
	}
	if len(out) != 2 || out[0].MovieID != 1 || out[1].Score != 0.5 {
		t.Errorf("round-trip mismatch: %+v", out)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemory(10)

	var out string
	found, err := c.GetJSON(context.Background(), "absent", &out)
	if err != nil {
		t.Fatalf("GetJSON() error: %v", err)
	}
	if found {
		t.Error("GetJSON() found = true for absent key")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(10)

	if err := c.SetJSON(ctx, "k", "v", time.Millisecond); err != nil {
		t.Fatalf("SetJSON() error: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	var out string
	if found, _ := c.GetJSON(ctx, "k", &out); found {
		t.Error("expired entry still served")
	}
}

func TestMemoryCacheEvictsLRU(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(2)

	c.SetJSON(ctx, "a", 1, time.Minute)
	c.SetJSON(ctx, "b", 2, time.Minute)

	// Touch "a" so "b" becomes the eviction candidate.
	var v int
	c.GetJSON(ctx, "a", &v)

	c.SetJSON(ctx, "c", 3, time.Minute)

	if found, _ := c.GetJSON(ctx, "b", &v); found {
		t.Error("least recently used entry survived eviction")
	}
	if found, _ := c.GetJSON(ctx, "a", &v); !found {
		t.Error("recently used entry was evicted")
	}
}

func TestMemoryCacheInvalidatePattern(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(10)

	c.SetJSON(ctx, "cinescope:recommendations:42:algorithm=genre", 1, time.Minute)
	c.SetJSON(ctx, "cinescope:recommendations:42:algorithm=hybrid", 2, time.Minute)
	c.SetJSON(ctx, "cinescope:recommendations:7:algorithm=genre", 3, time.Minute)

	if err := c.Invalidate(ctx, "cinescope:recommendations:42:*"); err != nil {
		t.Fatalf("Invalidate() error: %v", err)
	}

	var v int
	if found, _ := c.GetJSON(ctx, "cinescope:recommendations:42:algorithm=genre", &v); found {
		t.Error("invalidated entry still present")
	}
	if found, _ := c.GetJSON(ctx, "cinescope:recommendations:7:algorithm=genre", &v); !found {
		t.Error("unrelated user's entry was invalidated")
	}
}

func TestInvalidatorRatingChanged(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(32)
	inv := NewInvalidator(c)

	var v int
	c.SetJSON(ctx, Key(NamespaceRecommendations, "42", map[string]string{"algorithm": "genre"}), 1, time.Minute)
	c.SetJSON(ctx, Key(NamespaceMovieStats, "9", nil), 2, time.Minute)
	c.SetJSON(ctx, Key(NamespacePopular, "", map[string]string{"limit": "20"}), 3, time.Minute)
	c.SetJSON(ctx, Key(NamespaceRecommendations, "7", map[string]string{"algorithm": "genre"}), 4, time.Minute)

	inv.RatingChanged(ctx, 42, 9)

	if found, _ := c.GetJSON(ctx, Key(NamespaceRecommendations, "42", map[string]string{"algorithm": "genre"}), &v); found {
		t.Error("acting user's recommendations survived rating write")
	}
	if found, _ := c.GetJSON(ctx, Key(NamespaceMovieStats, "9", nil), &v); found {
		t.Error("rated movie's stats survived rating write")
	}
	if found, _ := c.GetJSON(ctx, Key(NamespacePopular, "", map[string]string{"limit": "20"}), &v); found {
		t.Error("popular listing survived rating write")
	}
	if found, _ := c.GetJSON(ctx, Key(NamespaceRecommendations, "7", map[string]string{"algorithm": "genre"}), &v); !found {
		t.Error("other user's recommendations were invalidated")
	}
}

func TestInvalidatorFavoriteChangedScopesToUser(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(32)
	inv := NewInvalidator(c)

	var v int
	userKey := Key(NamespaceRecommendations, "42", map[string]string{"algorithm": "hybrid"})
	c.SetJSON(ctx, userKey, 1, time.Minute)
	c.SetJSON(ctx, Key(NamespacePopular, "", map[string]string{"limit": "20"}), 2, time.Minute)

	inv.FavoriteChanged(ctx, 42, 9)

	if found, _ := c.GetJSON(ctx, userKey, &v); found {
		t.Error("user's recommendations survived favorite write")
	}
	if found, _ := c.GetJSON(ctx, Key(NamespacePopular, "", map[string]string{"limit": "20"}), &v); !found {
		t.Error("favorite write should not touch popular listings")
	}
}

func TestInvalidatorScopeIsNotAPrefixMatch(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(32)
	inv := NewInvalidator(c)

	params := map[string]string{"algorithm": "genre"}
	var v int
	c.SetJSON(ctx, Key(NamespaceRecommendations, "4", params), 1, time.Minute)
	c.SetJSON(ctx, Key(NamespaceRecommendations, "42", params), 2, time.Minute)

	inv.FavoriteChanged(ctx, 4, 9)

	if found, _ := c.GetJSON(ctx, Key(NamespaceRecommendations, "4", params), &v); found {
		t.Error("user 4's recommendations survived favorite write")
	}
	if found, _ := c.GetJSON(ctx, Key(NamespaceRecommendations, "42", params), &v); !found {
		t.Error("user 42's recommendations invalidated by user 4's write")
	}
}
