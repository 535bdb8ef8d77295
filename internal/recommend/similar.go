// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package recommend

import (
	"context"
	"fmt"
	"sort"

	"github.com/cinescope/cinescope/internal/models"
)

// SimilarMovie is a similar-movie result with the attribute overlap
// that produced it.
type SimilarMovie struct {
	// Movie is the similar movie.
	Movie models.Movie `json:"movie"`

	// SharedGenres is the number of genres shared with the source
	// movie.
	SharedGenres int `json:"shared_genres"`

	// SharedTags is the number of tags shared with the source movie.
	SharedTags int `json:"shared_tags"`
}

// similarMovies computes movies similar to the given one by attribute
// overlap. The genre and tag methods rank by shared count; combined
// lists genre matches first and appends tag-only matches. A movie with
// no tags yields an empty tag section rather than an error.
func (e *Engine) similarMovies(ctx context.Context, movieID int64, method SimilarMethod, limit int) ([]SimilarMovie, error) {
	target, err := e.store.GetMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}

	catalog, err := e.store.ListMovies(ctx, MovieFilter{})
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}

	targetGenres := idSet(target.GenreIDs())
	targetTags := idSet(target.TagIDs())

	var byGenre, byTags []SimilarMovie
	for _, m := range catalog {
		if m.ID == movieID {
			continue
		}
		sm := SimilarMovie{Movie: m}
		for _, id := range m.GenreIDs() {
			if _, ok := targetGenres[id]; ok {
				sm.SharedGenres++
			}
		}
		for _, id := range m.TagIDs() {
			if _, ok := targetTags[id]; ok {
				sm.SharedTags++
			}
		}
		if sm.SharedGenres > 0 {
			byGenre = append(byGenre, sm)
		}
		if sm.SharedTags > 0 {
			byTags = append(byTags, sm)
		}
	}

	rankSimilar(byGenre, func(sm SimilarMovie) int { return sm.SharedGenres })
	rankSimilar(byTags, func(sm SimilarMovie) int { return sm.SharedTags })

	var out []SimilarMovie
	switch method {
	case SimilarByTags:
		out = byTags
	case SimilarByCombined:
		out = byGenre
		seen := make(map[int64]struct{}, len(byGenre))
		for _, sm := range byGenre {
			seen[sm.Movie.ID] = struct{}{}
		}
		for _, sm := range byTags {
			if _, dup := seen[sm.Movie.ID]; !dup {
				out = append(out, sm)
			}
		}
	default:
		out = byGenre
	}

	if out == nil {
		out = []SimilarMovie{}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// rankSimilar orders by shared-attribute count descending, then
// popularity descending, then movie ID ascending.
func rankSimilar(movies []SimilarMovie, shared func(SimilarMovie) int) {
	sort.Slice(movies, func(i, j int) bool {
		si, sj := shared(movies[i]), shared(movies[j])
		if si != sj {
			return si > sj
		}
		if movies[i].Movie.PopularityScore != movies[j].Movie.PopularityScore {
			return movies[i].Movie.PopularityScore > movies[j].Movie.PopularityScore
		}
		return movies[i].Movie.ID < movies[j].Movie.ID
	})
}
