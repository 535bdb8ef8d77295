// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

// Package cache provides the recommendation cache layer.
//
// The cache is an explicitly injected collaborator, never a process-wide
// singleton, so the engine and its tests can substitute an in-memory fake.
// It is strictly accelerative: every failure of the backing store degrades
// to a miss and the caller recomputes.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Namespaces identify categories of cached computation. Recommendations and
// similar-movies share one TTL class; popular and trending movies another.
const (
	NamespaceRecommendations = "recommendations"
	NamespaceSimilarMovies   = "similar_movies"
	NamespacePopular         = "movies_popular"
	NamespaceTrending        = "movies_trending"
	NamespaceMovieStats      = "movie_stats"
)

// keyPrefix namespaces every Cinescope key in a shared Redis instance.
const keyPrefix = "cinescope"

// maxKeyLength bounds serialized keys; longer keys have their parameter tail
// replaced by a digest. The namespace and scope segments stay in the clear so
// pattern invalidation keeps working on hashed keys.
const maxKeyLength = 200

// Cache is the key-value contract the engine depends on. Implementations
// must be safe for concurrent use.
type Cache interface {
	// GetJSON reads key and unmarshals the stored JSON into dest.
	// The bool reports whether an unexpired entry existed.
	GetJSON(ctx context.Context, key string, dest any) (bool, error)

	// SetJSON marshals value and stores it under key with the given TTL.
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error

	// Invalidate deletes all keys matching pattern ("*" wildcards).
	// Best-effort: implementations may miss keys under concurrent writes.
	Invalidate(ctx context.Context, pattern string) error
}

// Key builds a deterministic cache key from a namespace, a scope (user or
// movie segment), and optional extra parameters sorted by name:
//
//	cinescope:recommendations:42:algorithm=genre:limit=10:min_rating=7
//
// Scope is kept out of the digest when the key exceeds maxKeyLength, so
// per-scope invalidation patterns still match.
func Key(namespace, scope string, params map[string]string) string {
	var b strings.Builder
	b.WriteString(keyPrefix)
	b.WriteByte(':')
	b.WriteString(namespace)
	if scope != "" {
		b.WriteByte(':')
		b.WriteString(scope)
	}

	if len(params) > 0 {
		names := make([]string, 0, len(params))
		for name := range params {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			b.WriteByte(':')
			b.WriteString(name)
			b.WriteByte('=')
			b.WriteString(params[name])
		}
	}

	key := b.String()
	if len(key) <= maxKeyLength {
		return key
	}

	sum := sha256.Sum256([]byte(key))
	digest := hex.EncodeToString(sum[:16])
	if scope != "" {
		return fmt.Sprintf("%s:%s:%s:%s", keyPrefix, namespace, scope, digest)
	}
	return fmt.Sprintf("%s:%s:%s", keyPrefix, namespace, digest)
}

// ScopePattern returns the invalidation pattern covering every key in a
// namespace for one scope. The separator before the wildcard keeps scope
// "4" from also matching scope "42"; every multi-key scope carries a
// param tail or digest after the scope segment, so the ":" is always
// present in stored keys.
func ScopePattern(namespace, scope string) string {
	return fmt.Sprintf("%s:%s:%s:*", keyPrefix, namespace, scope)
}

// NamespacePattern returns the invalidation pattern covering a whole
// namespace.
func NamespacePattern(namespace string) string {
	return fmt.Sprintf("%s:%s:*", keyPrefix, namespace)
}

// matchPattern reports whether key matches a glob pattern containing "*"
// wildcards. Shared by the in-memory cache; Redis applies the same syntax
// server-side via SCAN MATCH.
func matchPattern(pattern, key string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == key
	}

	if !strings.HasPrefix(key, parts[0]) {
		return false
	}
	key = key[len(parts[0]):]

	last := len(parts) - 1
	for i := 1; i < last; i++ {
		idx := strings.Index(key, parts[i])
		if idx < 0 {
			return false
		}
		key = key[idx+len(parts[i]):]
	}

	return strings.HasSuffix(key, parts[last])
}
