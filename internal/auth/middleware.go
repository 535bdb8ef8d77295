// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package auth

import (
	"context"
	"net/http"
	"strings"
)

// Identity is the authenticated principal attached to a request
// context.
type Identity struct {
	UserID   int64
	Username string
}

type contextKey struct{}

// ContextWithIdentity returns a context carrying the identity.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IdentityFromContext extracts the identity placed by the middleware.
// ok is false for anonymous requests.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// bearerToken extracts the token from an Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// Middleware validates bearer tokens. With required true, requests
// without a valid token are rejected by the supplied reject func;
// otherwise they proceed anonymously and handlers decide per-route.
func (m *JWTManager) Middleware(required bool, reject func(w http.ResponseWriter, r *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				if required {
					reject(w, r)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			claims, err := m.ValidateToken(token)
			if err != nil {
				// A presented but invalid token is rejected even on
				// optional routes; silently dropping it would mask
				// expiry from clients.
				reject(w, r)
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				reject(w, r)
				return
			}

			ctx := ContextWithIdentity(r.Context(), Identity{
				UserID:   userID,
				Username: claims.Username,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
