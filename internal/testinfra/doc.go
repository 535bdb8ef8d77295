// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

// Package testinfra provides container-backed infrastructure for
// integration tests.
//
// This package uses testcontainers-go to manage Docker containers so
// integration tests run against real services instead of mocks. It is
// compiled only under the integration build tag:
//
//	go test -tags integration ./...
//
// # Redis Container
//
// RedisContainer provides a real Redis instance for cache integration
// tests:
//
//	func TestRedisCache(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    rc, err := testinfra.NewRedisContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, rc.Container)
//
//	    c, err := cache.NewRedis(ctx, &config.RedisConfig{Addr: rc.Addr})
//	    // ...
//	}
//
// Tests skip gracefully when Docker is unavailable, so the unit suite
// stays runnable on machines without a container runtime.
package testinfra
