// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package cache

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// memoryEntry is a node in the memory cache's doubly-linked recency list.
type memoryEntry struct {
	key       string
	payload   []byte
	expiresAt time.Time
	prev      *memoryEntry
	next      *memoryEntry
}

// MemoryCache is a thread-safe in-process Cache with LRU eviction and lazy
// TTL expiration. It backs tests and the no-Redis development mode. Values
// are stored as marshaled JSON so hits and misses round-trip exactly like
// the Redis implementation.
//
// A doubly-linked list with sentinel head/tail nodes gives O(1) Get, Set and
// eviction; the map gives O(1) lookup.
type MemoryCache struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*memoryEntry
	head     *memoryEntry
	tail     *memoryEntry

	hits   int64
	misses int64
}

// NewMemory creates a MemoryCache holding at most capacity entries
// (10000 when capacity <= 0).
func NewMemory(capacity int) *MemoryCache {
	if capacity <= 0 {
		capacity = 10000
	}

	c := &MemoryCache{
		capacity: capacity,
		items:    make(map[string]*memoryEntry, capacity),
		head:     &memoryEntry{},
		tail:     &memoryEntry{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// GetJSON implements Cache.
func (c *MemoryCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	entry, ok := c.items[key]
	if !ok {
		c.misses++
		c.mu.Unlock()
		return false, nil
	}
	if time.Now().After(entry.expiresAt) {
		c.removeEntry(entry)
		c.misses++
		c.mu.Unlock()
		return false, nil
	}
	c.moveToFront(entry)
	c.hits++
	payload := entry.payload
	c.mu.Unlock()

	if err := json.Unmarshal(payload, dest); err != nil {
		return false, nil
	}
	return true, nil
}

// SetJSON implements Cache.
func (c *MemoryCache) SetJSON(_ context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.items[key]; ok {
		entry.payload = payload
		entry.expiresAt = time.Now().Add(ttl)
		c.moveToFront(entry)
		return nil
	}

	if len(c.items) >= c.capacity {
		if lru := c.tail.prev; lru != c.head {
			c.removeEntry(lru)
		}
	}

	entry := &memoryEntry{
		key:       key,
		payload:   payload,
		expiresAt: time.Now().Add(ttl),
	}
	c.items[key] = entry
	c.pushFront(entry)
	return nil
}

// Invalidate implements Cache.
func (c *MemoryCache) Invalidate(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.items {
		if matchPattern(pattern, key) {
			c.removeEntry(entry)
		}
	}
	return nil
}

// Len returns the number of live entries, counting expired-but-unreaped ones.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns hit and miss counts.
func (c *MemoryCache) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// removeEntry unlinks an entry. Caller holds c.mu.
func (c *MemoryCache) removeEntry(e *memoryEntry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(c.items, e.key)
}

// pushFront links an entry as most recently used. Caller holds c.mu.
func (c *MemoryCache) pushFront(e *memoryEntry) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

// moveToFront marks an entry most recently used. Caller holds c.mu.
func (c *MemoryCache) moveToFront(e *memoryEntry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	c.pushFront(e)
}

var _ Cache = (*MemoryCache)(nil)
