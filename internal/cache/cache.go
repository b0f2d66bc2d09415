// Package cache implements the TTL'd thread-safe key/value store spec.md
// §3/§9 calls for: one Cache instance per probe family (DNS health, domain
// age, web presence, IP reputation, ...), composed into the engine as plain
// values rather than process-wide singletons. Probes that depend on one
// live, already-open connection (e.g. the provider fingerprint's NOOP
// liveness check) are not cached here — their result is only meaningful for
// the session that produced it.
//
// This mirrors the get/set-with-lock shape of the teacher's Redis-backed
// cache in smtp-verifier.go (getCachedResult/cacheResult, getCachedMXRecords/
// cacheMXRecords, ...) and of original_source's _get_cached/_set_cache, but
// keeps the entries in-memory: spec.md §1 places persistent storage beyond
// in-memory caches out of scope, so there is no external store to hit.
package cache

import (
	"sync"
	"time"
)

// entry pairs a cached value with its expiry instant.
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a mutex-guarded map with a single global TTL, matching the
// "Cache Entry" record in spec.md §3: {value, expires_at}.
type Cache[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry[V]
}

// New creates a Cache with the given TTL. A zero or negative TTL disables
// caching: every Get misses and every Set is a no-op.
func New[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		ttl:     ttl,
		entries: make(map[string]entry[V]),
	}
}

// Get returns the cached value for key. A missing or expired entry is
// removed and reported as a miss, per spec.md §3's invariant that expired
// entries are treated as misses on read.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if !time.Now().Before(e.expiresAt) {
		delete(c.entries, key)
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with the cache's configured TTL.
func (c *Cache[V]) Set(key string, value V) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, expiresAt: time.Now().Add(c.ttl)}
}

// Len reports the number of entries currently held, expired or not. Useful
// for tests asserting that a second lookup served from cache did not grow
// the set of keys.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Families bundles one Cache per probe family that benefits from caching,
// so the engine can pass a single value around instead of process-wide
// singletons (spec.md §9 re-architecture guidance).
type Families struct {
	DNSHealth      *Cache[any]
	DomainSecurity *Cache[any]
	DomainAge      *Cache[any]
	WebPresence    *Cache[any]
	IPReputation   *Cache[any]
	MXPopularity   *Cache[any]
	CatchAll       *Cache[bool]
}

// DefaultTTL is spec.md §3's single global TTL (one hour) applied to every
// probe family unless overridden.
const DefaultTTL = time.Hour

// NewFamilies builds a Families value with ttl applied uniformly, using
// DefaultTTL when ttl is zero or negative.
func NewFamilies(ttl time.Duration) *Families {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Families{
		DNSHealth:      New[any](ttl),
		DomainSecurity: New[any](ttl),
		DomainAge:      New[any](ttl),
		WebPresence:    New[any](ttl),
		IPReputation:   New[any](ttl),
		MXPopularity:   New[any](ttl),
		CatchAll:       New[bool](ttl),
	}
}
