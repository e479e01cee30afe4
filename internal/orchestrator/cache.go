package orchestrator

import (
	"sync"
	"time"
)

// cacheEntry is one cached fetch result with its staleness clock.
type cacheEntry struct {
	result Result
	stored time.Time
}

// resultCache is a small in-memory, per-URL cache backing the freshness
// policy (spec.md §4.3 "Freshness policy"). It is not a persisted store:
// spec.md's persistence model names only the Memory Store, Change Tracker
// Store, and Tier Preference Store as owned documents.
type resultCache struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[string]cacheEntry
}

func newResultCache(ttl time.Duration) *resultCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &resultCache{ttl: ttl, m: make(map[string]cacheEntry)}
}

func (c *resultCache) get(url string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.m[url]
	if !ok {
		return Result{}, false
	}
	if time.Since(entry.stored) > c.ttl {
		return Result{}, false
	}
	return entry.result, true
}

func (c *resultCache) put(url string, r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[url] = cacheEntry{result: r, stored: time.Now()}
}
