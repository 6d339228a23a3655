package d1q

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// Cache memoizes compiled queries keyed by fingerprint, so identical
// query shapes are not re-translated. It is an explicit, injectable
// value with its own lifecycle, not a package-level global; share one
// instance across queries that should share compilations.
//
// The cache is unbounded: the number of distinct query shapes per
// process is assumed small and stable, so there is no eviction beyond
// Clear.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*CompiledQuery
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*CompiledQuery)}
}

// GetOrCompile returns the cached entry for the fingerprint,
// compiling and storing it on first use. Insert-if-absent is atomic:
// concurrent misses for the same fingerprint keep the first stored
// entry. A compile failure stores nothing, so a bad plan never
// poisons the cache.
func (c *Cache) GetOrCompile(fingerprint string, compile func() (*CompiledQuery, error)) (*CompiledQuery, error) {
	c.mu.RLock()
	cached, ok := c.entries[fingerprint]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return cached, nil
	}

	c.misses.Add(1)
	compiled, err := compile()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[fingerprint]; ok {
		return existing, nil
	}
	c.entries[fingerprint] = compiled
	return compiled, nil
}

// Clear atomically empties the cache and resets both counters to zero.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*CompiledQuery)
	c.hits.Store(0)
	c.misses.Store(0)
}

// Hits returns the number of fingerprint hits since the last Clear.
func (c *Cache) Hits() int64 {
	return c.hits.Load()
}

// Misses returns the number of fingerprint misses since the last
// Clear.
func (c *Cache) Misses() int64 {
	return c.misses.Load()
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Fingerprint derives a cache key from a plan's table, result shape,
// generated SQL and stringified literal arguments.
//
// Argument values are stringified with %v, so two logically distinct
// typed values with the same text form (the integer 25 and the string
// "25") produce the same component. This is a known sharp edge kept
// deliberately: the fingerprint also embeds the generated SQL and the
// result shape, which disambiguate every key the planner itself can
// produce, since a given plan shape binds each literal with one static
// type.
func Fingerprint(table, shape, sql string, args []any) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, fmt.Sprintf("%v", a))
	}
	return strings.Join([]string{table, shape, sql, strings.Join(parts, ",")}, "\x1f")
}
