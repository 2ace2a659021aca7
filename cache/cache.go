// Package cache holds the process-wide GlobalCache: a deduplicated
// name -> Symbol[] lookup populated once by the pipeline's dedup phase
// and read concurrently by the factory during link (spec.md §4.3).
package cache

import (
	"sync"

	"github.com/leculver/typegen/symbols"
)

// GlobalCache maps a deduplicated symbol name to its equivalent group
// of Symbols across all loaded modules. It is safe for concurrent
// readers once Update has been called; Update itself is expected to be
// called exactly once, from the single-threaded dedup phase.
type GlobalCache struct {
	mu    sync.RWMutex
	table map[string][]*symbols.Symbol
}

// New creates an empty GlobalCache.
func New() *GlobalCache {
	return &GlobalCache{table: make(map[string][]*symbols.Symbol)}
}

// Update atomically replaces the cache's contents.
func (c *GlobalCache) Update(table map[string][]*symbols.Symbol) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.table = table
}

// GetSymbol returns the representative (first entry) for name, or false
// if the name is unknown.
func (c *GlobalCache) GetSymbol(name string) (*symbols.Symbol, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := c.table[name]
	if len(entries) == 0 {
		return nil, false
	}
	return entries[0], true
}

// GetGroup returns every Symbol registered under name (the full
// equivalence group, e.g. every module-specific representative when a
// name was ambiguous across modules).
func (c *GlobalCache) GetGroup(name string) ([]*symbols.Symbol, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries, ok := c.table[name]
	return entries, ok
}
