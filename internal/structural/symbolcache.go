package structural

import (
	"sync"

	"cre/internal/fragment"
)

// SymbolCacheStats reports symbol cache usage.
type SymbolCacheStats struct {
	Symbols int `json:"symbols"`
	Hits    int `json:"hits"`
	Misses  int `json:"misses"`
}

// SymbolCache indexes scored fragments by their declared symbol name so
// hosts can answer "where is parseConfig" without re-running a search.
type SymbolCache struct {
	mu      sync.RWMutex
	entries map[string][]*fragment.CodeFragment
	hits    int
	misses  int
}

// NewSymbolCache creates an empty symbol cache.
func NewSymbolCache() *SymbolCache {
	return &SymbolCache{entries: make(map[string][]*fragment.CodeFragment)}
}

// Record associates a fragment with a symbol name. Duplicate fragment
// IDs under the same name are ignored.
func (c *SymbolCache) Record(name string, frag *fragment.CodeFragment) {
	if name == "" || frag == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.entries[name] {
		if existing.ID == frag.ID {
			return
		}
	}
	c.entries[name] = append(c.entries[name], frag)
}

// Lookup returns the fragments recorded under a symbol name.
func (c *SymbolCache) Lookup(name string) []*fragment.CodeFragment {
	c.mu.Lock()
	defer c.mu.Unlock()

	frags, ok := c.entries[name]
	if !ok {
		c.misses++
		return nil
	}
	c.hits++

	out := make([]*fragment.CodeFragment, len(frags))
	copy(out, frags)
	return out
}

// Clear drops every cached symbol. Hit/miss counters survive.
func (c *SymbolCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]*fragment.CodeFragment)
}

// Stats reports cache usage.
func (c *SymbolCache) Stats() SymbolCacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return SymbolCacheStats{Symbols: len(c.entries), Hits: c.hits, Misses: c.misses}
}
