package spatial

import (
	"os"
	"sort"
	"sync"
)

// CacheStats reports directory cache usage.
type CacheStats struct {
	Entries int `json:"entries"`
	Hits    int `json:"hits"`
	Misses  int `json:"misses"`
}

// dirEntry is a cached directory member.
type dirEntry struct {
	name string
	dir  bool
}

// dirCache memoizes directory listings keyed by absolute directory path.
// Proximity walks touch the same directories repeatedly; listing each
// once per cache generation keeps walks cheap.
type dirCache struct {
	mu      sync.RWMutex
	entries map[string][]dirEntry
	hits    int
	misses  int
}

func newDirCache() *dirCache {
	return &dirCache{entries: make(map[string][]dirEntry)}
}

// list returns the entries of absDir, sorted by name, reading the
// filesystem only on a cache miss.
func (c *dirCache) list(absDir string) ([]dirEntry, error) {
	c.mu.RLock()
	cached, ok := c.entries[absDir]
	c.mu.RUnlock()
	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return cached, nil
	}

	listed, err := os.ReadDir(absDir)
	if err != nil {
		return nil, err
	}

	out := make([]dirEntry, 0, len(listed))
	for _, e := range listed {
		out = append(out, dirEntry{name: e.Name(), dir: e.IsDir()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })

	c.mu.Lock()
	c.entries[absDir] = out
	c.misses++
	c.mu.Unlock()

	return out, nil
}

// clear drops every cached listing. Hit/miss counters survive so stats
// reflect lifetime usage.
func (c *dirCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]dirEntry)
}

func (c *dirCache) stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}
