package resolver

import "sync"

// Cache memoizes resolutions by pair key for the life of a session. It is
// never persisted and never evicts: the number of distinct pairs a player
// can produce in one session is small.
//
// Thread-safety: all methods are safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Result
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]Result)}
}

// Get returns the result stored under key.
func (c *Cache) Get(key string) (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.entries[key]
	if !ok {
		return Result{}, false
	}
	return r.clone(), true
}

// Put stores r under key, replacing any earlier entry.
func (c *Cache) Put(key string, r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = r.clone()
}

// Len returns the number of cached pairs.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
