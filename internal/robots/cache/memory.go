package cache

import (
	"sync"
	"time"
)

// MemoryCache keeps entries in a map. Entries older than ttl are treated as
// missing; a zero ttl keeps them for the life of the cache.
type MemoryCache struct {
	mu   sync.RWMutex
	ttl  time.Duration
	now  func() time.Time
	data map[string]Entry
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:  ttl,
		now:  time.Now,
		data: make(map[string]Entry),
	}
}

func (c *MemoryCache) Get(origin string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.data[origin]
	if !ok {
		return Entry{}, false
	}
	if c.ttl > 0 && c.now().Sub(entry.FetchedAt) > c.ttl {
		return Entry{}, false
	}
	return entry, true
}

func (c *MemoryCache) Put(origin string, entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[origin] = entry
}

// Size returns the number of stored entries, expired ones included.
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.data)
}
