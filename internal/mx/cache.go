package mx

import (
	"slices"
	"sync"
	"time"
)

// cacheEntry pairs a resolved host list with its insertion time.
type cacheEntry struct {
	insertedAt time.Time
	hosts      []string
}

// cache is a TTL-bounded in-memory store of MX host lists keyed by
// lowercase domain. Entries past their TTL are treated as absent and
// evicted lazily on read.
type cache struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	store map[string]cacheEntry
}

func newCache(ttl time.Duration) *cache {
	return &cache{
		ttl:   ttl,
		now:   time.Now,
		store: make(map[string]cacheEntry),
	}
}

// get returns the cached hosts for key. expired reports that an entry
// was present but past its TTL; such entries are removed.
func (c *cache) get(key string) (hosts []string, ok bool, expired bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.store[key]
	if !ok {
		return nil, false, false
	}
	if c.now().Sub(entry.insertedAt) > c.ttl {
		delete(c.store, key)
		return nil, false, true
	}
	return slices.Clone(entry.hosts), true, false
}

func (c *cache) set(key string, hosts []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = cacheEntry{insertedAt: c.now(), hosts: slices.Clone(hosts)}
}

func (c *cache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.store)
}
