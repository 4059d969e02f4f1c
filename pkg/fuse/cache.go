package fuse

import (
	"sync"
	"time"

	"github.com/example/viewfs/pkg/fs"
)

// attrCache caches file attributes by virtual path with a fixed TTL.
// Entries are evicted lazily on lookup and wholesale when the cache
// grows past maxSize.
type attrCache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	entries map[string]attrCacheEntry
}

type attrCacheEntry struct {
	info       fs.FileInfo
	expiration time.Time
}

func newAttrCache(maxSize int, ttl time.Duration) *attrCache {
	return &attrCache{
		maxSize: maxSize,
		ttl:     ttl,
		entries: make(map[string]attrCacheEntry),
	}
}

func (c *attrCache) get(path string) (fs.FileInfo, bool) {
	if c.ttl <= 0 {
		return fs.FileInfo{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[path]
	if !ok {
		return fs.FileInfo{}, false
	}
	if time.Now().After(e.expiration) {
		delete(c.entries, path)
		return fs.FileInfo{}, false
	}
	return e.info, true
}

func (c *attrCache) store(path string, info fs.FileInfo) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.maxSize {
		// Crude but effective: drop everything rather than track LRU
		// order for what is only a short-lived stat cache.
		c.entries = make(map[string]attrCacheEntry)
	}
	c.entries[path] = attrCacheEntry{info: info, expiration: time.Now().Add(c.ttl)}
}

func (c *attrCache) invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}
