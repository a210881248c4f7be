package server

import (
	"os"
	"sync"
	"time"
)

type cacheEntry struct {
	data    []byte
	modTime time.Time
	size    int64
	created time.Time
}

// pageCache keeps decorated pages until their source changes or the TTL
// runs out.
type pageCache struct {
	mu     sync.RWMutex
	now    func() time.Time
	ttl    time.Duration
	data   map[string]cacheEntry
	hits   int
	misses int
}

func newPageCache(now func() time.Time, ttl time.Duration) *pageCache {
	if now == nil {
		now = time.Now
	}
	return &pageCache{
		now:  now,
		ttl:  ttl,
		data: make(map[string]cacheEntry),
	}
}

func (c *pageCache) Load(path string, info os.FileInfo) ([]byte, bool) {
	if c.ttl <= 0 || info == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.data[path]
	c.mu.RUnlock()
	fresh := ok &&
		entry.modTime.Equal(info.ModTime()) &&
		entry.size == info.Size() &&
		c.now().Sub(entry.created) < c.ttl
	c.mu.Lock()
	if fresh {
		c.hits++
	} else {
		c.misses++
		if ok {
			delete(c.data, path)
		}
	}
	c.mu.Unlock()
	if !fresh {
		return nil, false
	}
	return entry.data, true
}

func (c *pageCache) Store(path string, info os.FileInfo, data []byte) {
	if c.ttl <= 0 || info == nil || len(data) == 0 {
		return
	}
	entry := cacheEntry{
		data:    append([]byte(nil), data...),
		modTime: info.ModTime(),
		size:    info.Size(),
		created: c.now(),
	}
	c.mu.Lock()
	c.data[path] = entry
	c.mu.Unlock()
}

func (c *pageCache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
