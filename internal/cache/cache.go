// Package cache provides an in-memory TTL cache for rendered pages with
// ETag support.
package cache

import (
	"crypto/md5"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/voleibolstats/voleibol-web/internal/metrics"
)

// sweepEvery is how many writes pass between sweeps of expired entries.
const sweepEvery = 64

type entry struct {
	data      []byte
	etag      string
	expiresAt time.Time
}

// Cache is a thread-safe in-memory TTL cache. Expired entries are dropped
// lazily during writes; the cache starts no goroutines.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	enabled bool
	ttl     time.Duration
	writes  int
	now     func() time.Time
}

// New creates a cache whose entries live for ttl. Pass enabled=false to
// create a no-op cache.
func New(enabled bool, ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		enabled: enabled && ttl > 0,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Key builds the cache key of a page. Pages differ by language, so it is
// part of the key.
func Key(path, rawQuery, lang string) string {
	return strings.Join([]string{lang, path, rawQuery}, "|")
}

// Enabled reports whether lookups can ever hit.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// TTL is the lifetime of new entries.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get retrieves a cached value. Returns data, etag, and whether the entry was found.
func (c *Cache) Get(key string) (data []byte, etag string, ok bool) {
	if !c.enabled {
		return nil, "", false
	}
	c.mu.RLock()
	e, exists := c.entries[key]
	c.mu.RUnlock()
	hit := exists && c.now().Before(e.expiresAt)
	metrics.RecordCacheLookup(hit)
	if !hit {
		return nil, "", false
	}
	return e.data, e.etag, true
}

// Set stores a copy of data and returns its ETag. The ETag is computed even
// when the cache is disabled so conditional requests keep working.
func (c *Cache) Set(key string, data []byte) string {
	etag := ComputeETag(data)
	if !c.enabled {
		return etag
	}
	stored := append([]byte(nil), data...)

	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.entries[key] = entry{
		data:      stored,
		etag:      etag,
		expiresAt: now.Add(c.ttl),
	}
	c.writes++
	if c.writes%sweepEvery == 0 {
		c.evict(now)
	}
	return etag
}

// Stats returns cache statistics.
func (c *Cache) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	active := 0
	now := c.now()
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			active++
		}
	}
	return map[string]interface{}{
		"enabled":      c.enabled,
		"ttl_seconds":  int(c.ttl.Seconds()),
		"total_keys":   len(c.entries),
		"active_keys":  active,
		"expired_keys": len(c.entries) - active,
	}
}

// evict removes expired entries. Callers hold the write lock.
func (c *Cache) evict(now time.Time) {
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// ComputeETag generates a weak ETag from response data using MD5.
func ComputeETag(data []byte) string {
	hash := md5.Sum(data)
	return fmt.Sprintf(`W/"%x"`, hash[:8])
}

// CheckETagMatch checks if an If-None-Match header matches the current ETag.
// The header may carry a comma-separated list.
func CheckETagMatch(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" || etag == "" {
		return false
	}
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || candidate == etag || "W/"+candidate == etag {
			return true
		}
	}
	return false
}
