package framecache

import (
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"vidsync/internal/logging"
	"vidsync/internal/signature"
)

// DefaultSize is the capacity used when New receives a non-positive size.
const DefaultSize = 100

// Key identifies one decoded frame.
type Key struct {
	Path        string
	TimestampMS int64
}

// Cache is a bounded, thread-safe signature cache.
type Cache struct {
	mu      sync.Mutex
	entries *lru.Cache[Key, signature.Signature]
	logger  *slog.Logger
	hits    uint64
	misses  uint64
}

// New builds a cache holding at most size signatures.
func New(size int, logger *slog.Logger) *Cache {
	if size <= 0 {
		size = DefaultSize
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	entries, err := lru.New[Key, signature.Signature](size)
	if err != nil {
		// lru.New only fails for non-positive sizes.
		panic(err)
	}
	return &Cache{
		entries: entries,
		logger:  logging.NewComponentLogger(logger, "framecache"),
	}
}

// Get returns the cached signature for key.
func (c *Cache) Get(key Key) (signature.Signature, bool) {
	if c == nil {
		return signature.Signature{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	sig, ok := c.entries.Get(key)
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return sig, ok
}

// Put stores sig under key, evicting the least recently used entry when full.
func (c *Cache) Put(key Key, sig signature.Signature) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Add(key, sig)
}

// InvalidatePath drops every entry recorded for path and returns how many were
// removed.
func (c *Cache) InvalidatePath(path string) int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for _, key := range c.entries.Keys() {
		if key.Path == path && c.entries.Remove(key) {
			removed++
		}
	}
	if removed > 0 {
		c.logger.Debug("invalidated cached frames",
			logging.String(logging.FieldPath, path),
			logging.Int("entries", removed))
	}
	return removed
}

// Len reports the number of cached signatures.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// Stats reports lookup hits and misses since construction.
func (c *Cache) Stats() (hits, misses uint64) {
	if c == nil {
		return 0, 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
