package raster

import (
	"errors"
	"fmt"
	"sync"

	"github.com/couchcryptid/flood-validation-service/internal/observability"
)

// ErrLoad marks failures to open or parse a raster file. Callers can still
// reach the underlying cause (for example fs.ErrNotExist) through the chain.
var ErrLoad = errors.New("load raster")

// Store loads grids by path.
type Store interface {
	Load(path string) (*Grid, error)
}

// FileStore loads ASCII grids straight from disk on every call.
type FileStore struct{}

func (FileStore) Load(path string) (*Grid, error) {
	g, err := LoadASCIIGrid(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return g, nil
}

// CachedStore wraps a Store with an in-memory LRU cache keyed by path, so
// repeated validation requests against the same raster skip re-parsing.
type CachedStore struct {
	inner   Store
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedStore creates a cache decorator around a store. Metrics may be
// nil; cache hit/miss counters are then skipped.
func NewCachedStore(inner Store, maxEntries int, metrics *observability.Metrics) *CachedStore {
	return &CachedStore{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedStore) Load(path string) (*Grid, error) {
	if g, ok := c.cache.get(path); ok {
		c.countCache("hit")
		return g, nil
	}
	c.countCache("miss")

	g, err := c.inner.Load(path)
	if err != nil {
		// Failures are not cached so a fixed file can be retried.
		return nil, err
	}
	c.cache.put(path, g)
	return g, nil
}

func (c *CachedStore) countCache(result string) {
	if c.metrics != nil {
		c.metrics.RasterCache.WithLabelValues(result).Inc()
	}
}

// lruCache is a simple thread-safe LRU cache for parsed grids.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value *Grid
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (*Grid, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value *Grid) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
