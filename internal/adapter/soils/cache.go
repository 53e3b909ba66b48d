package soils

import (
	"context"
	"sync"

	"github.com/couchcryptid/parcel-screening/internal/domain"
	"github.com/couchcryptid/parcel-screening/internal/observability"
)

// CachedSource wraps a SoilSource with an in-memory LRU cache keyed by the
// geometry's WKT. Parcels re-screened under different programs in one process
// hit SDA only once per geometry.
type CachedSource struct {
	inner   domain.SoilSource
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedSource creates a cache decorator around a soil source. metrics may
// be nil.
func NewCachedSource(inner domain.SoilSource, maxEntries int, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedSource) Name() string { return c.inner.Name() }

func (c *CachedSource) FetchSoilAttributes(ctx context.Context, g domain.Geometry) (domain.SoilAttributes, error) {
	key := g.CRS + "|" + g.WKT()
	if attrs, ok := c.cache.get(key); ok {
		c.count("hit")
		return attrs, nil
	}
	c.count("miss")

	attrs, err := c.inner.FetchSoilAttributes(ctx, g)
	if err != nil {
		return attrs, err
	}
	// Only cache mapped results so transient "no soil found" responses can be
	// retried on a later run.
	if attrs.SoilOrder != "" {
		c.cache.put(key, attrs)
	}
	return attrs, nil
}

func (c *CachedSource) count(result string) {
	if c.metrics != nil {
		c.metrics.SoilCache.WithLabelValues(result).Inc()
	}
}

// lruCache is a simple thread-safe LRU cache for soil attributes.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value domain.SoilAttributes
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (domain.SoilAttributes, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.SoilAttributes{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value domain.SoilAttributes) {
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
