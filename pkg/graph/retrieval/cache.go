package retrieval

import (
	"container/list"
	"sync"
	"time"

	"github.com/athapong/graphrag-mcp/pkg/graph/metrics"
)

const cacheType = "retrieval"

type cacheEntry struct {
	key        string
	insertedAt time.Time
	value      *HybridRetrievalResult
}

// ResultCache memoizes complete retrieval results keyed by canonical query
// text. Eviction is LRU once maxEntries is exceeded; age expiry is lazy,
// checked on read against a monotonic clock. A zero maxEntries disables
// caching entirely, a non-positive ttl disables age expiry.
type ResultCache struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	entries    map[string]*list.Element
	order      *list.List // front is most recently used
}

// NewResultCache creates a cache with the given capacity and TTL
func NewResultCache(maxEntries int, ttl time.Duration) *ResultCache {
	if maxEntries < 0 {
		maxEntries = 0
	}
	return &ResultCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
	}
}

// Get returns a deep copy of the cached result for key, if present and
// fresh. An expired entry is evicted on the spot, not merely skipped.
func (c *ResultCache) Get(key string) (*HybridRetrievalResult, bool) {
	if c.maxEntries <= 0 {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.entries[key]
	if !ok {
		metrics.CacheMisses.WithLabelValues(cacheType).Inc()
		return nil, false
	}

	entry := element.Value.(*cacheEntry)
	if c.ttl > 0 && time.Since(entry.insertedAt) > c.ttl {
		c.removeElement(element)
		metrics.CacheEvictions.WithLabelValues(cacheType, "expired").Inc()
		metrics.CacheMisses.WithLabelValues(cacheType).Inc()
		return nil, false
	}

	c.order.MoveToFront(element)
	metrics.CacheHits.WithLabelValues(cacheType).Inc()
	return entry.value.Clone(), true
}

// Set stores a deep copy of value under key, marking it most recently used
// and evicting from the LRU end until the cache fits its capacity.
func (c *ResultCache) Set(key string, value *HybridRetrievalResult) {
	if c.maxEntries <= 0 || value == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if element, ok := c.entries[key]; ok {
		entry := element.Value.(*cacheEntry)
		entry.insertedAt = time.Now()
		entry.value = value.Clone()
		c.order.MoveToFront(element)
	} else {
		element := c.order.PushFront(&cacheEntry{
			key:        key,
			insertedAt: time.Now(),
			value:      value.Clone(),
		})
		c.entries[key] = element
	}

	for c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.removeElement(oldest)
		metrics.CacheEvictions.WithLabelValues(cacheType, "capacity").Inc()
	}
}

// Len reports the number of physically present entries, expired or not.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *ResultCache) removeElement(element *list.Element) {
	entry := element.Value.(*cacheEntry)
	c.order.Remove(element)
	delete(c.entries, entry.key)
}
