package owm

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/lixenwraith/windmap/observability"
	"github.com/lixenwraith/windmap/weather"
)

// CachedFetcher wraps a Fetcher with an in-memory LRU cache whose entries expire after ttl
type CachedFetcher struct {
	inner   Fetcher
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedFetcher creates a cache decorator around a fetcher
func NewCachedFetcher(inner Fetcher, maxEntries int, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedFetcher {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &CachedFetcher{
		inner:   inner,
		cache:   newLRUCache(maxEntries, ttl, clock),
		metrics: metrics,
	}
}

func (c *CachedFetcher) Fetch(ctx context.Context, city string) (weather.Report, error) {
	key := strings.ToLower(strings.TrimSpace(city))
	if rep, ok := c.cache.get(key); ok {
		c.metrics.FeedCache.WithLabelValues("hit").Inc()
		return rep, nil
	}
	c.metrics.FeedCache.WithLabelValues("miss").Inc()

	rep, err := c.inner.Fetch(ctx, city)
	if err != nil {
		return rep, err
	}
	c.cache.put(key, rep)
	return rep, nil
}

// Refresh bypasses a cached entry, fetching upstream and storing the result
func (c *CachedFetcher) Refresh(ctx context.Context, city string) (weather.Report, error) {
	c.metrics.FeedCache.WithLabelValues("refresh").Inc()
	rep, err := c.inner.Fetch(ctx, city)
	if err != nil {
		return rep, err
	}
	c.cache.put(strings.ToLower(strings.TrimSpace(city)), rep)
	return rep, nil
}

// Len returns the number of cached cities, expired ones included until touched
func (c *CachedFetcher) Len() int {
	return c.cache.len()
}

// lruCache is a thread-safe LRU cache of reports with a per-entry deadline
type lruCache struct {
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key     string
	value   weather.Report
	expires time.Time
	prev    *entry
	next    *entry
}

func newLRUCache(maxEntries int, ttl time.Duration, clock clockwork.Clock) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clock,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (weather.Report, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return weather.Report{}, false
	}
	if c.ttl > 0 && !c.clock.Now().Before(e.expires) {
		delete(c.entries, key)
		c.remove(e)
		return weather.Report{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value weather.Report) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.clock.Now().Add(c.ttl)
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expires = expires
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, expires: expires}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
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
