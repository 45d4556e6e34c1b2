package dataset

import (
	"container/list"
	"context"
	"sync"

	"github.com/couchcryptid/streamflow-animator/internal/domain"
	"github.com/couchcryptid/streamflow-animator/internal/observability"
)

// CachedLoader wraps a Loader with an in-memory LRU of decoded datasets keyed
// by resample interval.
type CachedLoader struct {
	inner   Loader
	cache   *lruCache[int, domain.Dataset]
	metrics *observability.Metrics
}

// NewCachedLoader creates a cache decorator around a loader.
func NewCachedLoader(inner Loader, maxEntries int, metrics *observability.Metrics) *CachedLoader {
	return &CachedLoader{
		inner:   inner,
		cache:   newLRUCache[int, domain.Dataset](maxEntries),
		metrics: metrics,
	}
}

// Load returns the cached dataset for interval or fetches and caches it.
// Failed loads are not cached so they can be retried.
func (c *CachedLoader) Load(ctx context.Context, interval int) (domain.Dataset, error) {
	if ds, ok := c.cache.get(interval); ok {
		c.metrics.LoaderCache.WithLabelValues("hit").Inc()
		return ds, nil
	}
	c.metrics.LoaderCache.WithLabelValues("miss").Inc()

	ds, err := c.inner.Load(ctx, interval)
	if err != nil {
		return ds, err
	}
	c.cache.put(interval, ds)
	return ds, nil
}

// Invalidate drops every cached dataset so the next load goes to the source.
func (c *CachedLoader) Invalidate() {
	c.cache.clear()
}

// lruCache is a thread-safe LRU keyed by K. The front of order is the most
// recently used entry.
type lruCache[K comparable, V any] struct {
	mu         sync.Mutex
	maxEntries int
	order      *list.List
	items      map[K]*list.Element
}

type lruItem[K comparable, V any] struct {
	key   K
	value V
}

func newLRUCache[K comparable, V any](maxEntries int) *lruCache[K, V] {
	return &lruCache[K, V]{
		maxEntries: maxEntries,
		order:      list.New(),
		items:      make(map[K]*list.Element),
	}
}

func (c *lruCache[K, V]) get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*lruItem[K, V]).value, true
}

func (c *lruCache[K, V]) put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*lruItem[K, V]).value = value
		c.order.MoveToFront(el)
		return
	}
	c.items[key] = c.order.PushFront(&lruItem[K, V]{key: key, value: value})

	for c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*lruItem[K, V]).key)
	}
}

func (c *lruCache[K, V]) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	clear(c.items)
}

func (c *lruCache[K, V]) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
