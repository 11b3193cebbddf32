package backend

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/domain"
	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/observability"
)

// Cache stores encoded backend responses by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
}

// CachedBackend wraps a Backend with a response cache. Only forecast,
// prediction and city-list responses are cached; current readings are live.
// Failed fetches are never cached so they can be retried.
type CachedBackend struct {
	inner   domain.Backend
	cache   Cache
	metrics *observability.Metrics
}

// NewCachedBackend creates a cache decorator around a backend.
func NewCachedBackend(inner domain.Backend, cache Cache, metrics *observability.Metrics) *CachedBackend {
	return &CachedBackend{inner: inner, cache: cache, metrics: metrics}
}

func (c *CachedBackend) Current(ctx context.Context, city string) (domain.AirQualityReading, error) {
	return c.inner.Current(ctx, city)
}

func (c *CachedBackend) Forecast(ctx context.Context) ([]domain.ForecastPoint, error) {
	return cached(ctx, c, "forecast", "forecast", func() ([]domain.ForecastPoint, error) {
		return c.inner.Forecast(ctx)
	})
}

func (c *CachedBackend) PredictAnchor(ctx context.Context, date, city string) (domain.AnchorPrediction, error) {
	key := "predict:" + date + "|" + city
	return cached(ctx, c, "predict_anchor", key, func() (domain.AnchorPrediction, error) {
		return c.inner.PredictAnchor(ctx, date, city)
	})
}

func (c *CachedBackend) Cities(ctx context.Context) ([]string, error) {
	return cached(ctx, c, "cities", "cities", func() ([]string, error) {
		return c.inner.Cities(ctx)
	})
}

func cached[T any](ctx context.Context, c *CachedBackend, endpoint, key string, fetch func() (T, error)) (T, error) {
	if raw, ok := c.cache.Get(ctx, key); ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			c.metrics.CacheLookups.WithLabelValues(endpoint, "hit").Inc()
			return v, nil
		}
	}
	c.metrics.CacheLookups.WithLabelValues(endpoint, "miss").Inc()

	v, err := fetch()
	if err != nil {
		return v, err
	}
	if raw, err := json.Marshal(v); err == nil {
		c.cache.Set(ctx, key, raw)
	}
	return v, nil
}

// Tiered reads through caches in order and backfills faster tiers on a hit
// further down. Writes go to every tier.
type Tiered []Cache

func (t Tiered) Get(ctx context.Context, key string) ([]byte, bool) {
	for i, c := range t {
		if v, ok := c.Get(ctx, key); ok {
			for j := 0; j < i; j++ {
				t[j].Set(ctx, key, v)
			}
			return v, true
		}
	}
	return nil, false
}

func (t Tiered) Set(ctx context.Context, key string, value []byte) {
	for _, c := range t {
		c.Set(ctx, key, value)
	}
}

// LRU is a thread-safe in-memory cache bounded by entry count, with a per-entry TTL.
type LRU struct {
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key       string
	value     []byte
	expiresAt time.Time
	prev      *entry
	next      *entry
}

// NewLRU creates an LRU holding at most maxEntries values, each for ttl.
// A zero ttl keeps entries until they are evicted.
func NewLRU(maxEntries int, ttl time.Duration, clock clockwork.Clock) *LRU {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &LRU{
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clock,
		entries:    make(map[string]*entry),
	}
}

func (c *LRU) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && !c.clock.Now().Before(e.expiresAt) {
		delete(c.entries, key)
		c.remove(e)
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *LRU) Set(_ context.Context, key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.clock.Now().Add(c.ttl)
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, expiresAt: expiresAt}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

// Len returns the number of entries, including expired ones not yet evicted.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *LRU) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *LRU) addToFront(e *entry) {
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

func (c *LRU) remove(e *entry) {
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

func (c *LRU) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
