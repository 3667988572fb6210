// Package cache implements the TTL cache that bounds how often metric
// providers touch the OS. Entries are refreshed lazily on access; an
// expired entry is replaced by the next reader, never evicted proactively.
//
// Concurrency: lookups on different keys proceed independently under a
// read-write mutex; fetches for the same key are collapsed through
// singleflight, so concurrent readers of a cold key share one in-flight
// fetch. The map lock is never held across a fetch.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/hostpulse/agent/internal/metric"
)

// FetchFunc produces a fresh value for a key. It is invoked outside any
// cache lock. A returned error is logged, converted to Absent, and cached
// under the same TTL as a success, so a known-broken source is not
// hammered within the TTL window.
type FetchFunc func(ctx context.Context) (metric.Value, error)

// entry is one cached value with its fetch time and TTL.
type entry struct {
	value     metric.Value
	fetchedAt time.Time
	ttl       time.Duration
}

// Stats holds cache hit/miss counters.
type Stats struct {
	Hits   int64
	Misses int64
}

// Cache maps metric cache keys to TTL-bounded values.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry

	group  singleflight.Group
	logger *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64

	// now is the clock; overridable in tests.
	now func() time.Time
}

// New creates an empty cache logging fetch failures to the given logger.
// A nil logger disables logging.
func New(logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		entries: make(map[string]entry),
		logger:  logger,
		now:     time.Now,
	}
}

// GetOrFetch returns the cached value for key if it is younger than ttl,
// otherwise fetches, stores, and returns a fresh one. Failures come back
// as Absent. A non-positive ttl disables caching for the key: every call
// fetches (still under single-flight).
func (c *Cache) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) metric.Value {
	if v, ok := c.lookup(key); ok {
		c.hits.Add(1)
		return v
	}
	c.misses.Add(1)

	v, _, _ := c.group.Do(key, func() (interface{}, error) {
		// A concurrent flight may have refreshed the entry while this
		// caller was queued behind it.
		if v, ok := c.lookup(key); ok {
			return v, nil
		}

		value, err := fetch(ctx)
		if err != nil {
			f := metric.Classify(err)
			c.logger.Warn("Metric fetch failed",
				zap.String("key", key),
				zap.String("class", string(f.Class)),
				zap.String("reason", f.Reason))
			value = metric.Absent()
		}
		c.store(key, value, ttl)
		return value, nil
	})
	return v.(metric.Value)
}

// Stats returns the hit/miss counters accumulated since creation.
func (c *Cache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// lookup returns the entry for key if present and still valid.
func (c *Cache) lookup(key string) (metric.Value, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return metric.Value{}, false
	}
	if e.ttl <= 0 || c.now().Sub(e.fetchedAt) >= e.ttl {
		return metric.Value{}, false
	}
	return e.value, true
}

// store overwrites the entry for key in place.
func (c *Cache) store(key string, value metric.Value, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, fetchedAt: c.now(), ttl: ttl}
	c.mu.Unlock()
}
