// Package collector orchestrates batch metric collection through the
// cache and registry. A batch runs under one of three execution modes —
// sequential, threaded (bounded worker pool), or async (one future per
// metric) — all producing identical results for the same system state.
package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hostpulse/agent/internal/cache"
	"github.com/hostpulse/agent/internal/metric"
	"github.com/hostpulse/agent/internal/registry"
)

// Mode selects the execution discipline for one batch.
type Mode int

// Execution modes.
const (
	// Sequential fetches metrics one after another on the calling goroutine.
	Sequential Mode = iota
	// Threaded dispatches metrics to a bounded worker pool.
	Threaded
	// Async launches one fetch future per metric and joins them in
	// request order.
	Async
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Sequential:
		return "sequential"
	case Threaded:
		return "threaded"
	case Async:
		return "async"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// defaultWorkers bounds the threaded pool when no size is configured.
const defaultWorkers = 4

// Collector resolves batch requests against the registry and serves each
// metric through the cache.
type Collector struct {
	registry *registry.Registry
	cache    *cache.Cache
	logger   *zap.Logger

	// fetchTimeout bounds each individual provider fetch so one stuck
	// source cannot stall a whole batch.
	fetchTimeout time.Duration
	workers      int
}

// New creates a collector. fetchTimeout <= 0 disables the per-fetch
// ceiling; workers <= 0 selects the default pool size.
func New(reg *registry.Registry, c *cache.Cache, logger *zap.Logger, fetchTimeout time.Duration, workers int) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Collector{
		registry:     reg,
		cache:        c,
		logger:       logger,
		fetchTimeout: fetchTimeout,
		workers:      workers,
	}
}

// Collect produces a result for the requested metric names under the
// given mode. The result is total: every requested name appears, with
// Absent marking metrics that failed or are unknown. Duplicate names
// collapse to one fetch and one result entry.
func (c *Collector) Collect(ctx context.Context, names []string, mode Mode) metric.Result {
	switch mode {
	case Threaded:
		return c.collectThreaded(ctx, names)
	case Async:
		return c.collectAsync(ctx, names)
	default:
		return c.collectSequential(ctx, names)
	}
}

// CollectAll collects every registered metric under the given mode.
func (c *Collector) CollectAll(ctx context.Context, mode Mode) metric.Result {
	return c.Collect(ctx, c.registry.Names(), mode)
}

// collectSequential fetches each metric one after another.
func (c *Collector) collectSequential(ctx context.Context, names []string) metric.Result {
	result := make(metric.Result, len(names))
	for _, name := range names {
		result[name] = c.fetchOneRecovered(ctx, name)
	}
	return result
}

// collectThreaded dispatches names to a bounded worker pool and joins all
// workers before assembling the result. A worker panic is confined to its
// metric's slot.
func (c *Collector) collectThreaded(ctx context.Context, names []string) metric.Result {
	jobs := make(chan string)
	result := make(metric.Result, len(names))

	var mu sync.Mutex
	var wg sync.WaitGroup

	workers := c.workers
	if workers > len(names) {
		workers = len(names)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range jobs {
				v := c.fetchOneRecovered(ctx, name)
				mu.Lock()
				result[name] = v
				mu.Unlock()
			}
		}()
	}

	// Request order feeds the queue, so earlier names are scheduled first.
	for _, name := range names {
		jobs <- name
	}
	close(jobs)
	wg.Wait()

	return result
}

// future carries one pending fetch.
type future struct {
	name string
	ch   chan metric.Value
}

// collectAsync launches every fetch immediately and merges completions in
// request order, so result construction is deterministic for a fixed
// provider state.
func (c *Collector) collectAsync(ctx context.Context, names []string) metric.Result {
	futures := make([]future, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		f := future{name: name, ch: make(chan metric.Value, 1)}
		futures = append(futures, f)
		go func(f future) {
			f.ch <- c.fetchOneRecovered(ctx, f.name)
		}(f)
	}

	result := make(metric.Result, len(futures))
	for _, f := range futures {
		result[f.name] = <-f.ch
	}
	return result
}

// fetchOneRecovered is fetchOne with panic isolation: an unexpected
// runtime error in a provider becomes an Absent entry for that key only.
func (c *Collector) fetchOneRecovered(ctx context.Context, name string) (v metric.Value) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Metric fetch panicked",
				zap.String("metric", name),
				zap.Any("panic", r))
			v = metric.Absent()
		}
	}()
	return c.fetchOne(ctx, name)
}

// fetchOne resolves one metric name through the registry and serves it
// from the cache, applying the registration's transform to fresh values
// before they are stored. Unknown names yield Absent without touching
// the cache.
func (c *Collector) fetchOne(ctx context.Context, name string) metric.Value {
	reg, ok := c.registry.Lookup(name)
	if !ok {
		f := metric.NewFailure(metric.ClassUnknownMetric, "no such metric %q", name)
		c.logger.Warn("Unknown metric requested",
			zap.String("metric", name),
			zap.String("class", string(f.Class)))
		return metric.Absent()
	}
	return c.Fetch(ctx, reg)
}

// Fetch serves one registration through the cache under the per-fetch
// timeout. The monitor uses it directly for parameterized keys that are
// not in the registry (per-path disk usage).
func (c *Collector) Fetch(ctx context.Context, reg *registry.Registration) metric.Value {
	return c.cache.GetOrFetch(ctx, reg.Key.CacheKey(), reg.TTL, func(ctx context.Context) (metric.Value, error) {
		if c.fetchTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.fetchTimeout)
			defer cancel()
		}
		v, err := reg.Provider.Fetch(ctx)
		if err != nil {
			return metric.Absent(), err
		}
		if reg.Transform != nil {
			v = reg.Transform(v)
		}
		return v, nil
	})
}
