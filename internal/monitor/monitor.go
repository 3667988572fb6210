// Package monitor exposes the public entry point composing the registry,
// TTL cache, and batch collector. One Monitor instance owns its cache and
// registry for its whole lifetime; there is no package-level state.
//
// Every accessor is total: failures surface as an Absent value, with the
// diagnostic reason logged, never as an error or panic.
package monitor

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/hostpulse/agent/internal/cache"
	"github.com/hostpulse/agent/internal/collector"
	"github.com/hostpulse/agent/internal/config"
	"github.com/hostpulse/agent/internal/metric"
	"github.com/hostpulse/agent/internal/provider"
	"github.com/hostpulse/agent/internal/registry"
)

// Monitor is the facade over host telemetry collection.
type Monitor struct {
	cfg       *config.Config
	logger    *zap.Logger
	cache     *cache.Cache
	registry  *registry.Registry
	collector *collector.Collector

	// diskRegs memoizes per-path disk registrations so each path keeps a
	// stable cache key and TTL policy.
	diskMu   sync.Mutex
	diskRegs map[string]*registry.Registration
}

// New creates a Monitor with the default provider set built from cfg.
// A nil cfg selects the defaults; a nil logger disables logging.
func New(cfg *config.Config, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	reg := registry.New(logger)
	registerDefaults(reg, cfg)
	return NewWithRegistry(reg, cfg, logger)
}

// NewWithRegistry creates a Monitor over a caller-built registry.
// Used by tests to substitute providers.
func NewWithRegistry(reg *registry.Registry, cfg *config.Config, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	c := cache.New(logger)
	return &Monitor{
		cfg:      cfg,
		logger:   logger,
		cache:    c,
		registry: reg,
		collector: collector.New(reg, c, logger,
			cfg.Collection.FetchTimeout.Duration, cfg.Collection.Workers),
		diskRegs: make(map[string]*registry.Registration),
	}
}

// registerDefaults populates the registry with the full provider set.
// Volatile metrics (temperatures, usage rates) get the short TTLs;
// structural metrics (disk capacity, uptime, battery) the long one.
func registerDefaults(reg *registry.Registry, cfg *config.Config) {
	volatile := cfg.TTL.Usage.Duration
	thermal := cfg.TTL.Temperature.Duration
	structural := cfg.TTL.Structural.Duration
	src := cfg.Sources

	reg.Register(registry.Registration{
		Key:      metric.NewKey(metric.NameCPUTemp),
		Provider: provider.NewCPUTemp(src.CPUTempPath),
		TTL:      thermal,
	})
	reg.Register(registry.Registration{
		Key:      metric.NewKey(metric.NameGPUTemp),
		Provider: provider.NewGPUTemp(src.GPUTempPath, src.GPUTempCommand),
		TTL:      thermal,
	})
	reg.Register(registry.Registration{
		Key:      metric.NewKey(metric.NameCPUUsage),
		Provider: provider.NewCPUUsage(),
		TTL:      volatile,
	})
	reg.Register(registry.Registration{
		Key:      metric.NewKey(metric.NameCPUUsagePerCore),
		Provider: provider.NewPerCoreCPUUsage(),
		TTL:      volatile,
	})
	reg.Register(registry.Registration{
		Key:      metric.NewKey(metric.NameCPUFreq),
		Provider: provider.NewCPUFreq(src.CPUFreqPath),
		TTL:      thermal,
	})
	reg.Register(registry.Registration{
		Key:      metric.NewKey(metric.NameMemory),
		Provider: provider.NewMemory(),
		TTL:      volatile,
	})
	reg.Register(registry.Registration{
		Key:      metric.DiskKey(diskPath(cfg)),
		Provider: provider.NewDiskUsage(diskPath(cfg)),
		TTL:      structural,
	})
	reg.Register(registry.Registration{
		Key:      metric.NewKey(metric.NameNetwork),
		Provider: provider.NewNetwork(),
		TTL:      volatile,
	})
	reg.Register(registry.Registration{
		Key:      metric.NewKey(metric.NameUptime),
		Provider: provider.NewUptime(),
		TTL:      structural,
	})
	reg.Register(registry.Registration{
		Key:      metric.NewKey(metric.NameLoadAvg),
		Provider: provider.NewLoadAvg(src.LoadAvgPath),
		TTL:      volatile,
	})
	reg.Register(registry.Registration{
		Key:      metric.NewKey(metric.NameProcesses),
		Provider: provider.NewProcessCount(),
		TTL:      volatile,
	})
	reg.Register(registry.Registration{
		Key:      metric.NewKey(metric.NameBattery),
		Provider: provider.NewBattery(src.BatteryDir),
		TTL:      structural,
	})
}

// diskPath returns the configured default disk path.
func diskPath(cfg *config.Config) string {
	if cfg.Sources.DiskPath != "" {
		return cfg.Sources.DiskPath
	}
	return provider.DefaultDiskPath
}

// Collect gathers the named metrics sequentially.
func (m *Monitor) Collect(ctx context.Context, names []string) metric.Result {
	return m.collector.Collect(ctx, names, collector.Sequential)
}

// CollectWith gathers the named metrics under an explicit execution mode.
func (m *Monitor) CollectWith(ctx context.Context, names []string, mode collector.Mode) metric.Result {
	return m.collector.Collect(ctx, names, mode)
}

// CollectAll gathers every registered metric sequentially.
func (m *Monitor) CollectAll(ctx context.Context) metric.Result {
	return m.collector.CollectAll(ctx, collector.Sequential)
}

// CollectAllThreaded gathers every registered metric on the worker pool.
func (m *Monitor) CollectAllThreaded(ctx context.Context) metric.Result {
	return m.collector.CollectAll(ctx, collector.Threaded)
}

// CollectAllAsync gathers every registered metric via per-metric futures.
func (m *Monitor) CollectAllAsync(ctx context.Context) metric.Result {
	return m.collector.CollectAll(ctx, collector.Async)
}

// CollectAllWith gathers every registered metric under an explicit
// execution mode.
func (m *Monitor) CollectAllWith(ctx context.Context, mode collector.Mode) metric.Result {
	return m.collector.CollectAll(ctx, mode)
}

// CPUTemperature returns the CPU temperature in Celsius.
func (m *Monitor) CPUTemperature(ctx context.Context) metric.Value {
	return m.one(ctx, metric.NameCPUTemp)
}

// GPUTemperature returns the GPU temperature in Celsius.
func (m *Monitor) GPUTemperature(ctx context.Context) metric.Value {
	return m.one(ctx, metric.NameGPUTemp)
}

// CPUUsage returns the overall CPU utilization percentage since the
// previous sample. The first call after construction is Absent while the
// baseline is recorded.
func (m *Monitor) CPUUsage(ctx context.Context) metric.Value {
	return m.one(ctx, metric.NameCPUUsage)
}

// PerCoreCPUUsage returns per-core utilization percentages.
func (m *Monitor) PerCoreCPUUsage(ctx context.Context) metric.Value {
	return m.one(ctx, metric.NameCPUUsagePerCore)
}

// CPUFrequency returns the current CPU frequency in MHz.
func (m *Monitor) CPUFrequency(ctx context.Context) metric.Value {
	return m.one(ctx, metric.NameCPUFreq)
}

// MemoryInfo returns memory statistics in MB.
func (m *Monitor) MemoryInfo(ctx context.Context) metric.Value {
	return m.one(ctx, metric.NameMemory)
}

// NetworkStats returns per-interface sent/recv byte counters.
func (m *Monitor) NetworkStats(ctx context.Context) metric.Value {
	return m.one(ctx, metric.NameNetwork)
}

// Uptime returns seconds since boot.
func (m *Monitor) Uptime(ctx context.Context) metric.Value {
	return m.one(ctx, metric.NameUptime)
}

// LoadAverage returns the 1/5/15-minute load triple.
func (m *Monitor) LoadAverage(ctx context.Context) metric.Value {
	return m.one(ctx, metric.NameLoadAvg)
}

// ProcessCount returns the number of live processes.
func (m *Monitor) ProcessCount(ctx context.Context) metric.Value {
	return m.one(ctx, metric.NameProcesses)
}

// BatteryStatus returns battery charge fields, or Absent on hosts
// without a battery.
func (m *Monitor) BatteryStatus(ctx context.Context) metric.Value {
	return m.one(ctx, metric.NameBattery)
}

// DiskUsage returns usage statistics in GB for the given filesystem
// path. Each path is cached under its own key, so readings for one path
// never invalidate another's.
func (m *Monitor) DiskUsage(ctx context.Context, path string) metric.Value {
	if path == "" {
		path = diskPath(m.cfg)
	}
	return m.collector.Fetch(ctx, m.diskRegistration(path))
}

// CacheStats returns the cache hit/miss counters.
func (m *Monitor) CacheStats() cache.Stats {
	return m.cache.Stats()
}

// one serves a single unparameterized metric through the collector.
func (m *Monitor) one(ctx context.Context, name string) metric.Value {
	return m.collector.Collect(ctx, []string{name}, collector.Sequential)[name]
}

// diskRegistration returns the memoized registration for a disk path,
// creating it on first use.
func (m *Monitor) diskRegistration(path string) *registry.Registration {
	m.diskMu.Lock()
	defer m.diskMu.Unlock()
	if reg, ok := m.diskRegs[path]; ok {
		return reg
	}
	reg := &registry.Registration{
		Key:      metric.DiskKey(path),
		Provider: provider.NewDiskUsage(path),
		TTL:      m.cfg.TTL.Structural.Duration,
	}
	m.diskRegs[path] = reg
	return reg
}
