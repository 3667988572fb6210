// Package registry maps metric names to their provider, TTL policy, and
// post-processing. The collector resolves batch requests through it;
// unknown names are reported per entry and never fail a whole batch.
package registry

import (
	"time"

	"go.uber.org/zap"

	"github.com/hostpulse/agent/internal/metric"
	"github.com/hostpulse/agent/internal/provider"
)

// Transform post-processes a fetched value (unit conversion, rounding)
// before it is cached. A nil Transform leaves the value as produced.
type Transform func(metric.Value) metric.Value

// Registration binds one metric to its provider and caching policy.
type Registration struct {
	Key       metric.Key
	Provider  provider.Provider
	TTL       time.Duration
	Transform Transform
}

// Registry is the static metric table. It is populated at construction
// and read-only afterwards, so lookups need no locking.
type Registry struct {
	byName map[string]*Registration
	order  []string
	logger *zap.Logger
}

// New creates an empty registry with the given logger.
// A nil logger disables logging.
func New(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		byName: make(map[string]*Registration),
		logger: logger,
	}
}

// Register adds a metric registration. Re-registering a name replaces
// the previous entry and keeps its position.
func (r *Registry) Register(reg Registration) {
	name := reg.Key.Name
	if _, exists := r.byName[name]; !exists {
		r.order = append(r.order, name)
	}
	r.byName[name] = &reg
	r.logger.Debug("Registered metric",
		zap.String("name", name),
		zap.Duration("ttl", reg.TTL))
}

// Lookup resolves a metric name string to its registration.
func (r *Registry) Lookup(name string) (*Registration, bool) {
	reg, ok := r.byName[name]
	return reg, ok
}

// Names returns all registered metric names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}
