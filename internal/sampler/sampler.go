// Package sampler implements a tick-based periodic collection loop.
// It gathers a full snapshot at a configurable interval and hands each
// one to a callback; the sampler does not store or transmit anything.
package sampler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hostpulse/agent/internal/collector"
	"github.com/hostpulse/agent/internal/metric"
	"github.com/hostpulse/agent/internal/monitor"
)

// Snapshot is one timestamped full collection.
type Snapshot struct {
	Timestamp time.Time     `json:"timestamp"`
	Metrics   metric.Result `json:"metrics"`
}

// Sampler runs periodic full collections against a Monitor.
type Sampler struct {
	mon      *monitor.Monitor
	interval time.Duration
	mode     collector.Mode
	logger   *zap.Logger

	onSample func(Snapshot)
}

// New creates a Sampler collecting every interval under the given mode.
func New(mon *monitor.Monitor, interval time.Duration, mode collector.Mode, logger *zap.Logger) *Sampler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sampler{
		mon:      mon,
		interval: interval,
		mode:     mode,
		logger:   logger,
	}
}

// OnSample sets the callback invoked with each snapshot.
func (s *Sampler) OnSample(fn func(Snapshot)) {
	s.onSample = fn
}

// Start begins the collection loop. It collects once immediately, then on
// every tick, and blocks until the context is cancelled.
func (s *Sampler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.collect(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.collect(ctx)
		}
	}
}

// collect gathers one snapshot and dispatches it.
func (s *Sampler) collect(ctx context.Context) {
	snapshot := Snapshot{
		Timestamp: time.Now().UTC(),
		Metrics:   s.mon.CollectAllWith(ctx, s.mode),
	}

	s.logger.Debug("Collected snapshot",
		zap.Time("timestamp", snapshot.Timestamp),
		zap.Int("metrics", len(snapshot.Metrics)))

	if s.onSample != nil {
		s.onSample(snapshot)
	}
}
