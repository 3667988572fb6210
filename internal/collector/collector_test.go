package collector

import (
	"context"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hostpulse/agent/internal/cache"
	"github.com/hostpulse/agent/internal/metric"
	"github.com/hostpulse/agent/internal/registry"
)

// stubProvider returns a fixed value, error, or panic per fetch.
type stubProvider struct {
	name  string
	value metric.Value
	err   error
	panic string
	calls atomic.Int64
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Fetch(ctx context.Context) (metric.Value, error) {
	s.calls.Add(1)
	if s.panic != "" {
		panic(s.panic)
	}
	return s.value, s.err
}

// newTestCollector builds a collector over stub registrations with
// caching disabled (zero TTL) unless a ttl is given.
func newTestCollector(t *testing.T, ttl time.Duration, stubs ...*stubProvider) *Collector {
	t.Helper()
	reg := registry.New(nil)
	for _, s := range stubs {
		reg.Register(registry.Registration{
			Key:      metric.NewKey(s.name),
			Provider: s,
			TTL:      ttl,
		})
	}
	return New(reg, cache.New(nil), nil, time.Second, 2)
}

func fixedStubs() []*stubProvider {
	return []*stubProvider{
		{name: "cpu_temp", value: metric.NewScalar(45.0)},
		{name: "load_avg", value: metric.NewTriple(0.10, 0.20, 0.30)},
		{name: "memory", value: metric.NewFields(map[string]float64{"total": 8192})},
		{name: "battery", value: metric.Absent()},
	}
}

func TestCollect_ModesProduceIdenticalResults(t *testing.T) {
	names := []string{"cpu_temp", "load_avg", "memory", "battery"}

	var results []metric.Result
	for _, mode := range []Mode{Sequential, Threaded, Async} {
		c := newTestCollector(t, 0, fixedStubs()...)
		results = append(results, c.Collect(context.Background(), names, mode))
	}

	for i := 1; i < len(results); i++ {
		if !reflect.DeepEqual(results[0], results[i]) {
			t.Errorf("mode %v result = %+v, want same as sequential %+v",
				Mode(i), results[i], results[0])
		}
	}
	if len(results[0]) != len(names) {
		t.Errorf("result has %d keys, want %d", len(results[0]), len(names))
	}
}

func TestCollect_FailureIsolatedToItsKey(t *testing.T) {
	stubs := []*stubProvider{
		{name: "cpu_temp", value: metric.NewScalar(45.0)},
		{name: "gpu_temp", err: metric.NewFailure(metric.ClassSourceUnavailable, "no thermal zone")},
	}

	for _, mode := range []Mode{Sequential, Threaded, Async} {
		c := newTestCollector(t, 0, stubs[0], stubs[1])
		result := c.Collect(context.Background(), []string{"cpu_temp", "gpu_temp"}, mode)

		if got := result["gpu_temp"]; !got.IsAbsent() {
			t.Errorf("mode %v: gpu_temp = %+v, want Absent", mode, got)
		}
		if got := result["cpu_temp"]; got.Scalar != 45.0 {
			t.Errorf("mode %v: cpu_temp = %+v, want 45.0 despite sibling failure", mode, got)
		}
	}
}

func TestCollect_PanicIsolatedToItsKey(t *testing.T) {
	stubs := []*stubProvider{
		{name: "good", value: metric.NewScalar(1)},
		{name: "bad", panic: "index out of range"},
	}

	for _, mode := range []Mode{Sequential, Threaded, Async} {
		c := newTestCollector(t, 0, stubs[0], stubs[1])
		result := c.Collect(context.Background(), []string{"good", "bad"}, mode)

		if got := result["bad"]; !got.IsAbsent() {
			t.Errorf("mode %v: bad = %+v, want Absent after panic", mode, got)
		}
		if got := result["good"]; got.Scalar != 1 {
			t.Errorf("mode %v: good = %+v, want 1", mode, got)
		}
	}
}

func TestCollect_UnknownMetricYieldsEntry(t *testing.T) {
	c := newTestCollector(t, 0, &stubProvider{name: "cpu_temp", value: metric.NewScalar(1)})

	result := c.Collect(context.Background(), []string{"unknown_metric_xyz"}, Sequential)
	got, ok := result["unknown_metric_xyz"]
	if !ok {
		t.Fatal("unknown metric missing from result, want Absent entry")
	}
	if !got.IsAbsent() {
		t.Errorf("unknown metric = %+v, want Absent", got)
	}
}

func TestCollect_CacheBoundsFetches(t *testing.T) {
	stub := &stubProvider{name: "cpu_temp", value: metric.NewScalar(45.0)}
	c := newTestCollector(t, time.Minute, stub)

	for i := 0; i < 3; i++ {
		c.Collect(context.Background(), []string{"cpu_temp"}, Sequential)
	}
	if n := stub.calls.Load(); n != 1 {
		t.Errorf("provider fetches = %d, want 1 within TTL", n)
	}
}

func TestCollect_TransformAppliedBeforeCaching(t *testing.T) {
	reg := registry.New(nil)
	stub := &stubProvider{name: "cpu_temp", value: metric.NewScalar(45.678)}
	reg.Register(registry.Registration{
		Key:      metric.NewKey("cpu_temp"),
		Provider: stub,
		TTL:      time.Minute,
		Transform: func(v metric.Value) metric.Value {
			return metric.NewScalar(float64(int(v.Scalar))) // truncate
		},
	})
	c := New(reg, cache.New(nil), nil, time.Second, 2)

	result := c.Collect(context.Background(), []string{"cpu_temp"}, Sequential)
	if got := result["cpu_temp"]; got.Scalar != 45.0 {
		t.Errorf("transformed value = %v, want 45.0", got.Scalar)
	}

	// Second read serves the transformed value from cache.
	result = c.Collect(context.Background(), []string{"cpu_temp"}, Sequential)
	if got := result["cpu_temp"]; got.Scalar != 45.0 {
		t.Errorf("cached value = %v, want 45.0", got.Scalar)
	}
	if n := stub.calls.Load(); n != 1 {
		t.Errorf("provider fetches = %d, want 1", n)
	}
}

func TestCollect_FetchTimeoutBecomesAbsent(t *testing.T) {
	slow := &stubProviderFunc{name: "slow", fn: func(ctx context.Context) (metric.Value, error) {
		select {
		case <-ctx.Done():
			return metric.Absent(), metric.Classify(ctx.Err())
		case <-time.After(5 * time.Second):
			return metric.NewScalar(1), nil
		}
	}}
	reg := registry.New(nil)
	reg.Register(registry.Registration{Key: metric.NewKey("slow"), Provider: slow})
	c := New(reg, cache.New(nil), nil, 10*time.Millisecond, 2)

	start := time.Now()
	result := c.Collect(context.Background(), []string{"slow"}, Sequential)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("collect took %v, want prompt timeout", elapsed)
	}
	if got := result["slow"]; !got.IsAbsent() {
		t.Errorf("slow = %+v, want Absent on timeout", got)
	}
}

func TestCollectAll_CoversRegisteredNames(t *testing.T) {
	stubs := fixedStubs()
	c := newTestCollector(t, 0, stubs...)

	result := c.CollectAll(context.Background(), Sequential)
	if len(result) != len(stubs) {
		t.Fatalf("result has %d keys, want %d", len(result), len(stubs))
	}
	for _, s := range stubs {
		if _, ok := result[s.name]; !ok {
			t.Errorf("result missing key %q", s.name)
		}
	}
}

// stubProviderFunc adapts a function to the Provider interface.
type stubProviderFunc struct {
	name string
	fn   func(ctx context.Context) (metric.Value, error)
}

func (s *stubProviderFunc) Name() string { return s.name }

func (s *stubProviderFunc) Fetch(ctx context.Context) (metric.Value, error) {
	return s.fn(ctx)
}
