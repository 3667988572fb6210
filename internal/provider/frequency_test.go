package provider

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/hostpulse/agent/internal/metric"
)

func TestCPUFreq_ParsesKilohertz(t *testing.T) {
	path := writeFile(t, t.TempDir(), "scaling_cur_freq", "1800000\n")
	p := NewCPUFreq(path)

	v, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if v.Scalar != 1800.0 {
		t.Errorf("freq = %v MHz, want 1800.0", v.Scalar)
	}
}

func TestCPUFreq_FallbackToInfo(t *testing.T) {
	p := NewCPUFreq(filepath.Join(t.TempDir(), "nope"))
	p.info = func(ctx context.Context) ([]cpu.InfoStat, error) {
		return []cpu.InfoStat{{Mhz: 2400}}, nil
	}

	v, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if v.Scalar != 2400.0 {
		t.Errorf("freq = %v MHz, want 2400.0 from fallback", v.Scalar)
	}
}

func TestCPUFreq_FallbackUnavailable(t *testing.T) {
	p := NewCPUFreq(filepath.Join(t.TempDir(), "nope"))
	p.info = func(ctx context.Context) ([]cpu.InfoStat, error) {
		return nil, errors.New("not supported")
	}

	v, err := p.Fetch(context.Background())
	if !v.IsAbsent() {
		t.Errorf("value = %+v, want Absent", v)
	}
	if err == nil {
		t.Error("err = nil, want failure")
	}
}

func TestCPUFreq_Malformed(t *testing.T) {
	path := writeFile(t, t.TempDir(), "scaling_cur_freq", "fast\n")
	p := NewCPUFreq(path)

	_, err := p.Fetch(context.Background())
	if metric.ClassOf(err) != metric.ClassParseError {
		t.Errorf("class = %v, want parse_error", metric.ClassOf(err))
	}
}
