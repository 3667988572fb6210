package provider

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hostpulse/agent/internal/metric"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCPUTemp_ParsesMillidegrees(t *testing.T) {
	path := writeFile(t, t.TempDir(), "temp", "45000\n")
	p := NewCPUTemp(path)

	v, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind != metric.KindScalar || v.Scalar != 45.0 {
		t.Errorf("Fetch = %+v, want scalar 45.0", v)
	}
}

func TestCPUTemp_MissingFile(t *testing.T) {
	p := NewCPUTemp(filepath.Join(t.TempDir(), "nope"))

	v, err := p.Fetch(context.Background())
	if !v.IsAbsent() {
		t.Errorf("value = %+v, want Absent", v)
	}
	if metric.ClassOf(err) != metric.ClassSourceUnavailable {
		t.Errorf("class = %v, want source_unavailable", metric.ClassOf(err))
	}
}

func TestCPUTemp_MalformedReading(t *testing.T) {
	path := writeFile(t, t.TempDir(), "temp", "not-a-number\n")
	p := NewCPUTemp(path)

	_, err := p.Fetch(context.Background())
	if metric.ClassOf(err) != metric.ClassParseError {
		t.Errorf("class = %v, want parse_error", metric.ClassOf(err))
	}
}

func TestGPUTemp_FileFirst(t *testing.T) {
	path := writeFile(t, t.TempDir(), "temp", "52500")
	p := NewGPUTemp(path, nil)
	p.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		t.Fatal("command fallback invoked despite readable file")
		return nil, nil
	}

	v, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if v.Scalar != 52.5 {
		t.Errorf("Fetch = %v, want 52.5", v.Scalar)
	}
}

func TestGPUTemp_CommandFallback(t *testing.T) {
	p := NewGPUTemp(filepath.Join(t.TempDir(), "nope"), []string{"vcgencmd", "measure_temp"})
	p.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("temp=42.8'C\n"), nil
	}

	v, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if v.Scalar != 42.8 {
		t.Errorf("Fetch = %v, want 42.8", v.Scalar)
	}
}

func TestGPUTemp_CommandMissing(t *testing.T) {
	p := NewGPUTemp(filepath.Join(t.TempDir(), "nope"), []string{"vcgencmd"})
	p.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, errors.New("executable file not found in $PATH")
	}

	v, err := p.Fetch(context.Background())
	if !v.IsAbsent() {
		t.Errorf("value = %+v, want Absent", v)
	}
	if metric.ClassOf(err) != metric.ClassSourceUnavailable {
		t.Errorf("class = %v, want source_unavailable", metric.ClassOf(err))
	}
}

func TestGPUTemp_CommandTimeout(t *testing.T) {
	p := NewGPUTemp(filepath.Join(t.TempDir(), "nope"), []string{"vcgencmd"})
	p.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()

	_, err := p.Fetch(ctx)
	if metric.ClassOf(err) != metric.ClassTimeout {
		t.Errorf("class = %v, want timeout", metric.ClassOf(err))
	}
}

func TestParseVendorTemp_Malformed(t *testing.T) {
	for _, out := range []string{"", "garbage", "temp='C"} {
		if _, err := parseVendorTemp(out); err == nil {
			t.Errorf("parseVendorTemp(%q) = nil error, want parse failure", out)
		}
	}
}
