// Package provider defines the Provider interface and implements one
// provider per raw OS-level metric source (sysfs/procfs pseudo-files,
// gopsutil syscall wrappers, external commands).
//
// A provider never panics and never lets a raw OS error escape: every
// failure is returned as a *metric.Failure carrying its class and reason.
package provider

import (
	"context"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/hostpulse/agent/internal/metric"
)

// Provider wraps exactly one raw metric source and converts its output
// into a typed metric value or a classified failure.
type Provider interface {
	// Name returns the metric name this provider serves.
	Name() string

	// Fetch gathers the metric. The context bounds any I/O the provider
	// performs; a deadline hit is reported as a Timeout failure, not a hang.
	Fetch(ctx context.Context) (metric.Value, error)
}

// readTrimmedFile reads a pseudo-file and returns its first line with
// surrounding whitespace removed. OS errors come back classified.
func readTrimmedFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", metric.Classify(err)
	}
	line := strings.TrimSpace(string(data))
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	return line, nil
}

// parseMillidegrees converts a raw millidegree reading ("45000") to
// degrees Celsius (45.0).
func parseMillidegrees(raw, path string) (float64, error) {
	milli, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, metric.NewFailure(metric.ClassParseError,
			"malformed temperature %q in %s", raw, path)
	}
	return milli / 1000.0, nil
}

// round2 rounds to two decimal places, matching the precision the
// memory and disk providers report.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
