package metric

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Class categorizes why a metric fetch failed.
type Class string

// Failure classes.
const (
	ClassSourceUnavailable Class = "source_unavailable" // file or command missing
	ClassPermissionDenied  Class = "permission_denied"
	ClassParseError        Class = "parse_error" // malformed OS output
	ClassTimeout           Class = "timeout"
	ClassUnknownMetric     Class = "unknown_metric"  // bad name in a request
	ClassTransientEmpty    Class = "transient_empty" // no baseline sample yet
)

// Failure is the in-band error produced at the provider boundary.
// It never escapes the cache or collector as a fault: the cache converts
// it to an Absent value and logs the class and reason.
type Failure struct {
	Class  Class
	Reason string
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Class, f.Reason)
}

// NewFailure creates a Failure with a formatted reason.
func NewFailure(class Class, format string, args ...interface{}) *Failure {
	return &Failure{Class: class, Reason: fmt.Sprintf(format, args...)}
}

// Classify wraps an arbitrary OS-level error as a Failure, mapping common
// error kinds to their class. Already-classified failures pass through.
func Classify(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	switch {
	case errors.Is(err, os.ErrNotExist):
		return &Failure{Class: ClassSourceUnavailable, Reason: err.Error()}
	case errors.Is(err, os.ErrPermission):
		return &Failure{Class: ClassPermissionDenied, Reason: err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return &Failure{Class: ClassTimeout, Reason: err.Error()}
	default:
		return &Failure{Class: ClassSourceUnavailable, Reason: err.Error()}
	}
}

// ClassOf returns the failure class for an error, classifying it first
// if necessary.
func ClassOf(err error) Class {
	return Classify(err).Class
}
