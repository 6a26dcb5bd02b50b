// Package booking holds the pure admission rules for reservations:
// timestamp normalization, slot window validation, the interval
// overlap predicate and the status transition table.  Nothing in
// this package touches the database; repositories and handlers
// combine these rules with storage-level locking to keep the
// no-overlap invariant under concurrent requests.
package booking

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// DurationToleranceMinutes is how far a requested window may deviate
// from the service's fixed slot duration and still be admitted.
const DurationToleranceMinutes = 5

// ErrStartAfterEnd is returned when a window's start is not strictly
// before its end.
var ErrStartAfterEnd = errors.New("start time must be before end time")

// ErrPastBooking is returned when a window starts before the current
// instant.
var ErrPastBooking = errors.New("cannot book in the past")

// DurationMismatchError reports a window whose length deviates from
// the service duration by more than the tolerance.  The expected
// duration is carried so handlers can surface it to the client.
type DurationMismatchError struct {
	ExpectedMinutes int
}

func (e *DurationMismatchError) Error() string {
	return fmt.Sprintf("booking duration must be %d minutes", e.ExpectedMinutes)
}

// timeLayouts are the accepted request formats for start/end times.
// Zoned inputs are converted to UTC; zoneless inputs are assumed to
// already be UTC.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTime parses an ISO-8601 timestamp and normalizes it to UTC.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// ValidateWindow checks the creation-time invariants for a proposed
// slot [start, end) against the service's fixed duration, in the
// same order the admission engine applies them: ordering, past-time,
// duration tolerance.  start and end must already be UTC.
func ValidateWindow(start, end, now time.Time, serviceMinutes int) error {
	if !start.Before(end) {
		return ErrStartAfterEnd
	}
	if start.Before(now) {
		return ErrPastBooking
	}
	actual := end.Sub(start).Minutes()
	if math.Abs(actual-float64(serviceMinutes)) > DurationToleranceMinutes {
		return &DurationMismatchError{ExpectedMinutes: serviceMinutes}
	}
	return nil
}

// Overlaps reports whether the half-open intervals [s1,e1) and
// [s2,e2) intersect.  Adjacent intervals sharing a boundary instant
// do not overlap, which is what allows back-to-back bookings.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}
