// Package transit predicts mid-event times for periodic eclipsing and
// transiting systems. Event arithmetic is done on integer nanoseconds
// (time.Duration), never floating-point day counts, so stepping thousands of
// periods from the epoch accumulates no rounding error.
package transit

import (
	"fmt"
	"time"
)

// InvalidEphemerisError reports malformed periodic-event parameters.
type InvalidEphemerisError struct {
	Reason string
}

func (e *InvalidEphemerisError) Error() string {
	return fmt.Sprintf("invalid ephemeris: %s", e.Reason)
}

// EclipsingSystem describes a periodic eclipsing or transiting system:
// a reference mid-event time, an orbital period, and the event duration.
// Immutable once constructed.
type EclipsingSystem struct {
	Name     string
	Epoch    time.Time // reference primary mid-event time
	Period   time.Duration
	Duration time.Duration // full event duration, ingress to egress
}

// NewEclipsingSystem validates and returns a system. The period must be
// positive and the duration strictly shorter than the period.
func NewEclipsingSystem(name string, epoch time.Time, period, duration time.Duration) (*EclipsingSystem, error) {
	if period <= 0 {
		return nil, &InvalidEphemerisError{Reason: fmt.Sprintf("period %v is not positive", period)}
	}
	if duration < 0 {
		return nil, &InvalidEphemerisError{Reason: fmt.Sprintf("duration %v is negative", duration)}
	}
	if duration >= period {
		return nil, &InvalidEphemerisError{Reason: fmt.Sprintf("duration %v is not shorter than period %v", duration, period)}
	}
	return &EclipsingSystem{Name: name, Epoch: epoch, Period: period, Duration: duration}, nil
}

// eventAt returns the primary mid-event time for cycle number k.
func (s *EclipsingSystem) eventAt(k int64) time.Time {
	return s.Epoch.Add(time.Duration(k) * s.Period)
}

// cycleFloor returns the largest k with epoch + k*period <= t.
func (s *EclipsingSystem) cycleFloor(t time.Time) int64 {
	delta := t.Sub(s.Epoch)
	k := int64(delta / s.Period)
	// Integer division truncates toward zero; fix up for times before the epoch.
	if delta < 0 && delta%s.Period != 0 {
		k--
	}
	return k
}

// NextEventTimes returns the n primary mid-event times strictly after ref,
// in increasing order.
func (s *EclipsingSystem) NextEventTimes(ref time.Time, n int) []time.Time {
	k := s.cycleFloor(ref) + 1
	out := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, s.eventAt(k+int64(i)))
	}
	return out
}

// PreviousEventTimes returns the n primary mid-event times strictly before
// ref, most recent first.
func (s *EclipsingSystem) PreviousEventTimes(ref time.Time, n int) []time.Time {
	k := s.cycleFloor(ref)
	if s.eventAt(k).Equal(ref) {
		k--
	}
	out := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, s.eventAt(k-int64(i)))
	}
	return out
}

// NearestEventTime returns the primary mid-event time closest to ref. An
// exact tie between the previous and next events resolves to the next one.
func (s *EclipsingSystem) NearestEventTime(ref time.Time) time.Time {
	k := s.cycleFloor(ref)
	prev := s.eventAt(k)
	next := s.eventAt(k + 1)
	if ref.Sub(prev) < next.Sub(ref) {
		return prev
	}
	return next
}

// NextSecondaryEventTimes returns the n secondary (shallower) mid-event
// times strictly after ref, assuming a circular orbit where secondary
// eclipses fall half a period after primaries.
func (s *EclipsingSystem) NextSecondaryEventTimes(ref time.Time, n int) []time.Time {
	shifted := EclipsingSystem{
		Name:     s.Name,
		Epoch:    s.Epoch.Add(s.Period / 2),
		Period:   s.Period,
		Duration: s.Duration,
	}
	return shifted.NextEventTimes(ref, n)
}

// Window is an ingress/egress pair bracketing one event.
type Window struct {
	Ingress time.Time
	Egress  time.Time
}

// NextPrimaryIngressEgress returns the ingress/egress windows for the next n
// primary events whose midpoints fall strictly after ref.
func (s *EclipsingSystem) NextPrimaryIngressEgress(ref time.Time, n int) []Window {
	mids := s.NextEventTimes(ref, n)
	out := make([]Window, len(mids))
	half := s.Duration / 2
	for i, mid := range mids {
		out[i] = Window{Ingress: mid.Add(-half), Egress: mid.Add(half)}
	}
	return out
}

// InPrimaryEclipse reports whether t falls inside a primary eclipse window
// (within half the event duration of a primary midpoint).
func (s *EclipsingSystem) InPrimaryEclipse(t time.Time) bool {
	return s.withinHalfDuration(t, 0)
}

// InSecondaryEclipse reports whether t falls inside a secondary eclipse
// window, assuming the circular-orbit half-period offset.
func (s *EclipsingSystem) InSecondaryEclipse(t time.Time) bool {
	return s.withinHalfDuration(t, s.Period/2)
}

// OutOfEclipse reports whether t is outside both eclipse windows.
func (s *EclipsingSystem) OutOfEclipse(t time.Time) bool {
	return !s.InPrimaryEclipse(t) && !s.InSecondaryEclipse(t)
}

func (s *EclipsingSystem) withinHalfDuration(t time.Time, offset time.Duration) bool {
	delta := t.Sub(s.Epoch.Add(offset))
	phase := delta % s.Period
	if phase < 0 {
		phase += s.Period
	}
	dist := phase
	if other := s.Period - phase; other < dist {
		dist = other
	}
	return dist <= s.Duration/2
}
