// Package timegrid generates the evenly spaced time samples that grid
// evaluation iterates over. A grid is built once and reused across every
// constraint in a computation.
package timegrid

import (
	"fmt"
	"time"
)

// InvalidRangeError reports a malformed grid request: end before start, a
// non-positive step, or too few points.
type InvalidRangeError struct {
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid time range: %s", e.Reason)
}

// Grid is an ordered, immutable sequence of time points with fixed spacing.
// The first point is the start time; the last point never exceeds the end
// time. Points are strictly increasing.
type Grid struct {
	start time.Time
	step  time.Duration
	n     int
}

// New builds a grid spanning [start, end] at the given step. The final point
// is truncated so it does not pass end.
func New(start, end time.Time, step time.Duration) (*Grid, error) {
	if end.Before(start) {
		return nil, &InvalidRangeError{Reason: fmt.Sprintf("end %s precedes start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))}
	}
	if step <= 0 {
		return nil, &InvalidRangeError{Reason: fmt.Sprintf("step %v is not positive", step)}
	}
	n := int(end.Sub(start)/step) + 1
	return &Grid{start: start, step: step, n: n}, nil
}

// NewCount builds a grid of exactly n points evenly dividing [start, end].
// n must be at least 2 so both endpoints are represented.
func NewCount(start, end time.Time, n int) (*Grid, error) {
	if end.Before(start) {
		return nil, &InvalidRangeError{Reason: fmt.Sprintf("end %s precedes start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))}
	}
	if n < 2 {
		return nil, &InvalidRangeError{Reason: fmt.Sprintf("count %d is less than 2", n)}
	}
	step := end.Sub(start) / time.Duration(n-1)
	if step <= 0 {
		return nil, &InvalidRangeError{Reason: "interval too short for requested count"}
	}
	return &Grid{start: start, step: step, n: n}, nil
}

// Len returns the number of points in the grid.
func (g *Grid) Len() int { return g.n }

// Step returns the spacing between consecutive points.
func (g *Grid) Step() time.Duration { return g.step }

// At returns the i-th point. Points are computed from the start time so the
// grid costs a fixed amount of memory regardless of length.
func (g *Grid) At(i int) time.Time {
	return g.start.Add(time.Duration(i) * g.step)
}

// Times materializes the full sequence. The returned slice is owned by the
// caller.
func (g *Grid) Times() []time.Time {
	out := make([]time.Time, g.n)
	for i := range out {
		out[i] = g.At(i)
	}
	return out
}
