package timegrid

import (
	"errors"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	start := time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		end      time.Time
		step     time.Duration
		wantLen  int
		wantLast time.Time
	}{
		{
			name:     "even division includes both endpoints",
			end:      start.Add(2 * time.Hour),
			step:     30 * time.Minute,
			wantLen:  5,
			wantLast: start.Add(2 * time.Hour),
		},
		{
			name:     "final point truncated to not exceed end",
			end:      start.Add(100 * time.Minute),
			step:     45 * time.Minute,
			wantLen:  3,
			wantLast: start.Add(90 * time.Minute),
		},
		{
			name:     "zero-length interval yields single point",
			end:      start,
			step:     time.Minute,
			wantLen:  1,
			wantLast: start,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(start, tt.end, tt.step)
			if err != nil {
				t.Fatalf("New returned error: %v", err)
			}
			if g.Len() != tt.wantLen {
				t.Errorf("Len = %d, expected %d", g.Len(), tt.wantLen)
			}
			times := g.Times()
			if !times[0].Equal(start) {
				t.Errorf("first point = %v, expected start %v", times[0], start)
			}
			if !times[len(times)-1].Equal(tt.wantLast) {
				t.Errorf("last point = %v, expected %v", times[len(times)-1], tt.wantLast)
			}
			for i := 1; i < len(times); i++ {
				if !times[i].After(times[i-1]) {
					t.Fatalf("points not strictly increasing at index %d", i)
				}
				if d := times[i].Sub(times[i-1]); d != tt.step {
					t.Errorf("gap at index %d = %v, expected %v", i, d, tt.step)
				}
				if times[i].After(tt.end) {
					t.Errorf("point %v exceeds end %v", times[i], tt.end)
				}
			}
		})
	}
}

func TestNewCount(t *testing.T) {
	start := time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Hour)

	g, err := NewCount(start, end, 11)
	if err != nil {
		t.Fatalf("NewCount returned error: %v", err)
	}
	if g.Len() != 11 {
		t.Errorf("Len = %d, expected 11", g.Len())
	}
	if g.Step() != time.Hour {
		t.Errorf("Step = %v, expected 1h", g.Step())
	}
	if !g.At(10).Equal(end) {
		t.Errorf("last point = %v, expected end %v", g.At(10), end)
	}
}

func TestInvalidRanges(t *testing.T) {
	start := time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		make func() (*Grid, error)
	}{
		{"end before start", func() (*Grid, error) { return New(start, start.Add(-time.Hour), time.Minute) }},
		{"zero step", func() (*Grid, error) { return New(start, start.Add(time.Hour), 0) }},
		{"negative step", func() (*Grid, error) { return New(start, start.Add(time.Hour), -time.Minute) }},
		{"count below two", func() (*Grid, error) { return NewCount(start, start.Add(time.Hour), 1) }},
		{"count end before start", func() (*Grid, error) { return NewCount(start, start.Add(-time.Hour), 10) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := tt.make()
			if err == nil {
				t.Fatalf("expected error, got grid of %d points", g.Len())
			}
			var rangeErr *InvalidRangeError
			if !errors.As(err, &rangeErr) {
				t.Errorf("expected *InvalidRangeError, got %T", err)
			}
		})
	}
}

func TestAtMatchesTimes(t *testing.T) {
	start := time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC)
	g, err := New(start, start.Add(3*time.Hour), 20*time.Minute)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	times := g.Times()
	for i, want := range times {
		if got := g.At(i); !got.Equal(want) {
			t.Errorf("At(%d) = %v, Times()[%d] = %v", i, got, i, want)
		}
	}
}
