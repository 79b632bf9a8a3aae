package transit

import (
	"errors"
	"testing"
	"time"
)

// HD 189733 b: period 2.204737 days, transit duration ~1.8 hours.
// 2.204737 days is exactly 2204737 * 86400000 ns, so the fixture period is
// representable without rounding.
var (
	testEpoch    = time.Date(2022, 9, 1, 4, 0, 0, 0, time.UTC)
	testPeriod   = time.Duration(2204737 * 86400000)
	testDuration = 109*time.Minute + 12*time.Second
)

func mustSystem(t *testing.T) *EclipsingSystem {
	t.Helper()
	s, err := NewEclipsingSystem("HD 189733 b", testEpoch, testPeriod, testDuration)
	if err != nil {
		t.Fatalf("NewEclipsingSystem returned error: %v", err)
	}
	return s
}

func TestNewEclipsingSystemValidation(t *testing.T) {
	tests := []struct {
		name     string
		period   time.Duration
		duration time.Duration
		wantErr  bool
	}{
		{"valid", testPeriod, testDuration, false},
		{"zero period", 0, testDuration, true},
		{"negative period", -time.Hour, testDuration, true},
		{"duration equals period", testPeriod, testPeriod, true},
		{"duration exceeds period", testPeriod, testPeriod + time.Second, true},
		{"negative duration", testPeriod, -time.Minute, true},
		{"zero duration allowed", testPeriod, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEclipsingSystem("x", testEpoch, tt.period, tt.duration)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				var ephErr *InvalidEphemerisError
				if !errors.As(err, &ephErr) {
					t.Errorf("expected *InvalidEphemerisError, got %T", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNextEventTimes(t *testing.T) {
	s := mustSystem(t)

	ref := testEpoch.Add(12 * time.Hour) // epoch + 0.5 day
	got := s.NextEventTimes(ref, 3)

	want := []time.Time{
		testEpoch.Add(testPeriod),
		testEpoch.Add(2 * testPeriod),
		testEpoch.Add(3 * testPeriod),
	}
	if len(got) != 3 {
		t.Fatalf("got %d events, expected 3", len(got))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("event %d = %v, expected %v", i, got[i], want[i])
		}
		if !got[i].After(ref) {
			t.Errorf("event %d = %v is not strictly after ref %v", i, got[i], ref)
		}
	}
	for i := 1; i < len(got); i++ {
		if d := got[i].Sub(got[i-1]); d != testPeriod {
			t.Errorf("spacing between events %d and %d = %v, expected exactly one period %v", i-1, i, d, testPeriod)
		}
	}
}

func TestNextEventStrictlyAfter(t *testing.T) {
	s := mustSystem(t)

	// Reference exactly on an event midpoint: next must be the following one.
	ref := testEpoch.Add(5 * testPeriod)
	got := s.NextEventTimes(ref, 1)
	if want := testEpoch.Add(6 * testPeriod); !got[0].Equal(want) {
		t.Errorf("next after exact midpoint = %v, expected %v", got[0], want)
	}

	// Reference before the epoch.
	got = s.NextEventTimes(testEpoch.Add(-testPeriod/2), 1)
	if !got[0].Equal(testEpoch) {
		t.Errorf("next before epoch = %v, expected epoch %v", got[0], testEpoch)
	}
}

func TestPreviousEventTimes(t *testing.T) {
	s := mustSystem(t)

	ref := testEpoch.Add(3*testPeriod + time.Hour)
	got := s.PreviousEventTimes(ref, 2)
	want := []time.Time{
		testEpoch.Add(3 * testPeriod),
		testEpoch.Add(2 * testPeriod),
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("event %d = %v, expected %v", i, got[i], want[i])
		}
		if !got[i].Before(ref) {
			t.Errorf("event %d = %v is not strictly before ref", i, got[i])
		}
	}

	// Reference exactly on a midpoint: previous must exclude it.
	got = s.PreviousEventTimes(testEpoch.Add(3*testPeriod), 1)
	if want := testEpoch.Add(2 * testPeriod); !got[0].Equal(want) {
		t.Errorf("previous from exact midpoint = %v, expected %v", got[0], want)
	}
}

func TestNearestEventTime(t *testing.T) {
	s := mustSystem(t)

	justAfter := testEpoch.Add(2*testPeriod + time.Minute)
	if got := s.NearestEventTime(justAfter); !got.Equal(testEpoch.Add(2 * testPeriod)) {
		t.Errorf("nearest just after midpoint = %v, expected the midpoint itself", got)
	}

	nearNext := testEpoch.Add(2*testPeriod + testPeriod - time.Minute)
	if got := s.NearestEventTime(nearNext); !got.Equal(testEpoch.Add(3 * testPeriod)) {
		t.Errorf("nearest just before next midpoint = %v, expected next midpoint", got)
	}
}

func TestNoDriftOverThousandsOfPeriods(t *testing.T) {
	s := mustSystem(t)

	// Walk ~30 years of orbits one call at a time and compare against the
	// closed-form epoch + k*period value.
	ref := testEpoch
	for k := int64(1); k <= 5000; k++ {
		next := s.NextEventTimes(ref, 1)[0]
		want := testEpoch.Add(time.Duration(k) * testPeriod)
		if !next.Equal(want) {
			t.Fatalf("cycle %d drifted: got %v, expected %v", k, next, want)
		}
		ref = next
	}
}

func TestSecondaryEventTimes(t *testing.T) {
	s := mustSystem(t)

	got := s.NextSecondaryEventTimes(testEpoch, 1)
	if want := testEpoch.Add(testPeriod / 2); !got[0].Equal(want) {
		t.Errorf("first secondary = %v, expected half a period after epoch %v", got[0], want)
	}
}

func TestIngressEgressWindows(t *testing.T) {
	s := mustSystem(t)

	wins := s.NextPrimaryIngressEgress(testEpoch.Add(time.Hour), 2)
	if len(wins) != 2 {
		t.Fatalf("got %d windows, expected 2", len(wins))
	}
	mid := testEpoch.Add(testPeriod)
	if !wins[0].Ingress.Equal(mid.Add(-testDuration / 2)) {
		t.Errorf("ingress = %v, expected midpoint minus half duration", wins[0].Ingress)
	}
	if !wins[0].Egress.Equal(mid.Add(testDuration / 2)) {
		t.Errorf("egress = %v, expected midpoint plus half duration", wins[0].Egress)
	}
	if d := wins[0].Egress.Sub(wins[0].Ingress); d != testDuration {
		t.Errorf("window length = %v, expected duration %v", d, testDuration)
	}
}

func TestEclipsePhasePredicates(t *testing.T) {
	s := mustSystem(t)

	tests := []struct {
		name         string
		t            time.Time
		inPrimary    bool
		inSecondary  bool
		outOfEclipse bool
	}{
		{"primary midpoint", testEpoch.Add(7 * testPeriod), true, false, false},
		{"just inside primary egress", testEpoch.Add(testDuration/2 - time.Second), true, false, false},
		{"just outside primary egress", testEpoch.Add(testDuration/2 + time.Second), false, false, true},
		{"secondary midpoint", testEpoch.Add(testPeriod / 2), false, true, false},
		{"quadrature", testEpoch.Add(testPeriod / 4), false, false, true},
		{"before epoch, in primary", testEpoch.Add(-3 * testPeriod), true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.InPrimaryEclipse(tt.t); got != tt.inPrimary {
				t.Errorf("InPrimaryEclipse = %v, expected %v", got, tt.inPrimary)
			}
			if got := s.InSecondaryEclipse(tt.t); got != tt.inSecondary {
				t.Errorf("InSecondaryEclipse = %v, expected %v", got, tt.inSecondary)
			}
			if got := s.OutOfEclipse(tt.t); got != tt.outOfEclipse {
				t.Errorf("OutOfEclipse = %v, expected %v", got, tt.outOfEclipse)
			}
		})
	}
}
