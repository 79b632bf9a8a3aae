package observability

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/clearskies/obsplan/pkg/catalog"
	"github.com/clearskies/obsplan/pkg/constraints"
	"github.com/clearskies/obsplan/pkg/ephemeris"
	"github.com/clearskies/obsplan/pkg/timegrid"
)

// scriptedProvider computes target altitude from the sample hour so tests
// get a deterministic rise-and-set profile, and can inject a failure at one
// exact sample time.
type scriptedProvider struct {
	failAt time.Time
}

func altitudeFor(t time.Time) float64 {
	// Rises through the evening: hour 0 -> -30, hour 12 -> +30.
	return float64(t.Hour())*5 - 30
}

func (p *scriptedProvider) TargetAltAz(_ context.Context, _ ephemeris.Location, t time.Time, _ ephemeris.Equatorial) (ephemeris.AltAz, error) {
	if !p.failAt.IsZero() && t.Equal(p.failAt) {
		return ephemeris.AltAz{}, &ephemeris.SampleUnavailableError{What: "target", Time: t, Err: errors.New("lookup failed")}
	}
	return ephemeris.AltAz{AltitudeDeg: altitudeFor(t), AzimuthDeg: 180}, nil
}

func (p *scriptedProvider) SunAltAz(_ context.Context, _ ephemeris.Location, t time.Time) (ephemeris.AltAz, error) {
	// Sun mirrors the target: up in the morning hours, below -18 after hour 6.
	return ephemeris.AltAz{AltitudeDeg: 30 - float64(t.Hour())*10, AzimuthDeg: 90}, nil
}

func (p *scriptedProvider) MoonAltAz(context.Context, ephemeris.Location, time.Time) (ephemeris.AltAz, error) {
	return ephemeris.AltAz{AltitudeDeg: -10, AzimuthDeg: 270}, nil
}

func (p *scriptedProvider) MoonIllumination(context.Context, time.Time) (float64, error) {
	return 0.12, nil
}

var evalTarget = catalog.NewTarget("test target", 150, -20)

func testObserver(p ephemeris.Provider) *constraints.Observer {
	return constraints.NewObserver("site", ephemeris.Location{LatitudeDeg: 31.96, LongitudeDeg: -111.6}, p)
}

func hourlyTimes(n int) []time.Time {
	start := time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)
	g, err := timegrid.New(start, start.Add(time.Duration(n-1)*time.Hour), time.Hour)
	if err != nil {
		panic(err)
	}
	return g.Times()
}

func TestGridLayoutAndScores(t *testing.T) {
	e := New()
	obs := testObserver(&scriptedProvider{})
	cs := []constraints.Constraint{
		constraints.NewAltitude(20, 85),
		constraints.AtNightAstronomical(),
	}
	times := hourlyTimes(13) // hours 0..12

	grid, err := e.Grid(context.Background(), cs, obs, evalTarget, times)
	if err != nil {
		t.Fatalf("Grid returned error: %v", err)
	}

	if got := grid.ConstraintNames(); !reflect.DeepEqual(got, []string{"altitude", "at-night"}) {
		t.Errorf("ConstraintNames = %v", got)
	}
	if grid.TargetName() != "test target" {
		t.Errorf("TargetName = %q", grid.TargetName())
	}
	if len(grid.Rows()) != 2 || len(grid.Rows()[0]) != 13 {
		t.Fatalf("grid shape = %dx%d, expected 2x13", len(grid.Rows()), len(grid.Rows()[0]))
	}

	// Altitude crosses 20 degrees at hour 10 (5*10-30 = 20, inclusive).
	for j, tm := range times {
		want := 0.0
		if altitudeFor(tm) >= 20 {
			want = 1.0
		}
		c := grid.Cell(0, j)
		if !c.Known || c.Score != want {
			t.Errorf("altitude cell %d = %+v, expected score %v", j, c, want)
		}
	}

	// Sun drops below -18 after hour 4 (30-10h <= -18 from hour 5 on).
	for j, tm := range times {
		want := 0.0
		if 30-float64(tm.Hour())*10 <= -18 {
			want = 1.0
		}
		c := grid.Cell(1, j)
		if !c.Known || c.Score != want {
			t.Errorf("at-night cell %d = %+v, expected score %v", j, c, want)
		}
	}
}

func TestTargetGridANDReduction(t *testing.T) {
	e := New()
	obs := testObserver(&scriptedProvider{})
	cs := []constraints.Constraint{
		constraints.NewAltitude(20, 85),  // true from hour 10
		constraints.AtNightAstronomical(), // true from hour 5
	}
	times := hourlyTimes(13)

	grid, err := e.TargetGrid(context.Background(), cs, obs, []catalog.Target{evalTarget}, times)
	if err != nil {
		t.Fatalf("TargetGrid returned error: %v", err)
	}

	for j, tm := range times {
		want := 0.0
		if altitudeFor(tm) >= 20 && 30-float64(tm.Hour())*10 <= -18 {
			want = 1.0
		}
		c := grid.Cell(0, j)
		if !c.Known || c.Score != want {
			t.Errorf("combined cell %d = %+v, expected score %v", j, c, want)
		}
	}
}

func TestIsObservable(t *testing.T) {
	e := New()
	obs := testObserver(&scriptedProvider{})
	times := hourlyTimes(13)

	// Altitude and darkness overlap from hour 10 on.
	ok, err := e.IsObservable(context.Background(), []constraints.Constraint{
		constraints.NewAltitude(20, 85),
		constraints.AtNightAstronomical(),
	}, obs, evalTarget, times)
	if err != nil {
		t.Fatalf("IsObservable returned error: %v", err)
	}
	if !ok {
		t.Error("expected target to be observable")
	}

	// An impossible altitude band is never satisfied.
	ok, err = e.IsObservable(context.Background(), []constraints.Constraint{
		constraints.NewAltitude(80, 85),
	}, obs, evalTarget, times)
	if err != nil {
		t.Fatalf("IsObservable returned error: %v", err)
	}
	if ok {
		t.Error("expected target to be unobservable for 80-85 degree band")
	}
}

func TestAlwaysObservable(t *testing.T) {
	e := New()
	times := hourlyTimes(13)
	obs := testObserver(&scriptedProvider{})

	// The full sky band is satisfied at every sample.
	always, err := e.AlwaysObservable(context.Background(), []constraints.Constraint{
		constraints.NewAltitude(-90, 90),
	}, obs, evalTarget, times)
	if err != nil {
		t.Fatalf("AlwaysObservable returned error: %v", err)
	}
	if !always {
		t.Error("expected every sample to satisfy the open altitude band")
	}

	// Altitude only reaches 20 degrees at hour 10, so early samples fail.
	always, err = e.AlwaysObservable(context.Background(), []constraints.Constraint{
		constraints.NewAltitude(20, 85),
	}, obs, evalTarget, times)
	if err != nil {
		t.Fatalf("AlwaysObservable returned error: %v", err)
	}
	if always {
		t.Error("expected rising target to fail the 20-85 degree band at early hours")
	}

	// An unknown cell counts as unsatisfied in non-strict mode.
	failing := testObserver(&scriptedProvider{failAt: times[3]})
	always, err = e.AlwaysObservable(context.Background(), []constraints.Constraint{
		constraints.NewAltitude(-90, 90),
	}, failing, evalTarget, times)
	if err != nil {
		t.Fatalf("AlwaysObservable returned error: %v", err)
	}
	if always {
		t.Error("expected an unknown sample to break always-observable")
	}
}

func TestIsEventObservable(t *testing.T) {
	e := New()
	obs := testObserver(&scriptedProvider{})

	base := time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)
	events := []time.Time{
		base.Add(2 * time.Hour),  // altitude -20: not observable
		base.Add(11 * time.Hour), // altitude 25, dark: observable
		base.Add(3 * time.Hour),  // altitude -15: not observable
	}

	got, err := e.IsEventObservable(context.Background(), []constraints.Constraint{
		constraints.NewAltitude(20, 85),
		constraints.AtNightAstronomical(),
	}, obs, evalTarget, events)
	if err != nil {
		t.Fatalf("IsEventObservable returned error: %v", err)
	}
	want := []bool{false, true, false}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("IsEventObservable = %v, expected %v", got, want)
	}
}

func TestFractionOfTimeObservable(t *testing.T) {
	e := New()
	obs := testObserver(&scriptedProvider{})
	times := hourlyTimes(12) // hours 0..11

	// Altitude >= 20 holds at hours 10 and 11 only: 2 of 12 samples.
	frac, err := e.FractionOfTimeObservable(context.Background(), []constraints.Constraint{
		constraints.NewAltitude(20, 85),
	}, obs, evalTarget, times)
	if err != nil {
		t.Fatalf("FractionOfTimeObservable returned error: %v", err)
	}
	if want := 2.0 / 12.0; frac != want {
		t.Errorf("fraction = %v, expected %v", frac, want)
	}
}

func TestSingleSampleFailureNonStrict(t *testing.T) {
	times := hourlyTimes(13)
	failAt := times[7]

	e := New()
	obs := testObserver(&scriptedProvider{failAt: failAt})
	cs := []constraints.Constraint{constraints.NewAltitude(20, 85)}

	grid, err := e.Grid(context.Background(), cs, obs, evalTarget, times)
	if err != nil {
		t.Fatalf("Grid returned error: %v", err)
	}

	unknown := 0
	for j := range times {
		c := grid.Cell(0, j)
		if !c.Known {
			unknown++
			if j != 7 {
				t.Errorf("unexpected unknown cell at column %d", j)
			}
			if c.Score != 0 {
				t.Errorf("unknown cell carries score %v, expected 0", c.Score)
			}
		}
	}
	if unknown != 1 {
		t.Errorf("unknown cells = %d, expected exactly 1", unknown)
	}
}

func TestSingleSampleFailureStrict(t *testing.T) {
	times := hourlyTimes(13)

	e := &Evaluator{Strict: true}
	obs := testObserver(&scriptedProvider{failAt: times[7]})
	cs := []constraints.Constraint{constraints.NewAltitude(20, 85)}

	grid, err := e.Grid(context.Background(), cs, obs, evalTarget, times)
	if err == nil {
		t.Fatal("expected strict evaluation to abort")
	}
	if grid != nil {
		t.Error("strict abort must not return a partial grid")
	}
	var aborted *StrictEvaluationAbortedError
	if !errors.As(err, &aborted) {
		t.Fatalf("expected *StrictEvaluationAbortedError, got %T: %v", err, err)
	}
	var sample *ephemeris.SampleUnavailableError
	if !errors.As(err, &sample) {
		t.Errorf("expected wrapped *ephemeris.SampleUnavailableError, got %v", err)
	}
}

func TestConcurrentMatchesSequential(t *testing.T) {
	obs := testObserver(&scriptedProvider{})
	cs := []constraints.Constraint{
		constraints.NewAltitude(20, 85),
		constraints.AtNightAstronomical(),
		constraints.MinMoonSeparation(15),
		constraints.MaxMoonIllumination(0.3),
	}
	times := hourlyTimes(24)
	targets := []catalog.Target{
		evalTarget,
		catalog.NewTarget("second target", 80, 45),
	}

	sequential := &Evaluator{Workers: 1}
	concurrent := &Evaluator{Workers: 16}

	seqGrid, err := sequential.TargetGrid(context.Background(), cs, obs, targets, times)
	if err != nil {
		t.Fatalf("sequential TargetGrid returned error: %v", err)
	}
	conGrid, err := concurrent.TargetGrid(context.Background(), cs, obs, targets, times)
	if err != nil {
		t.Fatalf("concurrent TargetGrid returned error: %v", err)
	}

	if !reflect.DeepEqual(seqGrid.Rows(), conGrid.Rows()) {
		t.Error("concurrent and sequential grids differ")
	}
	if !reflect.DeepEqual(seqGrid.TargetNames(), conGrid.TargetNames()) {
		t.Error("target name ordering differs")
	}
}

func TestEvaluationCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := New()
	obs := testObserver(&scriptedProvider{})
	_, err := e.Grid(ctx, []constraints.Constraint{constraints.NewAltitude(0, 90)}, obs, evalTarget, hourlyTimes(5))
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func ExampleEvaluator_IsEventObservable() {
	obs := constraints.NewObserver("kitt peak",
		ephemeris.Location{LatitudeDeg: 31.96, LongitudeDeg: -111.6, ElevationM: 2096},
		ephemeris.NewMeeus())

	events := []time.Time{
		time.Date(2023, 10, 2, 4, 30, 0, 0, time.UTC),
		time.Date(2023, 10, 2, 16, 30, 0, 0, time.UTC),
	}
	verdicts, _ := New().IsEventObservable(context.Background(), []constraints.Constraint{
		constraints.AtNightAstronomical(),
	}, obs, catalog.NewTarget("HD 189733", 300.18, 22.71), events)

	fmt.Println(len(verdicts))
	// Output: 2
}
