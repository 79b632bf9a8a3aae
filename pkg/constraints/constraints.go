// Package constraints defines the observability rules evaluated over
// (observer, target, time) triples. Every constraint is a pure function of
// its inputs and its construction-time parameters: no clocks, no caches, so
// a score is reproducible for a given triple. Boolean constraints score
// exactly 0 or 1; continuous constraints score in [0, 1]. Bounds are
// inclusive on both ends.
package constraints

import (
	"context"
	"time"

	"github.com/clearskies/obsplan/pkg/catalog"
	"github.com/clearskies/obsplan/pkg/ephemeris"
	"github.com/clearskies/obsplan/pkg/transit"
)

// Sun altitude thresholds for the standard twilight definitions, degrees.
const (
	CivilTwilightDeg        = -6.0
	NauticalTwilightDeg     = -12.0
	AstronomicalTwilightDeg = -18.0
)

// Constraint scores the observability of a target at one time. New
// constraint kinds are added by implementing this interface; the evaluator
// never switches on concrete types.
type Constraint interface {
	// Name labels the constraint's row in an observability grid.
	Name() string

	// Score returns a value in [0, 1]. A per-sample ephemeris failure is
	// returned as an error wrapping *ephemeris.SampleUnavailableError.
	Score(ctx context.Context, obs *Observer, target catalog.Target, t time.Time) (float64, error)
}

// Altitude requires the target's apparent altitude to lie within
// [MinDeg, MaxDeg], inclusive.
type Altitude struct {
	MinDeg float64
	MaxDeg float64
}

// NewAltitude builds the usual horizon-to-near-zenith altitude window.
func NewAltitude(minDeg, maxDeg float64) Altitude {
	return Altitude{MinDeg: minDeg, MaxDeg: maxDeg}
}

func (c Altitude) Name() string { return "altitude" }

func (c Altitude) Score(ctx context.Context, obs *Observer, target catalog.Target, t time.Time) (float64, error) {
	aa, err := obs.TargetAltAz(ctx, target, t)
	if err != nil {
		return 0, err
	}
	return boolScore(aa.AltitudeDeg >= c.MinDeg && aa.AltitudeDeg <= c.MaxDeg), nil
}

// SoftAltitude scores 1 inside [MinDeg, MaxDeg] and ramps linearly to 0
// over MarginDeg outside either bound, giving a continuous preference
// instead of a hard cut.
type SoftAltitude struct {
	MinDeg    float64
	MaxDeg    float64
	MarginDeg float64
}

func (c SoftAltitude) Name() string { return "soft-altitude" }

func (c SoftAltitude) Score(ctx context.Context, obs *Observer, target catalog.Target, t time.Time) (float64, error) {
	aa, err := obs.TargetAltAz(ctx, target, t)
	if err != nil {
		return 0, err
	}
	alt := aa.AltitudeDeg
	if alt >= c.MinDeg && alt <= c.MaxDeg {
		return 1, nil
	}
	if c.MarginDeg <= 0 {
		return 0, nil
	}
	var overshoot float64
	if alt < c.MinDeg {
		overshoot = c.MinDeg - alt
	} else {
		overshoot = alt - c.MaxDeg
	}
	if overshoot >= c.MarginDeg {
		return 0, nil
	}
	return 1 - overshoot/c.MarginDeg, nil
}

// AtNight requires the sun's altitude to be at or below MaxSunAltitudeDeg.
// The threshold selects the twilight definition in use.
type AtNight struct {
	MaxSunAltitudeDeg float64
}

// AtNightCivil requires the sun below civil twilight (-6 degrees).
func AtNightCivil() AtNight { return AtNight{MaxSunAltitudeDeg: CivilTwilightDeg} }

// AtNightNautical requires the sun below nautical twilight (-12 degrees).
func AtNightNautical() AtNight { return AtNight{MaxSunAltitudeDeg: NauticalTwilightDeg} }

// AtNightAstronomical requires the sun below astronomical twilight (-18 degrees).
func AtNightAstronomical() AtNight { return AtNight{MaxSunAltitudeDeg: AstronomicalTwilightDeg} }

func (c AtNight) Name() string { return "at-night" }

func (c AtNight) Score(ctx context.Context, obs *Observer, _ catalog.Target, t time.Time) (float64, error) {
	sun, err := obs.SunAltAz(ctx, t)
	if err != nil {
		return 0, err
	}
	return boolScore(sun.AltitudeDeg <= c.MaxSunAltitudeDeg), nil
}

// MoonSeparation requires the angular separation between the target and the
// moon to lie within [MinDeg, MaxDeg].
type MoonSeparation struct {
	MinDeg float64
	MaxDeg float64
}

// MinMoonSeparation bounds only the lower side, the common case of keeping
// targets away from the bright moon.
func MinMoonSeparation(minDeg float64) MoonSeparation {
	return MoonSeparation{MinDeg: minDeg, MaxDeg: 180}
}

func (c MoonSeparation) Name() string { return "moon-separation" }

// separationTolDeg absorbs sub-nanodegree rounding from the spherical
// trigonometry round trip so the bounds stay inclusive when the geometry
// sits exactly on a bound.
const separationTolDeg = 1e-9

func (c MoonSeparation) Score(ctx context.Context, obs *Observer, target catalog.Target, t time.Time) (float64, error) {
	moon, err := obs.MoonAltAz(ctx, t)
	if err != nil {
		return 0, err
	}
	tgt, err := obs.TargetAltAz(ctx, target, t)
	if err != nil {
		return 0, err
	}
	sep := ephemeris.Separation(tgt, moon)
	return boolScore(sep >= c.MinDeg-separationTolDeg && sep <= c.MaxDeg+separationTolDeg), nil
}

// MoonIllumination requires the moon's illuminated fraction to lie within
// [Min, Max]. Note this is a property of the moon's phase, entirely distinct
// from MoonSeparation, which measures sky geometry.
type MoonIllumination struct {
	Min float64
	Max float64
}

// MaxMoonIllumination bounds only the upper side, the dark-time request.
func MaxMoonIllumination(max float64) MoonIllumination {
	return MoonIllumination{Min: 0, Max: max}
}

func (c MoonIllumination) Name() string { return "moon-illumination" }

func (c MoonIllumination) Score(ctx context.Context, obs *Observer, _ catalog.Target, t time.Time) (float64, error) {
	k, err := obs.MoonIllumination(ctx, t)
	if err != nil {
		return 0, err
	}
	return boolScore(k >= c.Min && k <= c.Max), nil
}

// PrimaryEclipse scores 1 while the system is inside a primary eclipse
// window, for testing whether predicted events are observable.
type PrimaryEclipse struct {
	System *transit.EclipsingSystem
}

func (c PrimaryEclipse) Name() string { return "primary-eclipse" }

func (c PrimaryEclipse) Score(_ context.Context, _ *Observer, _ catalog.Target, t time.Time) (float64, error) {
	return boolScore(c.System.InPrimaryEclipse(t)), nil
}

// SecondaryEclipse scores 1 while the system is inside a secondary eclipse
// window.
type SecondaryEclipse struct {
	System *transit.EclipsingSystem
}

func (c SecondaryEclipse) Name() string { return "secondary-eclipse" }

func (c SecondaryEclipse) Score(_ context.Context, _ *Observer, _ catalog.Target, t time.Time) (float64, error) {
	return boolScore(c.System.InSecondaryEclipse(t)), nil
}

// Func adapts a closure into a named constraint for one-off custom rules.
type Func struct {
	Label string
	Fn    func(ctx context.Context, obs *Observer, target catalog.Target, t time.Time) (float64, error)
}

func (c Func) Name() string { return c.Label }

func (c Func) Score(ctx context.Context, obs *Observer, target catalog.Target, t time.Time) (float64, error) {
	return c.Fn(ctx, obs, target, t)
}

func boolScore(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}
