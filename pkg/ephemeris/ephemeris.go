// Package ephemeris provides apparent sun, moon, and fixed-target geometry
// for an observing site. Positions are computed from truncated Meeus series
// (ecliptic longitudes, GMST, equatorial to horizontal conversion) and are
// typically accurate to a few arcminutes, which is sufficient for
// observability planning. Refraction uses the Bennett formula scaled by the
// site's pressure and temperature.
package ephemeris

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Location is an observing site: geodetic coordinates plus the local
// atmosphere parameters used for refraction correction. Immutable once
// constructed.
type Location struct {
	LatitudeDeg  float64 // geodetic latitude, north positive
	LongitudeDeg float64 // east positive
	ElevationM   float64 // meters above sea level
	PressureMb   float64 // station pressure in millibars; 0 disables refraction
	TemperatureC float64 // ambient temperature in Celsius
}

// Equatorial is a fixed celestial direction.
type Equatorial struct {
	RADeg      float64 // right ascension in degrees [0, 360)
	DecDeg     float64 // declination in degrees [-90, +90]
	DistanceKm float64 // optional; 0 when unknown or not applicable
}

// AltAz is an apparent topocentric direction.
type AltAz struct {
	AltitudeDeg float64 // degrees above the local horizon
	AzimuthDeg  float64 // degrees east of north [0, 360)
}

// Provider supplies apparent geometry for constraint evaluation. A provider
// must be a pure function of its arguments: no internal clock, no cached
// per-call state. Implementations may be network-backed, so every method
// takes a context and may fail per-sample.
type Provider interface {
	TargetAltAz(ctx context.Context, loc Location, t time.Time, coord Equatorial) (AltAz, error)
	SunAltAz(ctx context.Context, loc Location, t time.Time) (AltAz, error)
	MoonAltAz(ctx context.Context, loc Location, t time.Time) (AltAz, error)
	MoonIllumination(ctx context.Context, t time.Time) (float64, error)
}

// SampleUnavailableError reports that geometry for a single (time, target)
// sample could not be computed or fetched. Grid evaluation recovers from it
// per-cell unless strict mode is requested.
type SampleUnavailableError struct {
	What string    // what was being computed, e.g. a target name or "moon"
	Time time.Time // the sample time
	Err  error     // underlying cause
}

func (e *SampleUnavailableError) Error() string {
	return fmt.Sprintf("ephemeris sample unavailable for %s at %s: %v", e.What, e.Time.Format(time.RFC3339), e.Err)
}

func (e *SampleUnavailableError) Unwrap() error { return e.Err }

// Separation returns the angular separation between two apparent directions
// in degrees. The Vincenty arctangent form stays numerically stable at both
// very small and near-antipodal separations, where an arccosine of the
// spherical law of cosines loses precision.
func Separation(a, b AltAz) float64 {
	alt1 := degToRad(a.AltitudeDeg)
	alt2 := degToRad(b.AltitudeDeg)
	dAz := degToRad(a.AzimuthDeg - b.AzimuthDeg)

	x := cos(alt2) * sin(dAz)
	y := cos(alt1)*sin(alt2) - sin(alt1)*cos(alt2)*cos(dAz)
	z := sin(alt1)*sin(alt2) + cos(alt1)*cos(alt2)*cos(dAz)
	return radToDeg(math.Atan2(math.Hypot(x, y), z))
}
