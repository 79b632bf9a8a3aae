package ephemeris

import (
	"context"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// Meeus computes sun and moon geometry locally from truncated series out of
// Meeus, "Astronomical Algorithms". It performs no I/O; the context is only
// consulted for cancellation so the provider stays substitutable with
// network-backed implementations.
type Meeus struct{}

// NewMeeus returns a locally-computed ephemeris provider.
func NewMeeus() *Meeus { return &Meeus{} }

func (m *Meeus) TargetAltAz(ctx context.Context, loc Location, t time.Time, coord Equatorial) (AltAz, error) {
	if err := ctx.Err(); err != nil {
		return AltAz{}, &SampleUnavailableError{What: "target", Time: t, Err: err}
	}
	jd := julian.TimeToJD(t.UTC())
	return equatorialToHorizontal(jd, loc, degToRad(coord.RADeg), degToRad(coord.DecDeg)), nil
}

func (m *Meeus) SunAltAz(ctx context.Context, loc Location, t time.Time) (AltAz, error) {
	if err := ctx.Err(); err != nil {
		return AltAz{}, &SampleUnavailableError{What: "sun", Time: t, Err: err}
	}
	jd := julian.TimeToJD(t.UTC())
	T := julianCenturies(jd)

	ra, dec := eclipticToEquatorial(sunEclipticLongitude(T), 0, obliquity(T))
	return equatorialToHorizontal(jd, loc, ra, dec), nil
}

func (m *Meeus) MoonAltAz(ctx context.Context, loc Location, t time.Time) (AltAz, error) {
	if err := ctx.Err(); err != nil {
		return AltAz{}, &SampleUnavailableError{What: "moon", Time: t, Err: err}
	}
	jd := julian.TimeToJD(t.UTC())
	T := julianCenturies(jd)

	ra, dec := eclipticToEquatorial(moonEclipticLongitude(T), moonEclipticLatitude(T), obliquity(T))
	return equatorialToHorizontal(jd, loc, ra, dec), nil
}

// MoonIllumination returns the illuminated fraction of the moon's disk,
// 0 at new moon and 1 at full moon. The phase angle is approximated as the
// supplement of the sun-moon elongation.
func (m *Meeus) MoonIllumination(ctx context.Context, t time.Time) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, &SampleUnavailableError{What: "moon illumination", Time: t, Err: err}
	}
	jd := julian.TimeToJD(t.UTC())
	T := julianCenturies(jd)

	raSun, decSun := eclipticToEquatorial(sunEclipticLongitude(T), 0, obliquity(T))
	raMoon, decMoon := eclipticToEquatorial(moonEclipticLongitude(T), moonEclipticLatitude(T), obliquity(T))

	// Elongation via spherical law of cosines, phase angle i ≈ π - E.
	cosE := sin(decMoon)*sin(decSun) + cos(decMoon)*cos(decSun)*cos(raMoon-raSun)
	E := acosClamped(cosE)
	k := (1 - math.Cos(E)) / 2
	return k, nil
}

// equatorialToHorizontal converts an equatorial direction (radians) to
// apparent alt/az for the site at the given Julian Day, applying refraction
// when the site carries atmosphere parameters.
func equatorialToHorizontal(jd float64, loc Location, ra, dec float64) AltAz {
	lst := localSiderealTime(jd, loc.LongitudeDeg)
	H := lst - ra // hour angle
	phi := degToRad(loc.LatitudeDeg)

	sinAlt := sin(phi)*sin(dec) + cos(phi)*cos(dec)*cos(H)
	alt := math.Asin(clamp(sinAlt))

	// Azimuth measured from north toward east.
	az := math.Atan2(sin(H), cos(H)*sin(phi)-math.Tan(dec)*cos(phi)) + math.Pi
	az = normalizeRadians(az)

	altDeg := radToDeg(alt)
	altDeg += refractionDeg(altDeg, loc.PressureMb, loc.TemperatureC)

	return AltAz{AltitudeDeg: altDeg, AzimuthDeg: radToDeg(az)}
}

// refractionDeg returns the Bennett refraction correction in degrees for an
// unrefracted altitude, scaled for station pressure and temperature. Zero
// pressure disables the correction; altitudes far below the horizon are not
// corrected since the formula diverges there.
func refractionDeg(altDeg, pressureMb, temperatureC float64) float64 {
	if pressureMb <= 0 || altDeg < -1 {
		return 0
	}
	rArcmin := 1.02 / math.Tan(degToRad(altDeg+10.3/(altDeg+5.11)))
	rArcmin *= (pressureMb / 1010.0) * (283.0 / (273.0 + temperatureC))
	return rArcmin / 60.0
}

// julianCenturies returns Julian centuries since J2000.0
func julianCenturies(jd float64) float64 {
	return (jd - 2451545.0) / 36525.0
}

// sunEclipticLongitude computes the Sun's ecliptic longitude in radians
func sunEclipticLongitude(T float64) float64 {
	// Mean longitude
	L0 := 280.46646 + 36000.76983*T + 0.0003032*T*T

	// Mean anomaly
	M := 357.52911 + 35999.05029*T - 0.0001537*T*T
	Mrad := degToRad(normalizeDegrees(M))

	// Equation of center
	C := (1.914602-0.004817*T-0.000014*T*T)*math.Sin(Mrad) +
		(0.019993-0.000101*T)*math.Sin(2*Mrad) +
		0.000289*math.Sin(3*Mrad)

	return degToRad(normalizeDegrees(L0 + C))
}

// moonEclipticLongitude computes the Moon's ecliptic longitude in radians
func moonEclipticLongitude(T float64) float64 {
	// Mean longitude
	L := 218.3164477 +
		481267.88123421*T -
		0.0015786*T*T +
		T*T*T/538841 -
		T*T*T*T/65194000

	// Moon mean elongation
	D := 297.8501921 +
		445267.1114034*T -
		0.0018819*T*T +
		T*T*T/545868 -
		T*T*T*T/113065000

	// Moon mean anomaly
	Mp := 134.9633964 +
		477198.8675055*T +
		0.0087414*T*T +
		T*T*T/69699 -
		T*T*T*T/14712000

	Drad := degToRad(normalizeDegrees(D))
	Mprad := degToRad(normalizeDegrees(Mp))

	// Longitude correction (dominant terms)
	lambda := L +
		6.289*math.Sin(Mprad) +
		1.274*math.Sin(2*Drad-Mprad) +
		0.658*math.Sin(2*Drad) +
		0.214*math.Sin(2*Mprad) +
		0.110*math.Sin(Drad)

	return degToRad(normalizeDegrees(lambda))
}

// moonEclipticLatitude computes the Moon's ecliptic latitude in radians.
// Uses the dominant terms from Meeus Ch. 47.
func moonEclipticLatitude(T float64) float64 {
	// Argument of latitude F
	F := 93.2720950 +
		483202.0175233*T -
		0.0036539*T*T -
		T*T*T/3526000 +
		T*T*T*T/863310000

	D := 297.8501921 +
		445267.1114034*T -
		0.0018819*T*T +
		T*T*T/545868 -
		T*T*T*T/113065000

	Mp := 134.9633964 +
		477198.8675055*T +
		0.0087414*T*T +
		T*T*T/69699 -
		T*T*T*T/14712000

	Frad := degToRad(normalizeDegrees(F))
	Drad := degToRad(normalizeDegrees(D))
	Mprad := degToRad(normalizeDegrees(Mp))

	// Latitude (dominant terms from Meeus Table 47.B)
	beta := 5.128*math.Sin(Frad) +
		0.2806*math.Sin(Mprad+Frad) +
		0.2777*math.Sin(Mprad-Frad) +
		0.1732*math.Sin(2*Drad-Frad)

	return degToRad(beta)
}

// obliquity computes the mean obliquity of the ecliptic in radians (IAU formula)
func obliquity(T float64) float64 {
	return degToRad(23.439291111 - 0.013004167*T - 0.00000164*T*T + 0.000000504*T*T*T)
}

// eclipticToEquatorial converts ecliptic coordinates (radians) to equatorial
// right ascension and declination (radians) for obliquity eps.
func eclipticToEquatorial(lambda, beta, eps float64) (ra, dec float64) {
	sinDec := sin(beta)*cos(eps) + cos(beta)*sin(eps)*sin(lambda)
	dec = math.Asin(clamp(sinDec))

	y := sin(lambda)*cos(eps) - math.Tan(beta)*sin(eps)
	x := cos(lambda)
	ra = math.Atan2(y, x)
	if ra < 0 {
		ra += 2 * math.Pi
	}
	return ra, dec
}

// greenwichMeanSiderealTime computes GMST in degrees for a given Julian Day.
// Uses the IAU 1982 model (Meeus eq. 12.4).
func greenwichMeanSiderealTime(jd float64) float64 {
	// Julian day at preceding midnight
	jd0 := math.Floor(jd-0.5) + 0.5
	S := jd0 - 2451545.0
	T := S / 36525.0

	// GMST at midnight in hours
	gmst := 6.697374558 + 2400.0513369*T + 0.0000258622*T*T - 1.7222e-9*T*T*T

	// Hours elapsed since midnight UT
	ut := (jd - jd0) * 24.0
	gmst += 1.00273790935 * ut

	gmst = math.Mod(gmst, 24)
	if gmst < 0 {
		gmst += 24
	}
	return gmst * 15.0 // hours to degrees
}

// localSiderealTime computes the local sidereal time in radians
func localSiderealTime(jd, lonDeg float64) float64 {
	gmstDeg := greenwichMeanSiderealTime(jd)
	return degToRad(normalizeDegrees(gmstDeg + lonDeg))
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180.0 }
func radToDeg(rad float64) float64 { return rad * 180.0 / math.Pi }

func sin(x float64) float64 { return math.Sin(x) }
func cos(x float64) float64 { return math.Cos(x) }

// normalizeDegrees wraps an angle to the range [0, 360)
func normalizeDegrees(angle float64) float64 {
	angle = math.Mod(angle, 360)
	if angle < 0 {
		angle += 360
	}
	return angle
}

// normalizeRadians wraps an angle in radians to the range [0, 2π)
func normalizeRadians(angle float64) float64 {
	twoPi := 2 * math.Pi
	angle = math.Mod(angle, twoPi)
	if angle < 0 {
		angle += twoPi
	}
	return angle
}

func clamp(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

func acosClamped(x float64) float64 { return math.Acos(clamp(x)) }
