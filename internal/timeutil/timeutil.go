package timeutil

import (
	"math"
	"time"
)

// -----------------------------
// Time relative to J2000
// -----------------------------

// J2000 is the Julian Day of the J2000.0 epoch: 2000-01-01 12:00:00.
const J2000 = 2451545.0

// DaysSinceJ2000 returns the number of (UTC) days since the J2000.0 epoch.
//
// This is an approximation suitable for low/medium-precision astronomy; the
// low-order models feed on it directly and ignore ΔT.
func DaysSinceJ2000(t time.Time) float64 {
	return JulianDay(t) - J2000
}

// JulianDay returns the Julian Day (UT) of t using the Gregorian calendar
// formula (Meeus 7.1). The instant is taken in UTC.
func JulianDay(t time.Time) float64 {
	u := t.UTC()
	year, month, day := u.Date()
	hour := float64(u.Hour()) +
		float64(u.Minute())/60.0 +
		float64(u.Second())/3600.0 +
		float64(u.Nanosecond())/(3600.0*1e9)

	y := year
	m := int(month)

	if m <= 2 {
		y -= 1
		m += 12
	}

	// Floor division so that years before 1 AD stay on the Gregorian grid.
	A := int(math.Floor(float64(y) / 100))
	B := 2 - A + int(math.Floor(float64(A)/4))

	jd := math.Floor(365.25*float64(y+4716)) +
		math.Floor(30.6001*float64(m+1)) +
		float64(day) + float64(B) - 1524.5 +
		hour/24.0

	return jd
}

// JulianCenturies returns Julian centuries since J2000.0 for a Julian Day.
func JulianCenturies(jd float64) float64 {
	return (jd - J2000) / 36525.0
}

// DecimalYear returns t as a fractional year, e.g. 2025.5 for early July.
func DecimalYear(t time.Time) float64 {
	u := t.UTC()
	start := time.Date(u.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	return float64(u.Year()) + u.Sub(start).Seconds()/end.Sub(start).Seconds()
}

// DeltaT returns TT − UT in seconds for a decimal year, using the
// Espenak & Meeus polynomial fits. Outside their fitted ranges it falls back
// to the long-term parabola.
func DeltaT(year float64) float64 {
	switch {
	case year >= 1986 && year < 2005:
		t := year - 2000
		return 63.86 + 0.3345*t - 0.060374*t*t + 0.0017275*t*t*t +
			0.000651814*t*t*t*t + 0.00002373599*t*t*t*t*t
	case year >= 2005 && year < 2050:
		t := year - 2000
		return 62.92 + 0.32217*t + 0.005589*t*t
	case year >= 2050 && year < 2150:
		u := (year - 1820) / 100
		return -20 + 32*u*u - 0.5628*(2150-year)
	default:
		u := (year - 1820) / 100
		return -20 + 32*u*u
	}
}

// JulianEphemerisDay returns the Julian Ephemeris Day (TT) for t: the UT
// Julian Day shifted by ΔT.
func JulianEphemerisDay(t time.Time) float64 {
	return JulianDay(t) + DeltaT(DecimalYear(t))/86400.0
}

// -----------------------------
// Basic degree/radian helpers and trig with degree inputs.
// -----------------------------

func Deg2Rad(d float64) float64 {
	return d * math.Pi / 180.0
}

func Rad2Deg(r float64) float64 {
	return r * 180.0 / math.Pi
}

func CosD(deg float64) float64 {
	return math.Cos(Deg2Rad(deg))
}

// Normalize360 wraps d into [0, 360).
func Normalize360(d float64) float64 {
	d = math.Mod(d, 360.0)
	if d < 0 {
		d += 360.0
	}
	// math.Mod of a tiny negative number plus 360 can round to exactly 360.
	if d >= 360.0 {
		d -= 360.0
	}
	return d
}

// Normalize180 wraps d into (-180, 180].
func Normalize180(d float64) float64 {
	d = Normalize360(d)
	if d > 180.0 {
		d -= 360.0
	}
	return d
}

// NormalizePi wraps r (radians) into (-π, π].
func NormalizePi(r float64) float64 {
	r = math.Mod(r, 2*math.Pi)
	if r <= -math.Pi {
		r += 2 * math.Pi
	} else if r > math.Pi {
		r -= 2 * math.Pi
	}
	return r
}

// Clamp limits v to [lo, hi]. NaN stays NaN.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ApproxRefraction returns an approximation of atmospheric refraction (in
// degrees) at a given geometric altitude altDeg (degrees) under standard
// conditions.
//
// Positive return means "add this to the geometric altitude to get apparent
// altitude". This uses a Saemundsson-style formula:
//
//	R (arcmin) ≈ 1.02 / tan( (alt + 10.3 / (alt + 5.11)) in degrees )
//
// Between -0.5° and -1° the correction is tapered linearly to zero so the
// apparent altitude stays continuous through the horizon. Below -1° there is
// no correction.
func ApproxRefraction(altDeg float64) float64 {
	if altDeg < -1.0 || altDeg > 90.0 {
		return 0
	}

	alt := altDeg
	if alt < -0.5 {
		alt = -0.5
	}

	// Note: (alt + 10.3/(alt+5.11)) is in degrees.
	t := math.Tan(Deg2Rad(alt + 10.3/(alt+5.11)))
	if t <= 0 {
		return 0
	}

	// Result is in arcminutes; convert to degrees.
	r := 1.02 / t / 60.0

	if altDeg < -0.5 {
		r *= (altDeg + 1.0) / 0.5
	}
	return r
}
