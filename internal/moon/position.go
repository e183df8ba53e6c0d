package moon

import (
	"math"
	"time"

	"github.com/thurmanmarka/moonglide/internal/timeutil"
)

// Ecliptic holds the Moon's geocentric ecliptic coordinates in degrees and
// its distance from the Earth's center.
type Ecliptic struct {
	Lon        float64 // ecliptic longitude λ, degrees [0, 360)
	Lat        float64 // ecliptic latitude β, degrees
	DistanceKm float64 // Earth–Moon distance Δ, km
}

// EquatorialDistance represents equatorial coordinates in degrees plus the
// geocentric distance. RA is in degrees (0–360) instead of hours to stay
// consistent with internal math helpers.
type EquatorialDistance struct {
	RA       float64 // degrees
	Dec      float64 // degrees
	Distance float64 // km
}

// EclipticApprox returns the Moon's approximate geocentric ecliptic position
// at time t.
//
// This is a medium-precision model using a small set of dominant periodic terms
// in ecliptic longitude, latitude and distance. Good to a few tenths of a
// degree, which is plenty for pointing but not ephemeris-grade.
//
// Fundamental arguments (deg/day from J2000.0):
//
//	L'  = mean longitude of the Moon
//	M   = mean anomaly of the Sun
//	Mm  = mean anomaly of the Moon
//	D   = mean elongation of the Moon from the Sun
//	F   = argument of latitude of the Moon
func EclipticApprox(t time.Time) Ecliptic {
	d := timeutil.DaysSinceJ2000(t)

	Lr := timeutil.Deg2Rad(timeutil.Normalize360(218.3164477 + 13.17639648*d))
	Mr := timeutil.Deg2Rad(timeutil.Normalize360(357.5291092 + 0.98560028*d))
	Mmr := timeutil.Deg2Rad(timeutil.Normalize360(134.9633964 + 13.06499295*d))
	Dr := timeutil.Deg2Rad(timeutil.Normalize360(297.8501921 + 12.19074912*d))
	Fr := timeutil.Deg2Rad(timeutil.Normalize360(93.2720950 + 13.22935024*d))

	// λ ≈ L' + 6.289 sin(Mm) + 1.274 sin(2D − Mm)
	//      + 0.658 sin(2D) + 0.214 sin(2Mm) − 0.186 sin(M)
	//      − 0.114 sin(2F)
	lon := Lr +
		timeutil.Deg2Rad(6.289)*math.Sin(Mmr) +
		timeutil.Deg2Rad(1.274)*math.Sin(2*Dr-Mmr) +
		timeutil.Deg2Rad(0.658)*math.Sin(2*Dr) +
		timeutil.Deg2Rad(0.214)*math.Sin(2*Mmr) -
		timeutil.Deg2Rad(0.186)*math.Sin(Mr) -
		timeutil.Deg2Rad(0.114)*math.Sin(2*Fr)

	// β ≈ 5.128 sin(F) + 0.280 sin(Mm + F)
	//      + 0.277 sin(Mm − F) + 0.173 sin(2D − F)
	lat := timeutil.Deg2Rad(5.128)*math.Sin(Fr) +
		timeutil.Deg2Rad(0.280)*math.Sin(Mmr+Fr) +
		timeutil.Deg2Rad(0.277)*math.Sin(Mmr-Fr) +
		timeutil.Deg2Rad(0.173)*math.Sin(2*Dr-Fr)

	// Δ from the five largest distance terms.
	delta := 385000.56 -
		20905.0*math.Cos(Mmr) -
		3699.0*math.Cos(2*Dr-Mmr) -
		2956.0*math.Cos(2*Dr) -
		570.0*math.Cos(2*Mmr) -
		246.0*math.Cos(2*Dr+Mmr)

	return Ecliptic{
		Lon:        timeutil.Normalize360(timeutil.Rad2Deg(lon)),
		Lat:        timeutil.Rad2Deg(lat),
		DistanceKm: delta,
	}
}

// GeocentricEquatorialApprox returns an approximate geocentric RA/Dec and
// distance for the Moon at time t.
func GeocentricEquatorialApprox(t time.Time) EquatorialDistance {
	return EclipticApprox(t).Equatorial(timeutil.DaysSinceJ2000(t))
}

// Equatorial rotates the ecliptic position into RA/Dec using the mean
// obliquity for d days since J2000.0.
func (e Ecliptic) Equatorial(d float64) EquatorialDistance {
	// Mean obliquity of the ecliptic ε, linear model (−0.013°/century).
	eps := timeutil.Deg2Rad(23.439291 - 0.00000036*d)

	lon := timeutil.Deg2Rad(e.Lon)
	lat := timeutil.Deg2Rad(e.Lat)

	x := math.Cos(lat) * math.Cos(lon)
	y := math.Cos(lat) * math.Sin(lon)
	z := math.Sin(lat)

	yEq := y*math.Cos(eps) - z*math.Sin(eps)
	zEq := y*math.Sin(eps) + z*math.Cos(eps)

	ra := math.Atan2(yEq, x)
	if ra < 0 {
		ra += 2 * math.Pi
	}
	dec := math.Asin(timeutil.Clamp(zEq, -1, 1))

	return EquatorialDistance{
		RA:       timeutil.Normalize360(timeutil.Rad2Deg(ra)),
		Dec:      timeutil.Rad2Deg(dec),
		Distance: e.DistanceKm,
	}
}
