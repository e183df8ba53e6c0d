// Package moon implements the low-order lunar model: a truncated series for
// the Moon's ecliptic position and a simple sidereal-time approximation,
// carried all the way through to a refracted topocentric altitude/azimuth.
//
// It is independent of the high-precision path in internal/ephemeris and is
// used to cross-check it.
package moon

import (
	"time"

	"github.com/thurmanmarka/moonglide/internal/horizon"
	"github.com/thurmanmarka/moonglide/internal/sidereal"
	"github.com/thurmanmarka/moonglide/internal/timeutil"
)

// Position is the low-order model's view of the Moon from one site.
type Position struct {
	Ecliptic   Ecliptic
	Equatorial EquatorialDistance

	// GeocentricAltitude is the geometric altitude of the Moon's center as
	// seen from the Earth's center, degrees. Rise/set uses this.
	GeocentricAltitude float64

	// Horizontal is topocentric and includes refraction.
	Horizontal horizon.Horizontal
}

// MeanSiderealDeg returns the linear approximation to Greenwich mean
// sidereal time in degrees at time t.
func MeanSiderealDeg(t time.Time) float64 {
	d := timeutil.DaysSinceJ2000(t)
	return timeutil.Normalize360(280.46061837 + 360.98564736629*d)
}

// ApparentPosition computes the Moon's approximate apparent position at
// geographic location (lat, lon) in degrees at time t.
func ApparentPosition(lat, lon float64, t time.Time) Position {
	d := timeutil.DaysSinceJ2000(t)
	ecl := EclipticApprox(t)
	eq := ecl.Equatorial(d)

	latRad := timeutil.Deg2Rad(lat)
	decRad := timeutil.Deg2Rad(eq.Dec)

	lst := sidereal.LocalDeg(MeanSiderealDeg(t), lon)
	H := timeutil.Deg2Rad(sidereal.HourAngleDeg(lst, eq.RA))

	geo := horizon.Altitude(H, decRad, latRad)

	// Sea-level observer on a spherical Earth.
	Ht, decT := horizon.Topocentric(H, decRad, eq.Distance, horizon.SeaLevelSite(latRad))
	hz := horizon.Transform(Ht, decT, latRad)
	hz.AltitudeDeg += timeutil.ApproxRefraction(hz.AltitudeDeg)

	return Position{
		Ecliptic:           ecl,
		Equatorial:         eq,
		GeocentricAltitude: timeutil.Rad2Deg(geo),
		Horizontal:         hz,
	}
}
