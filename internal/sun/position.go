// Package sun has the low-order solar position used by the approximate
// lunar model for phase.
package sun

import (
	"math"
	"time"

	"github.com/thurmanmarka/moonglide/internal/timeutil"
)

// AUKm is the astronomical unit in km.
const AUKm = 149597870.7

// Ecliptic is the Sun's geocentric ecliptic longitude and distance.
type Ecliptic struct {
	Lon        float64 // ecliptic longitude, degrees [0, 360)
	DistanceKm float64 // Earth–Sun distance, km
}

// EclipticApprox returns the Sun's approximate ecliptic longitude and
// distance at time t.
//
// Based on a simplified NOAA / Meeus-style algorithm:
//
//	g  = mean anomaly of the Sun
//	q  = mean longitude of the Sun
//	L  = ecliptic longitude of the Sun
//	R  = radius vector in AU
func EclipticApprox(t time.Time) Ecliptic {
	d := timeutil.DaysSinceJ2000(t)

	// Mean anomaly of the Sun (deg)
	g := timeutil.Deg2Rad(357.529 + 0.98560028*d)

	// Mean longitude of the Sun (deg)
	q := 280.459 + 0.98564736*d

	// Ecliptic longitude with equation of center
	L := q + 1.915*math.Sin(g) + 0.020*math.Sin(2*g)

	R := 1.00014 - 0.01671*math.Cos(g) - 0.00014*math.Cos(2*g)

	return Ecliptic{
		Lon:        timeutil.Normalize360(L),
		DistanceKm: R * AUKm,
	}
}
