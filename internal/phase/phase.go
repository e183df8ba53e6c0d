// Package phase derives the Moon's phase and illuminated fraction from the
// relative positions of the Sun and Moon.
//
// Two quantities come out of it and they are computed independently:
//
//   - Cycle: position in the synodic month from the signed ecliptic longitude
//     difference, 0 = new, 0.5 = full, approaching 1 = new again.
//   - Illumination: the illuminated fraction (1 + cos i) / 2 from the phase
//     angle i, which carries no waxing/waning information.
package phase

import (
	"math"

	"github.com/thurmanmarka/moonglide/internal/timeutil"
)

// SynodicMonth is the mean length of the lunar cycle in days.
const SynodicMonth = 29.530588853

// Phase describes the lunar phase at one instant.
type Phase struct {
	Cycle        float64 // [0, 1): 0 = new, 0.5 = full
	Elongation   float64 // Sun–Moon angular separation ψ, degrees [0, 180]
	Angle        float64 // phase angle i (Sun–Moon–Earth), degrees [0, 180]
	Illumination float64 // illuminated fraction [0, 1]
	Waxing       bool    // Cycle < 0.5
	AgeDays      float64 // Cycle scaled to the mean synodic month
}

// FromEcliptic computes the phase from geocentric ecliptic coordinates in
// degrees and the Earth–Sun / Earth–Moon distances in km. The phase angle
// uses Meeus 48.3, tan i = R·sinψ / (Δ − R·cosψ).
func FromEcliptic(sunLon, moonLon, moonLat, sunDistKm, moonDistKm float64) Phase {
	psi := elongation(sunLon, moonLon, moonLat)

	R := sunDistKm
	i := math.Atan2(R*math.Sin(psi), moonDistKm-R*math.Cos(psi))

	return build(sunLon, moonLon, psi, i)
}

// FromElongation computes the phase treating the Sun as infinitely far away,
// so the phase angle is simply 180° − ψ. Good to a few tenths of a percent
// in illumination.
func FromElongation(sunLon, moonLon, moonLat float64) Phase {
	psi := elongation(sunLon, moonLon, moonLat)
	return build(sunLon, moonLon, psi, math.Pi-psi)
}

// elongation returns ψ in radians from cos ψ = cos β · cos(λm − λs).
func elongation(sunLon, moonLon, moonLat float64) float64 {
	cosPsi := timeutil.CosD(moonLat) * timeutil.CosD(moonLon-sunLon)
	return math.Acos(timeutil.Clamp(cosPsi, -1, 1))
}

func build(sunLon, moonLon, psi, i float64) Phase {
	cycle := timeutil.Normalize360(moonLon-sunLon) / 360.0

	illum := timeutil.Clamp((1+math.Cos(i))/2, 0, 1)

	return Phase{
		Cycle:        cycle,
		Elongation:   timeutil.Rad2Deg(psi),
		Angle:        timeutil.Rad2Deg(i),
		Illumination: illum,
		Waxing:       cycle < 0.5,
		AgeDays:      cycle * SynodicMonth,
	}
}

// CycleIllumination is the illuminated fraction implied by a cycle position
// alone, (1 − cos 2π·cycle) / 2. It ignores the Moon's ecliptic latitude and
// is used to cross-check the two independently derived fields.
func CycleIllumination(cycle float64) float64 {
	return (1 - math.Cos(2*math.Pi*cycle)) / 2
}
