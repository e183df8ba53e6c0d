// Package sidereal relates Julian Days to the rotation of the Earth.
//
// Every function works in degrees and returns values already normalized,
// so callers can combine them with longitudes and right ascensions without
// a separate wrap step.
package sidereal

import (
	"math"

	"github.com/soniakeys/meeus/v3/nutation"

	"github.com/thurmanmarka/moonglide/internal/timeutil"
)

// MeanDeg returns Greenwich Mean Sidereal Time in degrees [0, 360) for a
// Julian Day (UT), using the IAU 1982 expression (Meeus 12.4).
func MeanDeg(jd float64) float64 {
	// Split at the preceding midnight so the large linear term is evaluated
	// on a small argument.
	jd0 := math.Floor(jd-0.5) + 0.5
	T := timeutil.JulianCenturies(jd0)

	// GMST at 0h UT, in hours
	gmst := 6.697374558 + 2400.0513369*T + 0.0000258622*T*T - 1.7222e-9*T*T*T

	// Hours elapsed since midnight UT, in sidereal hours
	ut := (jd - jd0) * 24.0
	gmst += 1.00273790935 * ut

	return timeutil.Normalize360(gmst * 15.0)
}

// ApparentDeg returns Greenwich Apparent Sidereal Time in degrees [0, 360):
// mean sidereal time corrected for the nutation in right ascension
// (the equation of the equinoxes, Δψ·cos ε).
func ApparentDeg(jd float64) float64 {
	Δψ, Δε := nutation.Nutation(jd)
	ε := nutation.MeanObliquity(jd) + Δε
	return timeutil.Normalize360(MeanDeg(jd) + Δψ.Deg()*math.Cos(ε.Rad()))
}

// LocalDeg combines a Greenwich sidereal time with an east-positive
// longitude, both in degrees, and returns the local sidereal time [0, 360).
func LocalDeg(gstDeg, lonDeg float64) float64 {
	return timeutil.Normalize360(gstDeg + lonDeg)
}

// HourAngleDeg returns the hour angle LST − RA in degrees, normalized to
// (-180, 180]. Positive hour angles are west of the meridian.
func HourAngleDeg(lstDeg, raDeg float64) float64 {
	return timeutil.Normalize180(lstDeg - raDeg)
}
