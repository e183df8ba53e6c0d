// Package horizon converts equatorial positions into the observer's
// horizontal frame.
//
// Azimuths leaving this package are north-based and clockwise
// (0°=N, 90°=E, 180°=S, 270°=W) in [0, 360). The hour-angle formula produces
// a south-based azimuth; SouthAzimuth exposes that raw value for callers
// comparing against south-based references such as Meeus chapter 13.
package horizon

import (
	"math"

	"github.com/thurmanmarka/moonglide/internal/timeutil"
)

// eps is the magnitude below which a trig term is treated as zero.
const eps = 1e-12

// Horizontal is a position in the observer's horizontal frame, in degrees.
type Horizontal struct {
	AzimuthDeg  float64 // north-based, clockwise, [0, 360)
	AltitudeDeg float64 // [-90, 90]
}

// SouthAzimuth returns the azimuth in radians (-π, π] measured westward from
// south for hour angle H, declination dec and latitude lat (all radians).
//
// The textbook form A = atan2(sinH, cosH·sinφ − tanδ·cosφ) divides by cosδ
// implicitly; when cosδ underflows we use the same expression multiplied
// through by cosδ, which has the same sign and therefore the same angle.
// If both arguments vanish (object in the zenith or nadir) the azimuth is
// undefined and 0 is returned.
func SouthAzimuth(H, dec, lat float64) float64 {
	sinH, cosH := math.Sincos(H)
	sinPhi, cosPhi := math.Sincos(lat)

	var y, x float64
	cosDec := math.Cos(dec)
	if math.Abs(cosDec) < eps {
		sinDec := math.Sin(dec)
		y = sinH * cosDec
		x = cosH*cosDec*sinPhi - sinDec*cosPhi
	} else {
		y = sinH
		x = cosH*sinPhi - math.Tan(dec)*cosPhi
	}

	if math.Abs(y) < eps && math.Abs(x) < eps {
		return 0
	}
	return math.Atan2(y, x)
}

// Altitude returns the altitude in radians for hour angle H, declination dec
// and latitude lat (radians).
func Altitude(H, dec, lat float64) float64 {
	sinAlt := math.Sin(lat)*math.Sin(dec) + math.Cos(lat)*math.Cos(dec)*math.Cos(H)
	// Rounding can push |sinAlt| a hair past 1 at the zenith.
	return math.Asin(timeutil.Clamp(sinAlt, -1, 1))
}

// Transform converts hour angle H, declination dec and observer latitude
// lat (radians) into a normalized north-based Horizontal position.
func Transform(H, dec, lat float64) Horizontal {
	alt := timeutil.Rad2Deg(Altitude(H, dec, lat))
	az := FromSouth(timeutil.Rad2Deg(SouthAzimuth(H, dec, lat)))

	if math.IsNaN(alt) || math.IsInf(alt, 0) {
		alt = 0
	}
	if math.IsNaN(az) || math.IsInf(az, 0) {
		az = 0
	}

	return Horizontal{
		AzimuthDeg:  az,
		AltitudeDeg: timeutil.Clamp(alt, -90, 90),
	}
}

// FromSouth converts a south-based azimuth in degrees to the north-based
// convention, normalized to [0, 360).
func FromSouth(southDeg float64) float64 {
	return timeutil.Normalize360(southDeg + 180.0)
}

// Separation returns the great-circle angle in degrees between two
// horizontal positions given as (azimuth, altitude) degree pairs. The
// haversine form stays accurate for the small separations a pointing
// display cares about.
func Separation(az1, alt1, az2, alt2 float64) float64 {
	a1 := timeutil.Deg2Rad(alt1)
	a2 := timeutil.Deg2Rad(alt2)
	dAlt := a2 - a1
	dAz := timeutil.Deg2Rad(az2 - az1)

	h := math.Sin(dAlt/2)*math.Sin(dAlt/2) +
		math.Cos(a1)*math.Cos(a2)*math.Sin(dAz/2)*math.Sin(dAz/2)
	h = timeutil.Clamp(h, 0, 1)

	return timeutil.Rad2Deg(2 * math.Asin(math.Sqrt(h)))
}
