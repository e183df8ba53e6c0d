package horizon

import (
	"math"

	"github.com/thurmanmarka/moonglide/internal/timeutil"
)

const (
	// EarthRadiusKm is the equatorial radius of the Earth.
	EarthRadiusKm = 6378.14

	// polarRatio is b/a for the IAU 1976 ellipsoid.
	polarRatio = 0.99664719
)

// Site holds the observer's geocentric position factors ρ·sinφ′ and ρ·cosφ′
// (Meeus chapter 11), in Earth equatorial radii.
type Site struct {
	RhoSin float64
	RhoCos float64
}

// GeocentricSite returns the geocentric factors for geographic latitude
// lat (radians) and height above sea level in meters.
func GeocentricSite(lat, heightM float64) Site {
	u := math.Atan(polarRatio * math.Tan(lat))
	h := heightM / (EarthRadiusKm * 1000)
	return Site{
		RhoSin: polarRatio*math.Sin(u) + h*math.Sin(lat),
		RhoCos: math.Cos(u) + h*math.Cos(lat),
	}
}

// SeaLevelSite is the cruder spherical approximation: a constant ρ applied
// to the geographic latitude.
func SeaLevelSite(lat float64) Site {
	const rho = 0.99883
	return Site{
		RhoSin: rho * math.Sin(lat),
		RhoCos: rho * math.Cos(lat),
	}
}

// HorizontalParallax returns the equatorial horizontal parallax in radians
// for a geocentric distance in km.
func HorizontalParallax(distanceKm float64) float64 {
	if distanceKm <= EarthRadiusKm {
		// ridiculously close / invalid, just clamp
		return timeutil.Deg2Rad(1.0)
	}
	return math.Asin(EarthRadiusKm / distanceKm)
}

// Topocentric shifts a geocentric hour angle H and declination dec (radians)
// to the observer's site for a body at distanceKm, following Meeus 40.2/40.3.
// It returns the topocentric hour angle (normalized to (-π, π]) and
// declination.
func Topocentric(H, dec, distanceKm float64, site Site) (Ht, decT float64) {
	sinPi := math.Sin(HorizontalParallax(distanceKm))

	sinH, cosH := math.Sincos(H)
	sinDec, cosDec := math.Sincos(dec)

	den := cosDec - site.RhoCos*sinPi*cosH

	// Δα (correction to RA)
	deltaAlpha := math.Atan2(-site.RhoCos*sinPi*sinH, den)

	decT = math.Atan2((sinDec-site.RhoSin*sinPi)*math.Cos(deltaAlpha), den)
	Ht = timeutil.NormalizePi(H - deltaAlpha)
	return Ht, decT
}
