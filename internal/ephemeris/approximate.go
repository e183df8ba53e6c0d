package ephemeris

import (
	"github.com/thurmanmarka/moonglide/internal/horizon"
	"github.com/thurmanmarka/moonglide/internal/moon"
	"github.com/thurmanmarka/moonglide/internal/phase"
	"github.com/thurmanmarka/moonglide/internal/sun"
	"github.com/thurmanmarka/moonglide/internal/timeutil"
)

// ApproximateName is the Name of the Approximate model.
const ApproximateName = "approximate"

// Approximate evaluates the Moon with the low-order series in internal/moon
// and the mean-anomaly solar model in internal/sun. It ignores ΔT and
// nutation and treats the Sun as infinitely far away for the phase angle.
type Approximate struct{}

func (Approximate) Name() string { return ApproximateName }

func (Approximate) Evaluate(in Input) (Sample, error) {
	pos := moon.ApparentPosition(in.Latitude, in.Longitude, in.Time)
	s := sun.EclipticApprox(in.Time)

	out := Sample{
		Model:                 ApproximateName,
		AzimuthDeg:            pos.Horizontal.AzimuthDeg,
		AltitudeDeg:           pos.Horizontal.AltitudeDeg,
		GeocentricAltitudeDeg: pos.GeocentricAltitude,
		RADeg:                 pos.Equatorial.RA,
		DecDeg:                pos.Equatorial.Dec,
		DistanceKm:            pos.Equatorial.Distance,
		ParallaxDeg:           timeutil.Rad2Deg(horizon.HorizontalParallax(pos.Equatorial.Distance)),
		Phase:                 phase.FromElongation(s.Lon, pos.Ecliptic.Lon, pos.Ecliptic.Lat),
	}
	if err := out.Validate(); err != nil {
		return Sample{}, err
	}
	return out, nil
}
