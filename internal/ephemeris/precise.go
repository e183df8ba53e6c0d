package ephemeris

import (
	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/coord"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"

	"github.com/thurmanmarka/moonglide/internal/horizon"
	"github.com/thurmanmarka/moonglide/internal/phase"
	"github.com/thurmanmarka/moonglide/internal/sidereal"
	"github.com/thurmanmarka/moonglide/internal/sun"
	"github.com/thurmanmarka/moonglide/internal/timeutil"
)

// PreciseName is the Name of the Precise model.
const PreciseName = "precise"

// Precise evaluates the Moon with the truncated ELP-2000/82 theory of Meeus
// chapter 47, nutation and apparent sidereal time, an ellipsoidal
// observer at HeightM meters, and the Sun from Meeus chapter 25.
type Precise struct {
	HeightM float64
}

func (Precise) Name() string { return PreciseName }

// Apparent holds the Moon's geocentric apparent coordinates for one JDE.
type Apparent struct {
	Lon, Lat   unit.Angle // ecliptic, referred to the true equinox of date
	RA         unit.RA
	Dec        unit.Angle
	DistanceKm float64
}

// GeocentricApparent returns the Moon's apparent place at Julian Ephemeris
// Day jde.
func GeocentricApparent(jde float64) Apparent {
	λ, β, Δ := moonposition.Position(jde)
	Δψ, Δε := nutation.Nutation(jde)

	λ += Δψ
	ε := nutation.MeanObliquity(jde) + Δε
	sε, cε := ε.Sincos()
	α, δ := coord.EclToEq(λ, β, sε, cε)

	return Apparent{Lon: λ, Lat: β, RA: α, Dec: δ, DistanceKm: Δ}
}

func (p Precise) Evaluate(in Input) (Sample, error) {
	jd := timeutil.JulianDay(in.Time)
	jde := timeutil.JulianEphemerisDay(in.Time)

	m := GeocentricApparent(jde)
	raDeg := timeutil.Normalize360(timeutil.Rad2Deg(m.RA.Rad()))

	lat := timeutil.Deg2Rad(in.Latitude)
	lst := sidereal.LocalDeg(sidereal.ApparentDeg(jd), in.Longitude)
	H := timeutil.Deg2Rad(sidereal.HourAngleDeg(lst, raDeg))
	dec := m.Dec.Rad()

	Ht, decT := horizon.Topocentric(H, dec, m.DistanceKm, horizon.GeocentricSite(lat, p.HeightM))
	hz := horizon.Transform(Ht, decT, lat)
	hz.AltitudeDeg += timeutil.ApproxRefraction(hz.AltitudeDeg)

	T := base.J2000Century(jde)
	sunLon := solar.ApparentLongitude(T)
	sunKm := solar.Radius(T) * sun.AUKm

	s := Sample{
		Model:                 PreciseName,
		AzimuthDeg:            hz.AzimuthDeg,
		AltitudeDeg:           hz.AltitudeDeg,
		GeocentricAltitudeDeg: timeutil.Rad2Deg(horizon.Altitude(H, dec, lat)),
		RADeg:                 raDeg,
		DecDeg:                m.Dec.Deg(),
		DistanceKm:            m.DistanceKm,
		ParallaxDeg:           moonposition.Parallax(m.DistanceKm).Deg(),
		Phase:                 phase.FromEcliptic(sunLon.Deg(), m.Lon.Deg(), m.Lat.Deg(), sunKm, m.DistanceKm),
	}
	if err := s.Validate(); err != nil {
		return Sample{}, err
	}
	return s, nil
}
