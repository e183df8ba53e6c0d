package moonglide

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/thurmanmarka/moonglide/internal/ephemeris"
	"github.com/thurmanmarka/moonglide/internal/solver"
)

// RiseSetAltitude is the geocentric altitude of the Moon's center in
// degrees at which its upper limb touches the apparent horizon
// (Meeus 15, h0 = 0.7275π − 0°34′), for horizontal parallax π in degrees.
func RiseSetAltitude(parallaxDeg float64) float64 {
	return 0.7275*parallaxDeg - 34.0/60.0
}

// ComputeMoonTimes returns the Moon's rise and set on the calendar day of
// date in date's Location, i.e. within [00:00, 24:00) local. Returned times
// are in the same Location. Rise/set searches are not quantized.
//
// The primary model is used for the whole search; if it fails at any point
// the search is repeated with the secondary one.
func (c *Calculator) ComputeMoonTimes(obs Observer, date time.Time) (MoonTimes, error) {
	if err := obs.Validate(); err != nil {
		return MoonTimes{}, err
	}

	loc := date.Location()
	year, month, day := date.Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, loc)
	end := time.Date(year, month, day+1, 0, 0, 0, 0, loc)

	models := []Model{c.reconciler.Primary()}
	if s := c.reconciler.Secondary(); s != nil {
		models = append(models, s)
	}

	var errs []error
	for _, m := range models {
		rise, set, err := solver.FindRiseSet(altitudeAboveHorizon(m, obs), start, end, 0, solver.DefaultSteps, solver.DefaultTolerance)
		if err != nil {
			c.log.Warn("moon times search failed",
				zap.String("model", m.Name()),
				zap.Error(err),
				zap.Time("date", start),
			)
			errs = append(errs, fmt.Errorf("%s: %w", m.Name(), err))
			continue
		}

		var mt MoonTimes
		if rise.OK {
			r := rise.Time.In(loc)
			mt.Rise = &r
		}
		if set.OK {
			s := set.Time.In(loc)
			mt.Set = &s
		}
		return mt, nil
	}

	return MoonTimes{}, fmt.Errorf("%w: %v", ErrNoEphemeris, errs)
}

// altitudeAboveHorizon returns how far the Moon's center is above the
// rise/set altitude at t.
func altitudeAboveHorizon(m Model, obs Observer) solver.AltitudeFunc {
	return func(t time.Time) (float64, error) {
		s, err := m.Evaluate(ephemeris.Input{Time: t, Latitude: obs.Latitude, Longitude: obs.Longitude})
		if err != nil {
			return 0, err
		}
		return s.GeocentricAltitudeDeg - RiseSetAltitude(s.ParallaxDeg), nil
	}
}
