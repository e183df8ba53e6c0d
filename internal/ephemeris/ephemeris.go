// Package ephemeris defines the lunar model interface and its two
// implementations: Precise, built on the full lunar theory from
// github.com/soniakeys/meeus, and Approximate, the low-order series in
// internal/moon.
//
// Both report the same Sample so the reconciliation layer can compare them
// field by field.
package ephemeris

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/thurmanmarka/moonglide/internal/phase"
)

// ErrNonFinite is returned when a model produced NaN or ±Inf in a field
// that callers rely on.
var ErrNonFinite = errors.New("ephemeris: non-finite result")

// Input is one evaluation request: an instant and a geographic site in
// degrees (north and east positive).
type Input struct {
	Time      time.Time
	Latitude  float64
	Longitude float64
}

// Sample is everything a model knows about the Moon for one Input.
type Sample struct {
	Model string

	// Topocentric, refracted, north-based clockwise azimuth.
	AzimuthDeg  float64
	AltitudeDeg float64

	// Geometric altitude of the center seen from the Earth's center. The
	// rise/set threshold is applied against this.
	GeocentricAltitudeDeg float64

	RADeg       float64 // geocentric apparent right ascension [0, 360)
	DecDeg      float64 // geocentric apparent declination
	DistanceKm  float64 // Earth–Moon center distance
	ParallaxDeg float64 // equatorial horizontal parallax

	Phase phase.Phase
}

// Model computes a Sample for an Input.
type Model interface {
	Name() string
	Evaluate(in Input) (Sample, error)
}

// Validate reports ErrNonFinite if any numeric field is NaN or infinite.
func (s Sample) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"azimuth", s.AzimuthDeg},
		{"altitude", s.AltitudeDeg},
		{"geocentric altitude", s.GeocentricAltitudeDeg},
		{"right ascension", s.RADeg},
		{"declination", s.DecDeg},
		{"distance", s.DistanceKm},
		{"parallax", s.ParallaxDeg},
		{"phase", s.Phase.Cycle},
		{"illumination", s.Phase.Illumination},
		{"phase angle", s.Phase.Angle},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s from %s model", ErrNonFinite, f.name, s.Model)
		}
	}
	return nil
}
