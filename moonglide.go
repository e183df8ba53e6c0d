// Package moonglide computes the Moon's real-time position for an observer:
// azimuth, altitude, phase, illumination, distance, and rise/set times.
//
// Two independent lunar models run side by side. The precise model (the
// ELP-2000/82 truncation of Meeus chapter 47) is canonical for every field
// of the result; the low-order model is evaluated alongside and any
// disagreement beyond a threshold is logged, never blocking the result.
//
// Timestamps are floored onto a fixed grid (10 s by default) before use, so
// a display refreshing many times per second gets bit-identical output
// inside each grid cell instead of jitter.
//
// All entry points are pure and safe for concurrent use.
package moonglide

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/thurmanmarka/moonglide/internal/ephemeris"
	"github.com/thurmanmarka/moonglide/internal/reconcile"
	"github.com/thurmanmarka/moonglide/internal/timeutil"
)

// Observer is a site on the Earth's surface.
type Observer struct {
	Latitude  float64 `json:"latitude"`  // degrees, north positive, [-90, 90]
	Longitude float64 `json:"longitude"` // degrees, east positive, [-180, 180]
}

// MoonData is an immutable snapshot of the Moon as seen by an Observer.
type MoonData struct {
	Time time.Time `json:"time"` // the quantized instant, UTC

	Azimuth  float64 `json:"azimuth"`  // degrees, north-based clockwise, [0, 360)
	Altitude float64 `json:"altitude"` // degrees, topocentric and refracted, [-90, 90]

	Phase        float64 `json:"phase"`        // [0, 1): 0 = new, 0.5 = full
	Illumination float64 `json:"illumination"` // illuminated fraction [0, 1]
	Distance     float64 `json:"distanceKm"`   // Earth–Moon center distance, km

	PhaseAngle float64 `json:"phaseAngle"` // Sun–Moon–Earth angle, degrees
	Elongation float64 `json:"elongation"` // Sun–Moon separation, degrees
	Waxing     bool    `json:"waxing"`
	AgeDays    float64 `json:"ageDays"`

	// Model names the ephemeris that produced the record. It is the
	// secondary model only when the primary failed.
	Model string `json:"model"`
}

// MoonTimes holds the Moon's rise and set on one local calendar day. A nil
// field means the event does not happen that day.
type MoonTimes struct {
	Rise *time.Time `json:"rise"`
	Set  *time.Time `json:"set"`
}

var (
	// ErrInvalidObserver is returned when latitude or longitude is out of
	// range or not finite.
	ErrInvalidObserver = errors.New("invalid observer coordinates")

	// ErrNoEphemeris is returned when no lunar model produced a result.
	ErrNoEphemeris = reconcile.ErrNoEphemeris
)

// Validate reports whether o is a usable site.
func (o Observer) Validate() error {
	switch {
	case math.IsNaN(o.Latitude) || o.Latitude < -90 || o.Latitude > 90:
		return fmt.Errorf("%w: latitude %v outside [-90, 90]", ErrInvalidObserver, o.Latitude)
	case math.IsNaN(o.Longitude) || o.Longitude < -180 || o.Longitude > 180:
		return fmt.Errorf("%w: longitude %v outside [-180, 180]", ErrInvalidObserver, o.Longitude)
	}
	return nil
}

// Model is a lunar ephemeris that can back a Calculator.
type Model = ephemeris.Model

// PreciseModel returns the full-theory lunar model.
func PreciseModel() Model { return ephemeris.Precise{} }

// ApproximateModel returns the low-order lunar model.
func ApproximateModel() Model { return ephemeris.Approximate{} }

// DivergenceRecorder receives the outcome of every cross-check between the
// primary and secondary models.
type DivergenceRecorder interface {
	ObserveSeparation(separationDeg float64, diverged bool)
	ObserveFallback(from, to string)
}

// Calculator computes MoonData and MoonTimes. It is immutable once built.
type Calculator struct {
	quantizer  timeutil.Quantizer
	reconciler *reconcile.Reconciler
	log        *zap.Logger
}

// New returns a Calculator with the precise model as primary, the
// approximate model as secondary, a 10 s quantum and a 1° divergence
// threshold, modified by opts.
func New(opts ...Option) *Calculator {
	o := options{
		log:       zap.NewNop(),
		quantizer: timeutil.NewQuantizer(timeutil.DefaultQuantum),
		threshold: reconcile.DefaultThresholdDeg,
		primary:   ephemeris.Precise{},
		secondary: ephemeris.Approximate{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	rOpts := []reconcile.Option{
		reconcile.WithLogger(o.log),
		reconcile.WithThreshold(o.threshold),
	}
	if o.recorder != nil {
		rOpts = append(rOpts, reconcile.WithRecorder(o.recorder))
	}

	return &Calculator{
		quantizer:  o.quantizer,
		reconciler: reconcile.New(o.primary, o.secondary, rOpts...),
		log:        o.log,
	}
}

// Quantize returns the grid instant t is evaluated at.
func (c *Calculator) Quantize(t time.Time) time.Time {
	return c.quantizer.Quantize(t)
}

// ComputeMoonData returns the Moon's position and phase for obs at t.
// The only error for a valid observer is ErrNoEphemeris, which the built-in
// models never produce.
func (c *Calculator) ComputeMoonData(obs Observer, t time.Time) (MoonData, error) {
	if err := obs.Validate(); err != nil {
		return MoonData{}, err
	}

	qt := c.quantizer.Quantize(t)
	res, err := c.reconciler.Evaluate(ephemeris.Input{
		Time:      qt,
		Latitude:  obs.Latitude,
		Longitude: obs.Longitude,
	})
	if err != nil {
		return MoonData{}, err
	}

	return MoonData{
		Time:         qt,
		Azimuth:      res.AzimuthDeg,
		Altitude:     res.AltitudeDeg,
		Phase:        res.Phase.Cycle,
		Illumination: res.Phase.Illumination,
		Distance:     res.DistanceKm,
		PhaseAngle:   res.Phase.Angle,
		Elongation:   res.Phase.Elongation,
		Waxing:       res.Phase.Waxing,
		AgeDays:      res.Phase.AgeDays,
		Model:        res.Model,
	}, nil
}

var defaultCalculator = New()

// ComputeMoonData uses a Calculator with default settings.
func ComputeMoonData(obs Observer, t time.Time) (MoonData, error) {
	return defaultCalculator.ComputeMoonData(obs, t)
}

// ComputeMoonTimes uses a Calculator with default settings.
func ComputeMoonTimes(obs Observer, date time.Time) (MoonTimes, error) {
	return defaultCalculator.ComputeMoonTimes(obs, date)
}
