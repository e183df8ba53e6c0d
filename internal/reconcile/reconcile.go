// Package reconcile runs a primary and a secondary lunar model side by side.
//
// The primary model is canonical: every field the caller sees comes from it.
// The secondary is evaluated alongside as a cross-check, and when the two
// disagree on the sky position by more than the threshold the event is
// logged and recorded. Disagreement never blocks a result.
//
// If the primary fails, the secondary's whole record is returned instead.
// Fields are never mixed between models.
package reconcile

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/thurmanmarka/moonglide/internal/ephemeris"
	"github.com/thurmanmarka/moonglide/internal/horizon"
)

// DefaultThresholdDeg is the sky separation above which the two models are
// reported as diverged.
const DefaultThresholdDeg = 1.0

// ErrNoEphemeris is returned when neither model produced a usable sample.
var ErrNoEphemeris = errors.New("reconcile: no model produced a usable position")

// Recorder receives the outcome of every cross-check.
type Recorder interface {
	ObserveSeparation(separationDeg float64, diverged bool)
	ObserveFallback(from, to string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveSeparation(float64, bool) {}
func (nopRecorder) ObserveFallback(string, string)  {}

// Result is a reconciled sample plus what the cross-check found.
type Result struct {
	ephemeris.Sample

	// SeparationDeg is the great-circle distance between the two models'
	// positions, or NaN when only one model produced a sample.
	SeparationDeg float64
	Diverged      bool
	FellBack      bool
}

// Reconciler evaluates a primary model and cross-checks it against a
// secondary one. It holds no mutable state and is safe for concurrent use.
type Reconciler struct {
	primary   ephemeris.Model
	secondary ephemeris.Model
	threshold float64
	log       *zap.Logger
	rec       Recorder
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithThreshold sets the divergence threshold in degrees. Non-positive or
// non-finite values are ignored.
func WithThreshold(deg float64) Option {
	return func(r *Reconciler) {
		if deg > 0 && !math.IsInf(deg, 0) {
			r.threshold = deg
		}
	}
}

// WithLogger sets the logger for divergence and fallback events.
func WithLogger(l *zap.Logger) Option {
	return func(r *Reconciler) {
		if l != nil {
			r.log = l
		}
	}
}

// WithRecorder sets where cross-check outcomes are counted.
func WithRecorder(rec Recorder) Option {
	return func(r *Reconciler) {
		if rec != nil {
			r.rec = rec
		}
	}
}

// New returns a Reconciler. secondary may be nil, in which case no
// cross-check or fallback happens.
func New(primary, secondary ephemeris.Model, opts ...Option) *Reconciler {
	r := &Reconciler{
		primary:   primary,
		secondary: secondary,
		threshold: DefaultThresholdDeg,
		log:       zap.NewNop(),
		rec:       nopRecorder{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Primary returns the canonical model.
func (r *Reconciler) Primary() ephemeris.Model { return r.primary }

// Secondary returns the cross-check model, possibly nil.
func (r *Reconciler) Secondary() ephemeris.Model { return r.secondary }

// Threshold returns the divergence threshold in degrees.
func (r *Reconciler) Threshold() float64 { return r.threshold }

// Evaluate runs both models for in and returns the canonical sample.
func (r *Reconciler) Evaluate(in ephemeris.Input) (Result, error) {
	p, perr := r.primary.Evaluate(in)

	if r.secondary == nil {
		if perr != nil {
			return Result{}, fmt.Errorf("%w: %s: %v", ErrNoEphemeris, r.primary.Name(), perr)
		}
		return Result{Sample: p, SeparationDeg: math.NaN()}, nil
	}

	s, serr := r.secondary.Evaluate(in)

	switch {
	case perr != nil && serr != nil:
		r.log.Error("all ephemeris models failed",
			zap.String("primary", r.primary.Name()),
			zap.NamedError("primaryError", perr),
			zap.String("secondary", r.secondary.Name()),
			zap.NamedError("secondaryError", serr),
			zap.Time("time", in.Time),
		)
		return Result{}, fmt.Errorf("%w: %s: %v; %s: %v",
			ErrNoEphemeris, r.primary.Name(), perr, r.secondary.Name(), serr)

	case perr != nil:
		r.log.Warn("primary ephemeris failed, using secondary",
			zap.String("primary", r.primary.Name()),
			zap.String("secondary", r.secondary.Name()),
			zap.Error(perr),
			zap.Time("time", in.Time),
		)
		r.rec.ObserveFallback(r.primary.Name(), r.secondary.Name())
		return Result{Sample: s, SeparationDeg: math.NaN(), FellBack: true}, nil

	case serr != nil:
		r.log.Debug("secondary ephemeris failed",
			zap.String("secondary", r.secondary.Name()),
			zap.Error(serr),
		)
		return Result{Sample: p, SeparationDeg: math.NaN()}, nil
	}

	sep := horizon.Separation(p.AzimuthDeg, p.AltitudeDeg, s.AzimuthDeg, s.AltitudeDeg)
	diverged := sep > r.threshold
	r.rec.ObserveSeparation(sep, diverged)

	if diverged {
		r.log.Warn("ephemeris models diverged",
			zap.Float64("separationDeg", sep),
			zap.Float64("thresholdDeg", r.threshold),
			zap.Float64("primaryAz", p.AzimuthDeg),
			zap.Float64("primaryAlt", p.AltitudeDeg),
			zap.Float64("secondaryAz", s.AzimuthDeg),
			zap.Float64("secondaryAlt", s.AltitudeDeg),
			zap.Float64("illuminationDelta", p.Phase.Illumination-s.Phase.Illumination),
			zap.Float64("latitude", in.Latitude),
			zap.Float64("longitude", in.Longitude),
			zap.Time("time", in.Time),
		)
	}

	return Result{Sample: p, SeparationDeg: sep, Diverged: diverged}, nil
}
