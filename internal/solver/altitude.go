// Package solver finds the instants where a body's altitude crosses a
// target value.
package solver

import (
	"math"
	"time"
)

// DefaultTolerance is the bisection stopping width.
const DefaultTolerance = time.Second

// DefaultSteps is the number of coarse samples across a search window. For a
// one-day window that is one sample every ~30 minutes, well inside the
// shortest interval between lunar horizon crossings.
const DefaultSteps = 48

// AltitudeFunc returns altitude in degrees at time t, or an error when the
// underlying model cannot produce one.
type AltitudeFunc func(t time.Time) (float64, error)

// EventType describes whether we are looking for a rising or setting event.
type EventType int

const (
	// CrossingUp means altitude is increasing through the target value (rise).
	CrossingUp EventType = iota
	// CrossingDown means altitude is decreasing through the target value (set).
	CrossingDown
)

// Result holds the output of an altitude event search.
type Result struct {
	Time time.Time // time of the event, within the tolerance
	OK   bool      // true if an event was found
}

type sample struct {
	t   time.Time
	alt float64 // altitude minus target
}

// FindRiseSet finds the first upward and the first downward crossing of
// targetDeg in [start, end) from a single coarse scan.
func FindRiseSet(f AltitudeFunc, start, end time.Time, targetDeg float64, steps int, tol time.Duration) (rise, set Result, err error) {
	samples, err := scan(f, start, end, targetDeg, steps)
	if err != nil || samples == nil {
		return Result{}, Result{}, err
	}
	if rise, err = first(f, samples, end, targetDeg, CrossingUp, tol); err != nil {
		return Result{}, Result{}, err
	}
	if set, err = first(f, samples, end, targetDeg, CrossingDown, tol); err != nil {
		return Result{}, Result{}, err
	}
	return rise, set, nil
}

// scan samples f at steps evenly spaced instants from start to end
// inclusive. It returns nil when the window is empty.
func scan(f AltitudeFunc, start, end time.Time, targetDeg float64, steps int) ([]sample, error) {
	if !start.Before(end) {
		return nil, nil
	}
	if steps < 2 {
		steps = 2
	}

	interval := end.Sub(start) / time.Duration(steps-1)
	out := make([]sample, 0, steps)

	for i := 0; i < steps; i++ {
		t := start.Add(time.Duration(i) * interval)
		if i == steps-1 {
			t = end
		}
		alt, err := f(t)
		if err != nil {
			return nil, err
		}
		out = append(out, sample{t: t, alt: alt - targetDeg})
	}
	return out, nil
}

func first(f AltitudeFunc, samples []sample, end time.Time, targetDeg float64, eventType EventType, tol time.Duration) (Result, error) {
	for i := 1; i < len(samples); i++ {
		a, b := samples[i-1], samples[i]
		if !hasCrossing(a.alt, b.alt, eventType) {
			continue
		}
		res, err := bisect(f, a, b, targetDeg, eventType, tol)
		if err != nil {
			return Result{}, err
		}
		// The window is half-open; a crossing at end belongs to the next one.
		if res.OK && !res.Time.Before(end) {
			return Result{}, nil
		}
		return res, nil
	}
	return Result{}, nil
}

func hasCrossing(a1, a2 float64, eventType EventType) bool {
	if math.IsNaN(a1) || math.IsNaN(a2) {
		return false
	}
	switch eventType {
	case CrossingUp:
		return a1 < 0 && a2 >= 0
	case CrossingDown:
		return a1 > 0 && a2 <= 0
	default:
		return a1*a2 <= 0
	}
}

func bisect(f AltitudeFunc, a, b sample, targetDeg float64, eventType EventType, tol time.Duration) (Result, error) {
	if tol <= 0 {
		tol = DefaultTolerance
	}

	for b.t.Sub(a.t) > tol {
		mid := a.t.Add(b.t.Sub(a.t) / 2)
		alt, err := f(mid)
		if err != nil {
			return Result{}, err
		}
		m := sample{t: mid, alt: alt - targetDeg}

		if hasCrossing(a.alt, m.alt, eventType) {
			b = m
		} else {
			a = m
		}
	}

	return Result{
		Time: a.t.Add(b.t.Sub(a.t) / 2),
		OK:   true,
	}, nil
}
