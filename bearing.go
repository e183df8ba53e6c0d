package moonglide

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/thurmanmarka/moonglide/internal/horizon"
	"github.com/thurmanmarka/moonglide/internal/timeutil"
)

// ErrInvalidBearing is returned when a bearing input is NaN or infinite.
var ErrInvalidBearing = errors.New("invalid bearing input")

// Bearing is where the Moon is relative to where a device points.
type Bearing struct {
	// AngularSeparationDeg is the great-circle angle between the two
	// directions, [0, 180].
	AngularSeparationDeg float64 `json:"angularSeparationDeg"`

	// AzimuthDeltaDeg is how far to turn clockwise to face the Moon's
	// azimuth, (-180, 180].
	AzimuthDeltaDeg float64 `json:"azimuthDeltaDeg"`

	// AltitudeDeltaDeg is how far to tilt up (positive) or down.
	AltitudeDeltaDeg float64 `json:"altitudeDeltaDeg"`
}

// ComputeDeviceRelativeBearing compares a device's pointing direction with
// the Moon's position, all in degrees. Azimuths may be any finite value;
// altitudes are clamped to [-90, 90].
func ComputeDeviceRelativeBearing(deviceAz, deviceAlt, moonAz, moonAlt float64) (Bearing, error) {
	for _, v := range []float64{deviceAz, deviceAlt, moonAz, moonAlt} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Bearing{}, fmt.Errorf("%w: %v", ErrInvalidBearing, v)
		}
	}

	dAlt := timeutil.Clamp(deviceAlt, -90, 90)
	mAlt := timeutil.Clamp(moonAlt, -90, 90)

	return Bearing{
		AngularSeparationDeg: horizon.Separation(deviceAz, dAlt, moonAz, mAlt),
		AzimuthDeltaDeg:      timeutil.Normalize180(moonAz - deviceAz),
		AltitudeDeltaDeg:     mAlt - dAlt,
	}, nil
}

const (
	// DefaultAlignmentDeg is how close the device must point to count as
	// aligned.
	DefaultAlignmentDeg = 5.0

	// DefaultBlinkPeriod is one on/off cycle of the "keep searching"
	// indicator.
	DefaultBlinkPeriod = time.Second
)

// Cue is the pointing indicator state for one frame.
type Cue struct {
	Aligned bool `json:"aligned"`
	Lit     bool `json:"lit"`
}

// CueConfig parameterizes PointingCue.
type CueConfig struct {
	AlignmentDeg float64
	BlinkPeriod  time.Duration
}

// Cue returns the indicator state for b at now. An aligned device shows a
// steady light; otherwise it blinks in cycles counted from start, lit for
// the first half of each.
func (c CueConfig) Cue(b Bearing, start, now time.Time) Cue {
	if b.AngularSeparationDeg <= c.AlignmentDeg {
		return Cue{Aligned: true, Lit: true}
	}
	return Cue{Lit: timeutil.Blink(start, now, c.BlinkPeriod)}
}

// PointingCue is CueConfig.Cue with the default alignment and blink period.
func PointingCue(b Bearing, start, now time.Time) Cue {
	return CueConfig{AlignmentDeg: DefaultAlignmentDeg, BlinkPeriod: DefaultBlinkPeriod}.Cue(b, start, now)
}
