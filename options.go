package moonglide

import (
	"time"

	"go.uber.org/zap"

	"github.com/thurmanmarka/moonglide/internal/timeutil"
)

type options struct {
	log       *zap.Logger
	quantizer timeutil.Quantizer
	threshold float64
	primary   Model
	secondary Model
	recorder  DivergenceRecorder
}

// Option configures a Calculator.
type Option func(*options)

// WithLogger sets the logger for model divergence and fallback events.
// The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithQuantizer sets the timestamp grid: step and anchor epoch. A zero
// epoch means the Unix epoch; a non-positive step disables quantization.
func WithQuantizer(step time.Duration, epoch time.Time) Option {
	return func(o *options) {
		o.quantizer = timeutil.Quantizer{Step: step, Epoch: epoch}
	}
}

// WithDivergenceThreshold sets the sky separation in degrees above which the
// two models are reported as diverged.
func WithDivergenceThreshold(deg float64) Option {
	return func(o *options) {
		o.threshold = deg
	}
}

// WithModels replaces the primary (canonical) and secondary (cross-check)
// models. secondary may be nil to disable the cross-check.
func WithModels(primary, secondary Model) Option {
	return func(o *options) {
		if primary != nil {
			o.primary = primary
		}
		o.secondary = secondary
	}
}

// WithDivergenceRecorder sets where cross-check outcomes are counted, for
// example a metrics collector.
func WithDivergenceRecorder(r DivergenceRecorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}
