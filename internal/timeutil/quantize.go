package timeutil

import (
	"math"
	"math/big"
	"time"
)

// DefaultQuantum is the grid step used to snap timestamps before they reach
// the ephemeris. The Moon moves about 0.005° in 10 s, well below what a
// compass needle can show.
const DefaultQuantum = 10 * time.Second

// Quantizer snaps instants onto a fixed grid Epoch + k·Step.
//
// The zero value has no step and passes instants through (converted to UTC).
type Quantizer struct {
	Step  time.Duration
	Epoch time.Time // grid anchor; zero means the Unix epoch
}

// NewQuantizer returns a Quantizer anchored at the Unix epoch.
func NewQuantizer(step time.Duration) Quantizer {
	return Quantizer{Step: step}
}

func (q Quantizer) anchor() time.Time {
	if q.Epoch.IsZero() {
		return time.Unix(0, 0).UTC()
	}
	return q.Epoch.UTC()
}

// Bucket returns the grid index k of the cell containing t. Instants before
// the epoch land in negative buckets (floor, not truncation). An index that
// does not fit in an int64 saturates.
func (q Quantizer) Bucket(t time.Time) int64 {
	if q.Step <= 0 {
		return 0
	}
	k, _, _ := q.floor(t)
	return k
}

// Quantize floors t onto the grid and returns the cell start in UTC.
// It never moves an instant forward, and t1 <= t2 implies
// Quantize(t1) <= Quantize(t2).
func (q Quantizer) Quantize(t time.Time) time.Time {
	if q.Step <= 0 {
		return t.UTC()
	}
	a := q.anchor()
	_, sec, nsec := q.floor(t)
	return time.Unix(a.Unix()+sec, int64(a.Nanosecond())+nsec).UTC()
}

// floor returns the bucket index of t together with the offset of that
// bucket's start from the anchor, as whole seconds plus nanoseconds in
// [0, 1e9). Offsets are never held in a time.Duration, so instants
// centuries away from the anchor stay on the grid.
func (q Quantizer) floor(t time.Time) (k, sec, nsec int64) {
	a := q.anchor()
	sec = t.Unix() - a.Unix()
	nsec = int64(t.Nanosecond() - a.Nanosecond())
	if nsec < 0 {
		nsec += int64(time.Second)
		sec--
	}

	if q.Step%time.Second == 0 {
		stepSec := int64(q.Step / time.Second)
		k = floorDiv(sec, stepSec)
		return k, k * stepSec, 0
	}

	// Sub-second steps: the offset in nanoseconds overflows int64 beyond
	// ±292 years.
	ns := new(big.Int).Mul(big.NewInt(sec), big.NewInt(int64(time.Second)))
	ns.Add(ns, big.NewInt(nsec))
	step := big.NewInt(int64(q.Step))
	bk := new(big.Int).Div(ns, step) // Euclidean; floor for a positive step

	start := new(big.Int).Mul(bk, step)
	s, r := new(big.Int).DivMod(start, big.NewInt(int64(time.Second)), new(big.Int))

	switch {
	case bk.IsInt64():
		k = bk.Int64()
	case bk.Sign() < 0:
		k = math.MinInt64
	default:
		k = math.MaxInt64
	}
	return k, s.Int64(), r.Int64()
}

// floorDiv is a / b rounded toward negative infinity, for b > 0.
func floorDiv(a, b int64) int64 {
	d := a / b
	if a%b < 0 {
		d--
	}
	return d
}

// Blink reports whether a blinking indicator is lit at now, for a blink
// cycle of the given period started at start. The first half of every
// period is lit. A non-positive period means steady on.
func Blink(start, now time.Time, period time.Duration) bool {
	if period <= 0 {
		return true
	}
	q := Quantizer{Step: period, Epoch: start}
	if start.IsZero() {
		q.Epoch = time.Unix(0, 0)
	}
	offset := now.Sub(q.Quantize(now))
	return offset < period/2
}
