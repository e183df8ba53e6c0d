package main

import (
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// summary describes one error series.
type summary struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
	P50    float64
	P95    float64
	P99    float64
}

// summarize ignores NaNs, which mark rows with no data.
func summarize(values []float64) summary {
	xs := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			xs = append(xs, v)
		}
	}
	if len(xs) == 0 {
		return summary{}
	}
	sort.Float64s(xs)

	s := summary{
		Count: len(xs),
		Min:   floats.Min(xs),
		Max:   floats.Max(xs),
		Mean:  stat.Mean(xs, nil),
		P50:   stat.Quantile(0.50, stat.Empirical, xs, nil),
		P95:   stat.Quantile(0.95, stat.Empirical, xs, nil),
		P99:   stat.Quantile(0.99, stat.Empirical, xs, nil),
	}
	if len(xs) > 1 {
		s.StdDev = stat.StdDev(xs, nil)
	}
	return s
}

func (s summary) print(w io.Writer, title, unit string) {
	fmt.Fprintf(w, "\n%s (%s):\n", title, unit)
	if s.Count == 0 {
		fmt.Fprintln(w, "  no data")
		return
	}
	fmt.Fprintf(w, "  count:  %d\n", s.Count)
	fmt.Fprintf(w, "  min:    %.3f\n", s.Min)
	fmt.Fprintf(w, "  max:    %.3f\n", s.Max)
	fmt.Fprintf(w, "  mean:   %.3f\n", s.Mean)
	fmt.Fprintf(w, "  stddev: %.3f\n", s.StdDev)
	fmt.Fprintf(w, "  p50:    %.3f\n", s.P50)
	fmt.Fprintf(w, "  p95:    %.3f\n", s.P95)
	fmt.Fprintf(w, "  p99:    %.3f\n", s.P99)
}

func diffMinutesSigned(got *time.Time, ref time.Time, hasRef bool) float64 {
	if got == nil || !hasRef {
		return math.NaN()
	}
	return got.Sub(ref).Minutes() // our - ref
}
