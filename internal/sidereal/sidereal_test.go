package sidereal

import (
	"math"
	"testing"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	meeus "github.com/soniakeys/meeus/v3/sidereal"

	"github.com/thurmanmarka/moonglide/internal/timeutil"
)

// hms converts sidereal hours/minutes/seconds to degrees.
func hms(h, m int, s float64) float64 {
	return (float64(h) + float64(m)/60 + s/3600) * 15
}

func TestMeanDeg_MeeusExamples(t *testing.T) {
	cases := []struct {
		name string
		jd   float64
		want float64
	}{
		// Meeus example 12.a: 1987 April 10, 0h UT
		{"12.a", 2446895.5, hms(13, 10, 46.3668)},
		// Meeus example 12.b: 1987 April 10, 19h21m00s UT
		{"12.b", 2446896.30625, hms(8, 34, 57.0896)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MeanDeg(tc.jd)
			// 0.001 s of time is 0.000004°
			if math.Abs(got-tc.want) > 1e-4 {
				t.Errorf("MeanDeg(%.5f) = %.6f°, want %.6f°", tc.jd, got, tc.want)
			}
		})
	}
}

func TestApparentDeg_MeeusExample(t *testing.T) {
	// Meeus example 12.a: apparent sidereal time 13h10m46.1351s
	got := ApparentDeg(2446895.5)
	want := hms(13, 10, 46.1351)
	if math.Abs(got-want) > 1e-3 {
		t.Errorf("ApparentDeg = %.6f°, want %.6f°", got, want)
	}
}

func TestApparentTracksMean(t *testing.T) {
	// The equation of the equinoxes never exceeds ~1.2 s of time (0.005°).
	start := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 500; i++ {
		tm := start.Add(time.Duration(i) * 7 * time.Hour)
		jd := julian.TimeToJD(tm)
		if d := math.Abs(timeutil.Normalize180(ApparentDeg(jd) - MeanDeg(jd))); d > 0.006 {
			t.Fatalf("apparent - mean = %.5f° at %v", d, tm)
		}
	}
}

func TestApparentDeg_AgreesWithMeeus(t *testing.T) {
	start := time.Date(1600, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 400; i++ {
		tm := start.AddDate(2*i, 0, i)
		jd := julian.TimeToJD(tm)
		want := timeutil.Normalize360(timeutil.Rad2Deg(meeus.Apparent(jd).Rad()))
		if d := math.Abs(timeutil.Normalize180(ApparentDeg(jd) - want)); d > 1e-4 {
			t.Fatalf("ApparentDeg differs from meeus by %.6f° at %v", d, tm)
		}
	}
}

func TestJulianDayAgreesWithMeeus(t *testing.T) {
	tm := time.Date(2025, time.January, 15, 12, 34, 56, 0, time.UTC)
	if a, b := timeutil.JulianDay(tm), julian.TimeToJD(tm); math.Abs(a-b) > 1e-8 {
		t.Errorf("timeutil.JulianDay = %.9f, julian.TimeToJD = %.9f", a, b)
	}
}

func TestLocalAndHourAngle(t *testing.T) {
	if got := LocalDeg(350, 20); math.Abs(got-10) > 1e-9 {
		t.Errorf("LocalDeg(350, 20) = %v, want 10", got)
	}
	if got := LocalDeg(10, -20); math.Abs(got-350) > 1e-9 {
		t.Errorf("LocalDeg(10, -20) = %v, want 350", got)
	}

	cases := []struct{ lst, ra, want float64 }{
		{10, 350, 20},
		{350, 10, -20},
		{180, 0, 180},
		{0, 180, 180},
		{90, 90, 0},
	}
	for _, tc := range cases {
		if got := HourAngleDeg(tc.lst, tc.ra); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("HourAngleDeg(%v, %v) = %v, want %v", tc.lst, tc.ra, got, tc.want)
		}
	}
}
