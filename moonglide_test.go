package moonglide

import (
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/thurmanmarka/moonglide/internal/ephemeris"
)

var tokyo = Observer{Latitude: 35.6762, Longitude: 139.6503}

func TestComputeMoonData_Tokyo(t *testing.T) {
	md, err := ComputeMoonData(tokyo, time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ComputeMoonData: %v", err)
	}

	if !scalar.EqualWithinAbs(md.Azimuth, 87.95, 0.05) {
		t.Errorf("Azimuth = %.4f°, want ~87.95°", md.Azimuth)
	}
	if !scalar.EqualWithinAbs(md.Altitude, 31.90, 0.05) {
		t.Errorf("Altitude = %.4f°, want ~31.90°", md.Altitude)
	}
	if md.Distance < 356000 || md.Distance > 407000 {
		t.Errorf("Distance = %.0f km", md.Distance)
	}
	if md.Model != ephemeris.PreciseName {
		t.Errorf("Model = %q, want %q", md.Model, ephemeris.PreciseName)
	}
}

func TestComputeMoonData_Deterministic(t *testing.T) {
	at := time.Date(2025, 3, 14, 12, 0, 4, 250_000_000, time.UTC)
	a, err := ComputeMoonData(tokyo, at)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ComputeMoonData(tokyo, at)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("repeated call differs:\n%+v\n%+v", a, b)
	}
}

func TestComputeMoonData_Quantization(t *testing.T) {
	t0 := time.Date(2025, 1, 15, 12, 0, 1, 0, time.UTC)

	// Same 10 s cell: bit-identical.
	a, _ := ComputeMoonData(tokyo, t0)
	b, _ := ComputeMoonData(tokyo, t0.Add(3*time.Second))
	if a != b {
		t.Errorf("3 s apart in one cell differ:\n%+v\n%+v", a, b)
	}
	if !a.Time.Equal(time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("Time = %v, want the cell start", a.Time)
	}

	// Different cells: small but real motion.
	c, _ := ComputeMoonData(tokyo, t0.Add(15*time.Second))
	if a == c {
		t.Error("15 s apart should land in a different cell")
	}
	if d := math.Abs(a.Azimuth - c.Azimuth); d >= 0.15 {
		t.Errorf("azimuth moved %.4f° in 15 s", d)
	}
	if d := math.Abs(a.Altitude - c.Altitude); d >= 0.15 {
		t.Errorf("altitude moved %.4f° in 15 s", d)
	}
}

func TestComputeMoonData_Ranges(t *testing.T) {
	rng := rand.New(rand.NewSource(2024))
	first := time.Date(1600, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	span := time.Date(2400, 1, 1, 0, 0, 0, 0, time.UTC).Unix() - first

	for i := 0; i < 10000; i++ {
		obs := Observer{
			Latitude:  rng.Float64()*180 - 90,
			Longitude: rng.Float64()*360 - 180,
		}
		at := time.Unix(first+rng.Int63n(span), rng.Int63n(int64(time.Second))).UTC()

		md, err := ComputeMoonData(obs, at)
		if err != nil {
			t.Fatalf("%+v at %v: %v", obs, at, err)
		}
		if !(md.Azimuth >= 0 && md.Azimuth < 360) {
			t.Fatalf("azimuth %v out of [0,360) for %+v at %v", md.Azimuth, obs, at)
		}
		if !(md.Altitude >= -90 && md.Altitude <= 90) {
			t.Fatalf("altitude %v out of [-90,90] for %+v at %v", md.Altitude, obs, at)
		}
		if !(md.Phase >= 0 && md.Phase < 1) || !(md.Illumination >= 0 && md.Illumination <= 1) {
			t.Fatalf("phase %v / illumination %v out of range", md.Phase, md.Illumination)
		}
		if md.Time.After(at) || !at.Before(md.Time.Add(10*time.Second)) {
			t.Fatalf("MoonData.Time %v is not the cell holding %v", md.Time, at)
		}
	}
}

func TestComputeMoonData_FarDates(t *testing.T) {
	dates := []time.Time{
		time.Date(1600, 1, 1, 0, 0, 7, 0, time.UTC),
		time.Date(2300, 1, 1, 0, 0, 7, 0, time.UTC),
		time.Date(2400, 6, 1, 0, 0, 7, 0, time.UTC),
	}

	var prev MoonData
	for i, at := range dates {
		md, err := ComputeMoonData(tokyo, at)
		if err != nil {
			t.Fatalf("%v: %v", at, err)
		}
		want := at.Add(-7 * time.Second)
		if !md.Time.Equal(want) {
			t.Errorf("MoonData.Time = %v, want %v", md.Time, want)
		}
		if md.Time.Year() != at.Year() {
			t.Errorf("%v computed for year %d", at, md.Time.Year())
		}
		if i > 0 && md.Azimuth == prev.Azimuth && md.Altitude == prev.Altitude {
			t.Errorf("%v and %v gave the same position %.4f/%.4f", prev.Time, md.Time, md.Azimuth, md.Altitude)
		}
		prev = md
	}
}

func TestComputeMoonData_Extremes(t *testing.T) {
	at := time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC)
	for _, obs := range []Observer{
		{90, 0}, {-90, 0}, {0, 180}, {0, -180}, {90, 180}, {-90, -180},
	} {
		md, err := ComputeMoonData(obs, at)
		if err != nil {
			t.Errorf("%+v: %v", obs, err)
			continue
		}
		if math.IsNaN(md.Azimuth) || math.IsNaN(md.Altitude) {
			t.Errorf("%+v: NaN in %+v", obs, md)
		}
	}
}

func TestComputeMoonData_InvalidObserver(t *testing.T) {
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, obs := range []Observer{
		{91, 0}, {-90.0001, 0}, {0, 180.5}, {0, -181},
		{math.NaN(), 0}, {0, math.NaN()}, {math.Inf(1), 0}, {0, math.Inf(-1)},
	} {
		if _, err := ComputeMoonData(obs, at); !errors.Is(err, ErrInvalidObserver) {
			t.Errorf("ComputeMoonData(%+v) err = %v, want ErrInvalidObserver", obs, err)
		}
		if _, err := ComputeMoonTimes(obs, at); !errors.Is(err, ErrInvalidObserver) {
			t.Errorf("ComputeMoonTimes(%+v) err = %v, want ErrInvalidObserver", obs, err)
		}
	}
}

func TestComputeMoonData_NewMoon(t *testing.T) {
	// Total solar eclipse of 2024-04-08, conjunction at 18:21 UTC.
	md, err := ComputeMoonData(Observer{Latitude: 25, Longitude: -105}, time.Date(2024, 4, 8, 18, 21, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	d := math.Min(md.Phase, 1-md.Phase)
	if d > 0.02 {
		t.Errorf("Phase = %.4f, want ~0 on the circle", md.Phase)
	}
	if md.Illumination > 0.02 {
		t.Errorf("Illumination = %.4f, want ~0", md.Illumination)
	}
}

func TestComputeMoonData_PhaseConsistency(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var prev MoonData

	for h := 0; h < 31*24; h++ {
		md, err := ComputeMoonData(tokyo, start.Add(time.Duration(h)*time.Hour))
		if err != nil {
			t.Fatal(err)
		}

		// Phase and illumination are computed separately; they must agree.
		implied := (1 - math.Cos(2*math.Pi*md.Phase)) / 2
		if d := math.Abs(md.Illumination - implied); d > 0.01 {
			t.Fatalf("%v: illumination %.4f vs phase-implied %.4f", md.Time, md.Illumination, implied)
		}
		if md.Waxing != (md.Phase < 0.5) {
			t.Fatalf("%v: Waxing=%v with phase %.4f", md.Time, md.Waxing, md.Phase)
		}

		// Away from new and full, illumination moves with the waxing flag.
		interior := func(p float64) bool {
			return (p > 0.03 && p < 0.47) || (p > 0.53 && p < 0.97)
		}
		if h > 0 && interior(prev.Phase) && interior(md.Phase) && prev.Waxing == md.Waxing {
			if md.Waxing && md.Illumination <= prev.Illumination {
				t.Fatalf("%v: waxing but illumination fell %.5f -> %.5f", md.Time, prev.Illumination, md.Illumination)
			}
			if !md.Waxing && md.Illumination >= prev.Illumination {
				t.Fatalf("%v: waning but illumination rose %.5f -> %.5f", md.Time, prev.Illumination, md.Illumination)
			}
		}
		prev = md
	}
}

func TestComputeMoonData_Concurrent(t *testing.T) {
	at := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	want, err := ComputeMoonData(tokyo, at)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := ComputeMoonData(tokyo, at)
			if err != nil || got != want {
				errs <- "concurrent result differs"
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}

type countingRecorder struct {
	mu        sync.Mutex
	checks    int
	diverged  int
	fallbacks int
}

func (c *countingRecorder) ObserveSeparation(_ float64, diverged bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks++
	if diverged {
		c.diverged++
	}
}

func (c *countingRecorder) ObserveFallback(string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fallbacks++
}

func TestCalculator_DivergenceIsDiagnosticOnly(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	rec := &countingRecorder{}
	calc := New(
		WithLogger(zap.New(core)),
		WithDivergenceRecorder(rec),
		WithDivergenceThreshold(1e-6),
	)

	at := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	md, err := calc.ComputeMoonData(tokyo, at)
	if err != nil {
		t.Fatal(err)
	}
	ref, _ := ComputeMoonData(tokyo, at)
	if md != ref {
		t.Errorf("a tight threshold changed the result:\n%+v\n%+v", md, ref)
	}

	if logs.FilterMessage("ephemeris models diverged").Len() != 1 {
		t.Errorf("expected one divergence warning, got %v", logs.All())
	}
	if rec.checks != 1 || rec.diverged != 1 {
		t.Errorf("recorder = %+v", rec)
	}
}

func TestCalculator_WithModels(t *testing.T) {
	at := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

	md, err := New(WithModels(ApproximateModel(), nil)).ComputeMoonData(tokyo, at)
	if err != nil {
		t.Fatal(err)
	}
	if md.Model != ephemeris.ApproximateName {
		t.Errorf("Model = %q", md.Model)
	}
	if !scalar.EqualWithinAbs(md.Azimuth, 87.95, 0.5) {
		t.Errorf("approximate azimuth = %.3f°", md.Azimuth)
	}
}

type brokenModel struct{}

func (brokenModel) Name() string { return "broken" }

func (brokenModel) Evaluate(ephemeris.Input) (ephemeris.Sample, error) {
	return ephemeris.Sample{}, ephemeris.ErrNonFinite
}

func TestCalculator_Fallback(t *testing.T) {
	rec := &countingRecorder{}
	calc := New(WithModels(brokenModel{}, ApproximateModel()), WithDivergenceRecorder(rec))

	at := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	md, err := calc.ComputeMoonData(tokyo, at)
	if err != nil {
		t.Fatal(err)
	}
	if md.Model != ephemeris.ApproximateName {
		t.Errorf("Model = %q, want the secondary", md.Model)
	}
	if rec.fallbacks != 1 {
		t.Errorf("fallbacks = %d", rec.fallbacks)
	}

	if _, err := New(WithModels(brokenModel{}, brokenModel{})).ComputeMoonData(tokyo, at); !errors.Is(err, ErrNoEphemeris) {
		t.Errorf("both broken: err = %v, want ErrNoEphemeris", err)
	}
}

func TestCalculator_WithQuantizer(t *testing.T) {
	epoch := time.Date(2025, 1, 1, 0, 0, 7, 0, time.UTC)
	calc := New(WithQuantizer(time.Minute, epoch))

	got := calc.Quantize(time.Date(2025, 1, 15, 12, 0, 5, 0, time.UTC))
	want := time.Date(2025, 1, 15, 11, 59, 7, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Quantize = %v, want %v", got, want)
	}

	off := New(WithQuantizer(0, time.Time{}))
	at := time.Date(2025, 1, 15, 12, 0, 5, 123, time.UTC)
	if !off.Quantize(at).Equal(at) {
		t.Errorf("zero step should not move %v", at)
	}
}
