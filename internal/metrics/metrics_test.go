package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"

	"github.com/thurmanmarka/moonglide"
)

func gather(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("metric %s not registered", name)
	return nil
}

func TestObserveSeparation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveSeparation(0.08, false)
	m.ObserveSeparation(0.2, false)
	m.ObserveSeparation(1.7, true)

	if got := testutil.ToFloat64(m.divergence); got != 1 {
		t.Errorf("divergence total = %v, want 1", got)
	}

	var samples uint64
	for _, metric := range gather(t, reg, "moonglide_model_separation_degrees").GetMetric() {
		samples += metric.GetHistogram().GetSampleCount()
	}
	if samples != 3 {
		t.Errorf("histogram samples = %d, want 3", samples)
	}
}

func TestObserveFallback(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveFallback("precise", "approximate")
	m.ObserveFallback("precise", "approximate")

	if got := testutil.ToFloat64(m.fallbacks.WithLabelValues("precise", "approximate")); got != 2 {
		t.Errorf("fallback total = %v, want 2", got)
	}
}

func TestObserveMoon(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	at := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	m.ObserveMoon(moonglide.MoonData{
		Time:         at,
		Azimuth:      87.95,
		Altitude:     31.9,
		Phase:        0.553,
		Illumination: 0.97,
		Distance:     387936,
	})

	cases := []struct {
		name string
		g    prometheus.Gauge
		want float64
	}{
		{"azimuth", m.azimuth, 87.95},
		{"altitude", m.altitude, 31.9},
		{"phase", m.phase, 0.553},
		{"illumination", m.illumination, 0.97},
		{"distance", m.distance, 387936},
		{"last update", m.lastUpdate, float64(at.Unix())},
	}
	for _, tc := range cases {
		if got := testutil.ToFloat64(tc.g); got != tc.want {
			t.Errorf("%s = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestWebsocketCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordWSConnection()
	m.RecordWSConnection()
	m.RecordWSDisconnect()
	m.RecordWSMessageSent("moon")
	m.RecordEvent("rise")

	if got := testutil.ToFloat64(m.wsClients); got != 1 {
		t.Errorf("clients = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.wsMessages.WithLabelValues("moon")); got != 1 {
		t.Errorf("moon messages = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.events.WithLabelValues("rise")); got != 1 {
		t.Errorf("rise events = %v, want 1", got)
	}
}

func TestRecorderWiredIntoCalculator(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	calc := moonglide.New(moonglide.WithDivergenceRecorder(m))
	if _, err := calc.ComputeMoonData(moonglide.Observer{Latitude: 35.6762, Longitude: 139.6503}, time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}

	if n := testutil.CollectAndCount(m.separation); n != 1 {
		t.Errorf("separation series = %d, want 1", n)
	}
	if got := testutil.ToFloat64(m.divergence); got != 0 {
		t.Errorf("divergence total = %v, want 0 for agreeing models", got)
	}
}

func TestNewRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected duplicate registration to panic")
		}
	}()
	New(reg)
}
