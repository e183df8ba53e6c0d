// Package metrics exposes Prometheus collectors for the moon engine and the
// live server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/thurmanmarka/moonglide"
)

// Metrics holds all collectors. It satisfies moonglide.DivergenceRecorder.
type Metrics struct {
	azimuth      prometheus.Gauge
	altitude     prometheus.Gauge
	illumination prometheus.Gauge
	phase        prometheus.Gauge
	distance     prometheus.Gauge
	lastUpdate   prometheus.Gauge

	separation *prometheus.HistogramVec // by diverged
	divergence prometheus.Counter
	fallbacks  *prometheus.CounterVec // from, to

	wsClients  prometheus.Gauge
	wsMessages *prometheus.CounterVec // message type
	events     *prometheus.CounterVec // rise, set
}

var _ moonglide.DivergenceRecorder = (*Metrics)(nil)

// New creates all collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		azimuth: f.NewGauge(prometheus.GaugeOpts{
			Name: "moonglide_moon_azimuth_degrees",
			Help: "Moon azimuth for the configured observer, degrees clockwise from north",
		}),
		altitude: f.NewGauge(prometheus.GaugeOpts{
			Name: "moonglide_moon_altitude_degrees",
			Help: "Apparent Moon altitude for the configured observer",
		}),
		illumination: f.NewGauge(prometheus.GaugeOpts{
			Name: "moonglide_moon_illumination_ratio",
			Help: "Illuminated fraction of the lunar disk",
		}),
		phase: f.NewGauge(prometheus.GaugeOpts{
			Name: "moonglide_moon_phase_cycle",
			Help: "Position in the synodic cycle (0 new, 0.5 full)",
		}),
		distance: f.NewGauge(prometheus.GaugeOpts{
			Name: "moonglide_moon_distance_km",
			Help: "Earth-Moon distance in kilometers",
		}),
		lastUpdate: f.NewGauge(prometheus.GaugeOpts{
			Name: "moonglide_moon_last_update_timestamp_seconds",
			Help: "Unix time of the last published Moon sample",
		}),
		separation: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "moonglide_model_separation_degrees",
			Help:    "Great-circle separation between the precise and approximate models",
			Buckets: []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1, 2, 5},
		}, []string{"diverged"}),
		divergence: f.NewCounter(prometheus.CounterOpts{
			Name: "moonglide_model_divergence_total",
			Help: "Evaluations where the models disagreed by more than the threshold",
		}),
		fallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "moonglide_model_fallback_total",
			Help: "Evaluations served by the secondary model",
		}, []string{"from", "to"}),
		wsClients: f.NewGauge(prometheus.GaugeOpts{
			Name: "moonglide_ws_clients",
			Help: "Connected websocket clients",
		}),
		wsMessages: f.NewCounterVec(prometheus.CounterOpts{
			Name: "moonglide_ws_messages_sent_total",
			Help: "Websocket messages sent, by type",
		}, []string{"type"}),
		events: f.NewCounterVec(prometheus.CounterOpts{
			Name: "moonglide_moon_events_total",
			Help: "Scheduled moonrise/moonset events fired",
		}, []string{"event"}),
	}
}

// ObserveSeparation records one reconciliation.
func (m *Metrics) ObserveSeparation(deg float64, diverged bool) {
	label := "false"
	if diverged {
		label = "true"
		m.divergence.Inc()
	}
	m.separation.WithLabelValues(label).Observe(deg)
}

// ObserveFallback records an evaluation answered by the secondary model.
func (m *Metrics) ObserveFallback(from, to string) {
	m.fallbacks.WithLabelValues(from, to).Inc()
}

// ObserveMoon publishes the latest sample.
func (m *Metrics) ObserveMoon(md moonglide.MoonData) {
	m.azimuth.Set(md.Azimuth)
	m.altitude.Set(md.Altitude)
	m.illumination.Set(md.Illumination)
	m.phase.Set(md.Phase)
	m.distance.Set(md.Distance)
	m.lastUpdate.Set(float64(md.Time.Unix()))
}

// RecordWSConnection and RecordWSDisconnect track live clients.
func (m *Metrics) RecordWSConnection() { m.wsClients.Inc() }

func (m *Metrics) RecordWSDisconnect() { m.wsClients.Dec() }

// RecordWSMessageSent counts an outbound message of the given type.
func (m *Metrics) RecordWSMessageSent(msgType string) {
	m.wsMessages.WithLabelValues(msgType).Inc()
}

// RecordEvent counts a fired rise or set.
func (m *Metrics) RecordEvent(event string) {
	m.events.WithLabelValues(event).Inc()
}
