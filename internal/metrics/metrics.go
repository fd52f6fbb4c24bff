// ABOUTME: Prometheus metrics for the player
// ABOUTME: Counters for loads, playback runs and HTTP traffic plus playback gauges
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for pcmscope.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry           *prometheus.Registry
	requestsTotal      prometheus.Counter
	errorsTotal        prometheus.Counter
	loadsTotal         prometheus.Counter
	decodedBytesTotal  prometheus.Counter
	truncatedTotal     prometheus.Counter
	runsStartedTotal   prometheus.Counter
	runsCompletedTotal prometheus.Counter
	staleEndsTotal     prometheus.Counter
	playbackState      prometheus.Gauge
	playbackPosition   prometheus.Gauge
	streamClients      prometheus.Gauge
}

// New creates and registers Prometheus metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pcmscope_http_requests_total",
			Help: "Total number of HTTP requests received",
		}),
		errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pcmscope_http_errors_total",
			Help: "Total number of HTTP responses with error status (4xx or 5xx)",
		}),
		loadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pcmscope_loads_total",
			Help: "Total number of files loaded into a session",
		}),
		decodedBytesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pcmscope_decoded_bytes_total",
			Help: "Total number of PCM bytes decoded",
		}),
		truncatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pcmscope_truncated_files_total",
			Help: "Total number of loaded files with a trailing partial frame",
		}),
		runsStartedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pcmscope_playback_runs_started_total",
			Help: "Total number of playback runs started on the audio backend",
		}),
		runsCompletedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pcmscope_playback_runs_completed_total",
			Help: "Total number of playback runs that played to the end",
		}),
		staleEndsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pcmscope_stale_stream_ends_total",
			Help: "Total number of end-of-stream reports ignored as stale",
		}),
		playbackState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pcmscope_playback_state",
			Help: "Playback state (0 stopped, 1 playing, 2 paused)",
		}),
		playbackPosition: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pcmscope_playback_position_seconds",
			Help: "Current playback position in seconds",
		}),
		streamClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pcmscope_stream_clients",
			Help: "Number of connected websocket status clients",
		}),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.errorsTotal,
		m.loadsTotal,
		m.decodedBytesTotal,
		m.truncatedTotal,
		m.runsStartedTotal,
		m.runsCompletedTotal,
		m.staleEndsTotal,
		m.playbackState,
		m.playbackPosition,
		m.streamClients,
	)

	return m
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	if m == nil {
		return
	}
	m.requestsTotal.Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	if m == nil {
		return
	}
	m.errorsTotal.Inc()
}

// ObserveLoad records a loaded file of n bytes.
func (m *Metrics) ObserveLoad(n int, truncated bool) {
	if m == nil {
		return
	}
	m.loadsTotal.Inc()
	m.decodedBytesTotal.Add(float64(n))
	if truncated {
		m.truncatedTotal.Inc()
	}
}

// IncRunsStarted increments the playback runs started counter.
func (m *Metrics) IncRunsStarted() {
	if m == nil {
		return
	}
	m.runsStartedTotal.Inc()
}

// IncRunsCompleted increments the playback runs completed counter.
func (m *Metrics) IncRunsCompleted() {
	if m == nil {
		return
	}
	m.runsCompletedTotal.Inc()
}

// IncStaleEnds increments the ignored end-of-stream counter.
func (m *Metrics) IncStaleEnds() {
	if m == nil {
		return
	}
	m.staleEndsTotal.Inc()
}

// SetPlayback sets the playback state and position gauges.
func (m *Metrics) SetPlayback(state int, position float64) {
	if m == nil {
		return
	}
	m.playbackState.Set(float64(state))
	m.playbackPosition.Set(position)
}

// AddStreamClients adjusts the websocket client gauge.
func (m *Metrics) AddStreamClients(delta int) {
	if m == nil {
		return
	}
	m.streamClients.Add(float64(delta))
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
