// Package metrics exposes Prometheus collectors for the analyze pipeline and
// the HTTP layer.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Analysis outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"
)

// Metrics holds the server's collectors on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	analyses        *prometheus.CounterVec
	visionRetries   prometheus.Counter
	persisted       prometheus.Counter
	persistFailures prometheus.Counter
	uploadFailures  prometheus.Counter
	requestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foodlens_analyses_total",
			Help: "Analyze requests by outcome.",
		}, []string{"outcome"}),
		visionRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "foodlens_vision_retries_total",
			Help: "Vision API requests retried after a rate limit.",
		}),
		persisted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "foodlens_persisted_total",
			Help: "Analysis records written.",
		}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "foodlens_persist_failures_total",
			Help: "Analysis records that failed to write.",
		}),
		uploadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "foodlens_image_upload_failures_total",
			Help: "Images that failed to upload to object storage.",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "foodlens_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.analyses,
		m.visionRetries,
		m.persisted,
		m.persistFailures,
		m.uploadFailures,
		m.requestDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Analysis(outcome string) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(outcome).Inc()
}

// VisionAttempts records the retries implied by n upstream attempts.
func (m *Metrics) VisionAttempts(n int) {
	if m == nil || n <= 1 {
		return
	}
	m.visionRetries.Add(float64(n - 1))
}

func (m *Metrics) Persisted() {
	if m == nil {
		return
	}
	m.persisted.Inc()
}

func (m *Metrics) PersistFailed() {
	if m == nil {
		return
	}
	m.persistFailures.Inc()
}

func (m *Metrics) UploadFailed() {
	if m == nil {
		return
	}
	m.uploadFailures.Inc()
}

func (m *Metrics) ObserveRequest(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}
