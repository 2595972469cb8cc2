package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.Analysis(OutcomeSuccess)
	m.Analysis(OutcomeSuccess)
	m.Analysis(OutcomeFallback)
	m.VisionAttempts(1)
	m.VisionAttempts(4)
	m.Persisted()
	m.PersistFailed()
	m.UploadFailed()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.analyses.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.analyses.WithLabelValues(OutcomeFallback)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.visionRetries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.persisted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.persistFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.uploadFailures))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Analysis(OutcomeError)
		m.VisionAttempts(3)
		m.Persisted()
		m.PersistFailed()
		m.UploadFailed()
		m.ObserveRequest("GET", "/health", "200", time.Millisecond)
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.PersistFailed()
	m.ObserveRequest("POST", "/analyze-food", "200", 2*time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "foodlens_persist_failures_total 1")
	assert.Contains(t, string(body), `foodlens_http_request_duration_seconds_count{method="POST",route="/analyze-food",status="200"} 1`)
}
