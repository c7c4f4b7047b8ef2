package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssistantMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAssistantMetrics(reg)

	m.ObserveAlert("HIGH")
	m.ObserveAlert("HIGH")
	m.ObserveGeneration("gemini", "rate_limited")
	m.ObserveFallback("disabled")
	m.ObserveLatency("question", 0.2)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.alertsTotal.WithLabelValues("HIGH")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.generationsTotal.WithLabelValues("gemini", "rate_limited")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.fallbackTotal.WithLabelValues("disabled")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.generationLatency))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *AssistantMetrics
	assert.NotPanics(t, func() {
		m.ObserveAlert("LOW")
		m.ObserveGeneration("openai", "success")
		m.ObserveFallback("error")
		m.ObserveLatency("summary", 1)
	})
}

func TestHandlerServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAssistantMetrics(reg)
	m.ObserveFallback("rate_limited")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `consult_fallback_total{reason="rate_limited"} 1`))
}
