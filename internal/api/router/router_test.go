package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medical-consult-assistant/internal/agent"
	"medical-consult-assistant/internal/consultation"
	"medical-consult-assistant/internal/emotion"
	"medical-consult-assistant/internal/observability/metrics"
	"medical-consult-assistant/pkg/logging"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := logging.Discard()
	reg := prometheus.NewRegistry()
	m := metrics.NewAssistantMetrics(reg)
	svc := consultation.NewService(consultation.Deps{
		Scorer:    emotion.NewScorer(emotion.NewVaderAnalyzer()),
		Generator: agent.NewDisabled(),
		Metrics:   m,
		Logger:    logger,
	})

	return New(&Config{
		Logger:              logger,
		ConsultationHandler: consultation.NewHandler(svc, logger),
		MetricsHandler:      metrics.Handler(reg),
		CORSAllowedOrigins:  []string{"*"},
	})
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.NotEmpty(t, resp["message"])
}

func TestRouterConsultationFlow(t *testing.T) {
	router := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/start-session", strings.NewReader(`{}`)))
	require.Equal(t, http.StatusOK, rr.Code)
	var started map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&started))
	id := started["session_id"].(string)

	body := bytes.NewBufferString(`{"text":"I have a sharp pain in my chest","session_id":"` + id + `"}`)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/generate-question", body))
	require.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, consultation.SourceFallback, resp["source"])
	assert.NotEmpty(t, resp["follow_up_question"])

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `consult_fallback_total{reason="disabled"} 1`)
}

func TestRouterCORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/generate-question", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}
