package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AssistantMetrics exposes counters/histograms for scoring and generation flows.
type AssistantMetrics struct {
	alertsTotal       *prometheus.CounterVec
	generationsTotal  *prometheus.CounterVec
	fallbackTotal     *prometheus.CounterVec
	generationLatency *prometheus.HistogramVec
}

func NewAssistantMetrics(reg prometheus.Registerer) *AssistantMetrics {
	m := &AssistantMetrics{
		alertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "consult",
			Name:      "emotion_alerts_total",
			Help:      "Patient utterances scored, by alert level",
		}, []string{"level"}),
		generationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "consult",
			Name:      "generation_attempts_total",
			Help:      "Calls to the text generation backend, by outcome",
		}, []string{"provider", "outcome"}),
		fallbackTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "consult",
			Name:      "fallback_total",
			Help:      "Follow-up questions served from the local pool",
		}, []string{"reason"}),
		generationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "consult",
			Name:      "generation_latency_seconds",
			Help:      "Latency of generation requests including retries",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.alertsTotal, m.generationsTotal, m.fallbackTotal, m.generationLatency)
	return m
}

func (m *AssistantMetrics) ObserveAlert(level string) {
	if m == nil {
		return
	}
	m.alertsTotal.WithLabelValues(level).Inc()
}

func (m *AssistantMetrics) ObserveGeneration(provider, outcome string) {
	if m == nil {
		return
	}
	m.generationsTotal.WithLabelValues(provider, outcome).Inc()
}

func (m *AssistantMetrics) ObserveFallback(reason string) {
	if m == nil {
		return
	}
	m.fallbackTotal.WithLabelValues(reason).Inc()
}

func (m *AssistantMetrics) ObserveLatency(kind string, seconds float64) {
	if m == nil {
		return
	}
	m.generationLatency.WithLabelValues(kind).Observe(seconds)
}

// Handler serves the given gatherer in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
