package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	MessagesTotal   *prometheus.CounterVec
	MessageDuration *prometheus.HistogramVec

	GenerationsTotal    *prometheus.CounterVec
	GenerationDuration  *prometheus.HistogramVec
	GenerationsInFlight prometheus.Gauge

	IterationsPerRun prometheus.Histogram
	QualityScore     prometheus.Histogram
	ExitReasonsTotal *prometheus.CounterVec
	RollbacksTotal   prometheus.Counter

	LLMRequestsTotal   *prometheus.CounterVec
	LLMRequestDuration *prometheus.HistogramVec

	SearchRequestsTotal   *prometheus.CounterVec
	SearchRequestDuration *prometheus.HistogramVec

	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	RateLimitHitsTotal *prometheus.CounterVec

	ActiveUsersTotal prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		MessagesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docsmith_bot_messages_total",
				Help: "Total number of bot messages processed",
			},
			[]string{"type", "status"},
		),
		MessageDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docsmith_bot_message_duration_seconds",
				Help:    "Bot message handling duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"type"},
		),

		GenerationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docsmith_generations_total",
				Help: "Total number of document generations",
			},
			[]string{"type", "status"},
		),
		GenerationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docsmith_generation_duration_seconds",
				Help:    "Full refinement loop duration in seconds",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"type"},
		),
		GenerationsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "docsmith_generations_in_flight",
				Help: "Number of generations currently running",
			},
		),

		IterationsPerRun: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "docsmith_iterations_per_run",
				Help:    "Refinement iterations spent per generation",
				Buckets: []float64{1, 2, 3, 4, 5, 6, 7, 8},
			},
		),
		QualityScore: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "docsmith_quality_score",
				Help:    "Final quality score of generated documents",
				Buckets: []float64{0.5, 0.6, 0.7, 0.75, 0.8, 0.85, 0.9, 0.95, 0.99},
			},
		),
		ExitReasonsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docsmith_exit_reasons_total",
				Help: "Loop exit conditions by normalized reason",
			},
			[]string{"reason"},
		),
		RollbacksTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "docsmith_rollbacks_total",
				Help: "Iterations rejected for quality regression",
			},
		),

		LLMRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docsmith_llm_requests_total",
				Help: "Total number of LLM API requests",
			},
			[]string{"provider", "status"},
		),
		LLMRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docsmith_llm_request_duration_seconds",
				Help:    "LLM request duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"provider"},
		),

		SearchRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docsmith_search_requests_total",
				Help: "Total number of search API requests",
			},
			[]string{"status"},
		),
		SearchRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docsmith_search_request_duration_seconds",
				Help:    "Search request duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{},
		),

		CacheHitsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "docsmith_cache_hits_total",
				Help: "Total number of cache hits",
			},
		),
		CacheMissesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "docsmith_cache_misses_total",
				Help: "Total number of cache misses",
			},
		),

		RateLimitHitsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docsmith_rate_limit_hits_total",
				Help: "Total number of rate limit hits",
			},
			[]string{"user_id"},
		),

		ActiveUsersTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "docsmith_active_users",
				Help: "Number of active users in the last hour",
			},
		),
	}

	return m
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func (m *Metrics) RecordMessage(msgType, status string, duration time.Duration) {
	m.MessagesTotal.WithLabelValues(msgType, status).Inc()
	m.MessageDuration.WithLabelValues(msgType).Observe(duration.Seconds())
}

// RecordGeneration пишет всю сводку одного прогона цикла
func (m *Metrics) RecordGeneration(docType, status, exitReason string, iterations int, quality float64, duration time.Duration) {
	m.GenerationsTotal.WithLabelValues(docType, status).Inc()
	m.GenerationDuration.WithLabelValues(docType).Observe(duration.Seconds())
	m.IterationsPerRun.Observe(float64(iterations))
	if quality > 0 {
		m.QualityScore.Observe(quality)
	}
	m.ExitReasonsTotal.WithLabelValues(normalizeExitReason(exitReason)).Inc()
}

// Причины выхода содержат числа, для метки они сводятся к имени условия
func normalizeExitReason(reason string) string {
	switch {
	case strings.HasPrefix(reason, "Quality threshold"):
		return "quality_threshold"
	case strings.HasPrefix(reason, "No major issues"):
		return "critic_satisfied"
	case strings.HasPrefix(reason, "Maximum iterations"):
		return "iteration_limit"
	case strings.HasPrefix(reason, "Timeout"):
		return "timeout"
	case reason == "":
		return "failed"
	default:
		return "other"
	}
}

func (m *Metrics) RecordRollback() {
	m.RollbacksTotal.Inc()
}

func (m *Metrics) RecordLLMRequest(provider, status string, duration time.Duration) {
	m.LLMRequestsTotal.WithLabelValues(provider, status).Inc()
	m.LLMRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

func (m *Metrics) RecordSearchRequest(status string, duration time.Duration) {
	m.SearchRequestsTotal.WithLabelValues(status).Inc()
	m.SearchRequestDuration.WithLabelValues().Observe(duration.Seconds())
}

func (m *Metrics) RecordCacheHit() {
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	m.CacheMissesTotal.Inc()
}

func (m *Metrics) RecordRateLimitHit(userID string) {
	m.RateLimitHitsTotal.WithLabelValues(userID).Inc()
}

func (m *Metrics) SetActiveUsers(count float64) {
	m.ActiveUsersTotal.Set(count)
}

func (m *Metrics) IncGenerationsInFlight() {
	m.GenerationsInFlight.Inc()
}

func (m *Metrics) DecGenerationsInFlight() {
	m.GenerationsInFlight.Dec()
}
