package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedbacklens_analyses_total",
			Help: "Total feedback analyses by terminal status",
		},
		[]string{"status"},
	)

	AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feedbacklens_analysis_duration_seconds",
			Help:    "End-to-end duration of one feedback analysis",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)

	OracleAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedbacklens_oracle_attempts_total",
			Help: "Analysis oracle call attempts by outcome",
		},
		[]string{"outcome"},
	)

	ReviewFlaggedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "feedbacklens_review_flagged_total",
			Help: "Analyses escalated for human review",
		},
	)

	ConfidenceScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feedbacklens_confidence_score",
			Help:    "Oracle confidence of validated analyses",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)

	BatchItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedbacklens_batch_items_total",
			Help: "Bulk analysis items by per-item result",
		},
		[]string{"result"},
	)

	TranslationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedbacklens_translation_requests_total",
			Help: "Translation oracle requests by status",
		},
		[]string{"status"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedbacklens_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedbacklens_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)
)

func Init() {
	prometheus.MustRegister(AnalysesTotal)
	prometheus.MustRegister(AnalysisDuration)
	prometheus.MustRegister(OracleAttemptsTotal)
	prometheus.MustRegister(ReviewFlaggedTotal)
	prometheus.MustRegister(ConfidenceScore)
	prometheus.MustRegister(BatchItemsTotal)
	prometheus.MustRegister(TranslationRequestsTotal)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
