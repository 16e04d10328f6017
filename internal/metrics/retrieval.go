package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval pipeline Prometheus metrics.
var (
	RetrievalRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "groundex",
			Name:      "retrieval_requests_total",
			Help:      "Total number of retrieval requests",
		},
		[]string{"profile", "status"},
	)

	RetrievalEmptyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "groundex",
			Name:      "retrieval_empty_total",
			Help:      "Retrievals that produced no context",
		},
		[]string{"profile"},
	)

	KeywordAugmentationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "groundex",
			Name:      "keyword_augmentation_total",
			Help:      "Keyword augmentation outcomes",
		},
		[]string{"status"}, // "hit" / "empty" / "skipped" / "error"
	)

	PackedTokensHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "groundex",
			Name:      "packed_context_tokens",
			Help:      "Estimated token size of packed context",
			Buckets:   []float64{100, 250, 500, 750, 1000, 1500, 2000, 3000},
		},
		[]string{"profile"},
	)
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers Prometheus retrieval metrics. Must be called once from main.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(RetrievalRequestsTotal)
	prometheus.MustRegister(RetrievalEmptyTotal)
	prometheus.MustRegister(KeywordAugmentationTotal)
	prometheus.MustRegister(PackedTokensHistogram)
	retrievalMetricsRegistered = true
}
