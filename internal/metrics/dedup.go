package metrics

import "github.com/prometheus/client_golang/prometheus"

// Duplicate detection cascade metrics.
var (
	DedupChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dupdex",
			Name:      "dedup_checks_total",
			Help:      "Total duplicate detection calls by verdict",
		},
		[]string{"verdict"}, // "duplicate_detected" / "pending"
	)

	DedupStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dupdex",
			Name:      "dedup_stage_duration_seconds",
			Help:      "Cascade stage duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"stage"}, // "exact" / "structural" / "semantic"
	)

	DedupMatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dupdex",
			Name:      "dedup_matches_total",
			Help:      "Duplicate matches returned, by producing stage",
		},
		[]string{"match_type"},
	)

	DedupStageErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dupdex",
			Name:      "dedup_stage_errors_total",
			Help:      "Stage failures swallowed by the cascade",
		},
		[]string{"stage"},
	)
)

var dedupMetricsRegistered bool

// RegisterDedupMetrics registers cascade metrics. Must be called once from main.
func RegisterDedupMetrics() {
	if dedupMetricsRegistered {
		return
	}
	prometheus.MustRegister(DedupChecksTotal)
	prometheus.MustRegister(DedupStageDuration)
	prometheus.MustRegister(DedupMatchesTotal)
	prometheus.MustRegister(DedupStageErrorsTotal)
	dedupMetricsRegistered = true
}
