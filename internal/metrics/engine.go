package metrics

import "github.com/prometheus/client_golang/prometheus"

// Build status label values.
const (
	BuildOK     = "ok"
	BuildFailed = "error"
)

// Query kind label values.
const (
	QueryFillAll = "fill_all"
	QuerySearch  = "search"
)

// Engine Prometheus metrics.
var (
	IndexDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "vocabsearch",
			Name:      "index_documents",
			Help:      "Number of documents in the active index",
		},
	)

	IndexBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "vocabsearch",
			Name:      "index_build_duration_seconds",
			Help:      "Index build duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	IndexBuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vocabsearch",
			Name:      "index_builds_total",
			Help:      "Total index builds by outcome",
		},
		[]string{"status"},
	)

	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vocabsearch",
			Name:      "queries_total",
			Help:      "Total engine queries by evaluation path",
		},
		[]string{"kind"}, // "fill_all" / "search"
	)

	SelectionPersistErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vocabsearch",
			Name:      "selection_persist_errors_total",
			Help:      "Failed writes of selection state to storage",
		},
	)
)

var engineMetricsRegistered bool

// RegisterEngineMetrics registers the index, query and selection metrics. Must be called once from main.
func RegisterEngineMetrics() {
	if engineMetricsRegistered {
		return
	}
	prometheus.MustRegister(IndexDocuments)
	prometheus.MustRegister(IndexBuildDuration)
	prometheus.MustRegister(IndexBuildsTotal)
	prometheus.MustRegister(QueriesTotal)
	prometheus.MustRegister(SelectionPersistErrorsTotal)
	engineMetricsRegistered = true
}
