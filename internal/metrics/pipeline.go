package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Pipeline and query Prometheus metrics.
var (
	CatalogBooks = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "bookrec",
		Name:      "catalog_books",
		Help:      "Distinct ISBNs in the catalog",
	})

	JoinedRatings = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "bookrec",
		Name:      "joined_ratings",
		Help:      "Ratings that matched a catalog ISBN",
	})

	IndexUsers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "bookrec",
		Name:      "index_users",
		Help:      "Users surviving the density filters",
	})

	IndexTitles = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "bookrec",
		Name:      "index_titles",
		Help:      "Titles surviving the density filters",
	})

	DroppedRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookrec",
			Name:      "dropped_rows_total",
			Help:      "Input rows dropped during the build",
		},
		[]string{"reason"},
	)

	BuildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bookrec",
			Name:      "build_stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"stage"},
	)

	RecommendQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookrec",
			Name:      "recommend_queries_total",
			Help:      "Recommendation queries by outcome",
		},
		[]string{"outcome"}, // "ok" / "not_found" / "error"
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers pipeline and query metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(CatalogBooks)
	prometheus.MustRegister(JoinedRatings)
	prometheus.MustRegister(IndexUsers)
	prometheus.MustRegister(IndexTitles)
	prometheus.MustRegister(DroppedRowsTotal)
	prometheus.MustRegister(BuildDuration)
	prometheus.MustRegister(RecommendQueriesTotal)
	pipelineMetricsRegistered = true
}

// Recorder feeds the package metrics from the build pipeline and the query path.
type Recorder struct{}

// StageDone records how long a build stage took.
func (Recorder) StageDone(stage string, d time.Duration) {
	BuildDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// Dropped counts input rows discarded for reason.
func (Recorder) Dropped(reason string, n int) {
	if n > 0 {
		DroppedRowsTotal.WithLabelValues(reason).Add(float64(n))
	}
}

// Sizes publishes the size of the built snapshot.
func (Recorder) Sizes(books, joined, users, titles int) {
	CatalogBooks.Set(float64(books))
	JoinedRatings.Set(float64(joined))
	IndexUsers.Set(float64(users))
	IndexTitles.Set(float64(titles))
}

// RecordQuery counts a recommendation query outcome.
func (Recorder) RecordQuery(outcome string) {
	RecommendQueriesTotal.WithLabelValues(outcome).Inc()
}
