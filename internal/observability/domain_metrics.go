package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	questionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "officeql_questions_total",
			Help: "Total number of answered questions by pipeline outcome.",
		},
		[]string{"outcome"},
	)
	modelCallDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "officeql_model_call_duration_seconds",
			Help:    "Completion model call latency by pipeline stage.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 45},
		},
		[]string{"stage"},
	)
	queryDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "officeql_query_duration_seconds",
			Help:    "Generated SQL execution latency.",
			Buckets: prometheus.DefBuckets,
		},
	)
	resultRows = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "officeql_result_rows",
			Help:    "Row counts returned by generated SQL.",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100, 500, 1000},
		},
	)
)

func init() {
	prometheus.MustRegister(
		questionsTotal,
		modelCallDurationSeconds,
		queryDurationSeconds,
		resultRows,
	)
}

func ObserveQuestion(outcome string) {
	questionsTotal.WithLabelValues(outcome).Inc()
}

func ObserveModelCall(stage string, elapsed time.Duration) {
	modelCallDurationSeconds.WithLabelValues(stage).Observe(elapsed.Seconds())
}

func ObserveQueryExecution(rows int, elapsed time.Duration) {
	queryDurationSeconds.Observe(elapsed.Seconds())
	if rows < 0 {
		rows = 0
	}
	resultRows.Observe(float64(rows))
}
