package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "streameval"

// Stream evaluation Prometheus metrics.
var (
	BatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Batches received, by outcome",
		},
		[]string{"status"}, // "processed" / "empty" / "malformed"
	)

	RecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Records received, by outcome",
		},
		[]string{"status"}, // "evaluated" / "skipped"
	)

	ModelAccuracy = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_accuracy",
			Help:      "Accuracy of the most recent batch per model",
		},
		[]string{"model"},
	)

	PredictionFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_failures_total",
			Help:      "Batches a model failed to predict or score",
		},
		[]string{"model"},
	)

	PredictionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Per-model inference time for one batch",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"model"},
	)

	BatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "End-to-end processing time of one non-empty batch",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	RunsCompletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_completed_total",
			Help:      "Completed reporting cycles",
		},
	)

	ReportErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_errors_total",
			Help:      "Summary reporter failures",
		},
		[]string{"reporter"},
	)
)

var registerOnce sync.Once

// RegisterStreamMetrics registers the stream metrics with the default
// registry. Safe to call more than once.
func RegisterStreamMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			BatchesTotal,
			RecordsTotal,
			ModelAccuracy,
			PredictionFailuresTotal,
			PredictionDuration,
			BatchDuration,
			RunsCompletedTotal,
			ReportErrorsTotal,
			httpRequestDuration,
			httpRequestsTotal,
		)
	})
}
