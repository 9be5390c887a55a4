package prometheus

import (
	"strconv"
	"time"

	"github.com/turtacn/solubility-bench/internal/intelligence/training"
	"github.com/turtacn/solubility-bench/pkg/errors"
)

// BenchMetrics holds every metric the benchmark and the server export.
type BenchMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Dataset
	DatasetRows GaugeVec

	// Training
	TrainingEpochsTotal   CounterVec
	TrainingLoss          GaugeVec
	TrainingEpochDuration HistogramVec

	// Models
	ModelFitDuration HistogramVec
	ModelTestMSE     GaugeVec
	PredictionsTotal CounterVec

	ErrorsTotal CounterVec
}

// Default buckets.
var (
	DefaultHTTPDurationBuckets  = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultEpochDurationBuckets = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}
	DefaultFitDurationBuckets   = []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800, 3600}
)

// NewBenchMetrics registers all metrics on collector.
func NewBenchMetrics(collector MetricsCollector) *BenchMetrics {
	m := &BenchMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method", "path")

	m.DatasetRows = collector.RegisterGauge("dataset_rows", "Rows per dataset partition", "partition")

	m.TrainingEpochsTotal = collector.RegisterCounter("training_epochs_total", "Completed training epochs", "model")
	m.TrainingLoss = collector.RegisterGauge("training_loss", "Mean loss of the latest epoch", "model", "split")
	m.TrainingEpochDuration = collector.RegisterHistogram("training_epoch_duration_seconds", "Epoch wall time", DefaultEpochDurationBuckets, "model")

	m.ModelFitDuration = collector.RegisterHistogram("model_fit_duration_seconds", "Model fit wall time", DefaultFitDurationBuckets, "model")
	m.ModelTestMSE = collector.RegisterGauge("model_test_mse", "Test mean squared error", "model")
	m.PredictionsTotal = collector.RegisterCounter("predictions_total", "Served predictions", "model", "status")

	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "code")

	return m
}

// ObserveEpoch implements training.Observer.
func (m *BenchMetrics) ObserveEpoch(s training.EpochStats) {
	m.TrainingEpochsTotal.WithLabelValues(s.Model).Inc()
	m.TrainingLoss.WithLabelValues(s.Model, "train").Set(s.TrainLoss)
	m.TrainingLoss.WithLabelValues(s.Model, "val").Set(s.ValLoss)
	m.TrainingEpochDuration.WithLabelValues(s.Model).Observe(s.Duration.Seconds())
}

var _ training.Observer = (*BenchMetrics)(nil)

// Helpers

func RecordHTTPRequest(m *BenchMetrics, method, path string, statusCode int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordModelScore publishes a test MSE.  Fit time is observed through a
// Timer on ModelFitDuration.
func RecordModelScore(m *BenchMetrics, model string, mse float64) {
	m.ModelTestMSE.WithLabelValues(model).Set(mse)
}

func RecordPrediction(m *BenchMetrics, model string, ok bool) {
	status := "success"
	if !ok {
		status = "failure"
	}
	m.PredictionsTotal.WithLabelValues(model, status).Inc()
}

// RecordError counts err under its application error code.
func RecordError(m *BenchMetrics, component string, err error) {
	if err == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(component, string(errors.GetCode(err))).Inc()
}

//Personal.AI order the ending
