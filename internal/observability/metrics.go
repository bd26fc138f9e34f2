package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "heartcheck"

const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid_input"
	OutcomeFailure = "failure"
)

// Metrics holds the prediction counters. Safe for concurrent use.
type Metrics struct {
	PredictionsTotal   *prometheus.CounterVec
	PredictionDuration *prometheus.HistogramVec
	PredictedClass     *prometheus.CounterVec
	ModelInfo          *prometheus.GaugeVec
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PredictionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "predictions_total",
				Help:      "Prediction requests by outcome",
			},
			[]string{"outcome"},
		),
		PredictionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "prediction_duration_seconds",
				Help:      "Time spent transforming input and running the model",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
			[]string{"outcome"},
		),
		PredictedClass: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "predicted_class_total",
				Help:      "Successful predictions by predicted label",
			},
			[]string{"label"},
		),
		ModelInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "model_info",
				Help:      "Loaded model artifact; value is the number of trees",
			},
			[]string{"path"},
		),
	}
	reg.MustRegister(m.PredictionsTotal, m.PredictionDuration, m.PredictedClass, m.ModelInfo)
	return m
}

func (m *Metrics) ObservePrediction(outcome, label string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.PredictionsTotal.WithLabelValues(outcome).Inc()
	m.PredictionDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	if outcome == OutcomeSuccess {
		m.PredictedClass.WithLabelValues(label).Inc()
	}
}

func (m *Metrics) SetModel(path string, trees int) {
	if m == nil {
		return
	}
	m.ModelInfo.WithLabelValues(path).Set(float64(trees))
}
