// Package monitoring exposes prediction metrics in Prometheus format.
package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"examscore/ml"
)

// Metrics implements ml.Observer.
type Metrics struct {
	registry *prometheus.Registry

	predictions  *prometheus.CounterVec
	latency      prometheus.Histogram
	modelLoaded  prometheus.Gauge
	modelColumns prometheus.Gauge
	modelReloads prometheus.Counter
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		predictions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "examscore_predictions_total",
			Help: "Prediction requests by outcome.",
		}, []string{"outcome"}),
		latency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "examscore_prediction_duration_seconds",
			Help:    "Time spent encoding and scoring one record.",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		modelLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "examscore_model_loaded",
			Help: "1 when a model artifact is being served.",
		}),
		modelColumns: factory.NewGauge(prometheus.GaugeOpts{
			Name: "examscore_model_expected_columns",
			Help: "Number of expected feature columns declared by the current artifact.",
		}),
		modelReloads: factory.NewCounter(prometheus.CounterOpts{
			Name: "examscore_model_swaps_total",
			Help: "Model artifacts made current since start.",
		}),
	}
}

func (m *Metrics) ObservePrediction(outcome string, elapsed time.Duration) {
	m.predictions.WithLabelValues(outcome).Inc()
	m.latency.Observe(elapsed.Seconds())
}

// ObserveArtifact is registered with ml.ArtifactStore.OnSwap.
func (m *Metrics) ObserveArtifact(a *ml.Artifact) {
	if a == nil {
		m.modelLoaded.Set(0)
		m.modelColumns.Set(0)
		return
	}
	m.modelLoaded.Set(1)
	m.modelColumns.Set(float64(len(a.Schema.Columns)))
	m.modelReloads.Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
