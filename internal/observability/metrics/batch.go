package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BatchMetrics tracks one enhancement batch on a private registry so
// repeated runs in tests never collide on registration.
type BatchMetrics struct {
	registry *prometheus.Registry

	documentsTotal    *prometheus.CounterVec
	documentDuration  *prometheus.HistogramVec
	documentsInFlight prometheus.Gauge
	apiAttempts       prometheus.Histogram
}

func NewBatchMetrics(service string) *BatchMetrics {
	registry := prometheus.NewRegistry()

	documentsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pipeline",
			Subsystem: "enhance",
			Name:      "documents_total",
			Help:      "Documents finished by status.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
		[]string{"status"},
	)
	documentDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pipeline",
			Subsystem: "enhance",
			Name:      "document_duration_seconds",
			Help:      "Per-document enhancement duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
		[]string{"status"},
	)
	documentsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pipeline",
			Subsystem: "enhance",
			Name:      "documents_in_flight",
			Help:      "Number of in-flight document enhancement tasks.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	apiAttempts := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pipeline",
			Subsystem: "enhance",
			Name:      "api_attempts_per_document",
			Help:      "API attempts spent per document including retries.",
			Buckets:   []float64{1, 2, 3, 4, 5, 8, 13},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(documentsTotal, documentDuration, documentsInFlight, apiAttempts)

	return &BatchMetrics{
		registry:          registry,
		documentsTotal:    documentsTotal,
		documentDuration:  documentDuration,
		documentsInFlight: documentsInFlight,
		apiAttempts:       apiAttempts,
	}
}

func (m *BatchMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *BatchMetrics) StartDocument() {
	m.documentsInFlight.Inc()
}

func (m *BatchMetrics) FinishDocument(status string, duration time.Duration) {
	m.documentsInFlight.Dec()
	m.documentsTotal.WithLabelValues(status).Inc()
	m.documentDuration.WithLabelValues(status).Observe(duration.Seconds())
}

func (m *BatchMetrics) ObserveAttempts(attempts int) {
	if attempts <= 0 {
		return
	}
	m.apiAttempts.Observe(float64(attempts))
}
