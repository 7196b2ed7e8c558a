package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kirillkom/certextract/internal/core/domain"
)

// PipelineMetrics observes per-document extraction in both the API batch
// path and the worker.
type PipelineMetrics struct {
	service  string
	registry *prometheus.Registry

	processTotal    *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	processInFlight prometheus.Gauge
	warningsTotal   *prometheus.CounterVec
	queueLag        prometheus.Histogram
	breakerState    *prometheus.GaugeVec
}

// NewPipelineMetrics registers on registry, or on a private registry when
// registry is nil.
func NewPipelineMetrics(service string, registry *prometheus.Registry) *PipelineMetrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	constLabels := prometheus.Labels{"service": service}

	processTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "pipeline",
			Name:        "documents_total",
			Help:        "Processed certificates by detected format and status.",
			ConstLabels: constLabels,
		},
		[]string{"format", "status"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "pipeline",
			Name:        "document_duration_seconds",
			Help:        "Certificate processing duration in seconds by status.",
			Buckets:     []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			ConstLabels: constLabels,
		},
		[]string{"status"},
	)
	processInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "pipeline",
			Name:        "documents_in_flight",
			Help:        "Number of certificates being processed.",
			ConstLabels: constLabels,
		},
	)
	warningsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "pipeline",
			Name:        "validation_warnings_total",
			Help:        "Soft validation warnings by format, field and kind.",
			ConstLabels: constLabels,
		},
		[]string{"format", "field", "kind"},
	)
	queueLag := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "worker",
			Name:        "queue_lag_seconds",
			Help:        "Delay between document upload and processing start.",
			Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
			ConstLabels: constLabels,
		},
	)
	breakerState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "resilience",
			Name:        "circuit_open",
			Help:        "1 while the circuit breaker of an operation is open.",
			ConstLabels: constLabels,
		},
		[]string{"operation"},
	)

	registry.MustRegister(processTotal, processDuration, processInFlight, warningsTotal, queueLag, breakerState)

	return &PipelineMetrics{
		service:         service,
		registry:        registry,
		processTotal:    processTotal,
		processDuration: processDuration,
		processInFlight: processInFlight,
		warningsTotal:   warningsTotal,
		queueLag:        queueLag,
		breakerState:    breakerState,
	}
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PipelineMetrics) StartDocument() {
	m.processInFlight.Inc()
}

func (m *PipelineMetrics) FinishDocument(format domain.DocumentFormat, duration time.Duration, err error) {
	m.processInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}
	if format == "" {
		format = domain.FormatUnknown
	}

	m.processTotal.WithLabelValues(string(format), status).Inc()
	m.processDuration.WithLabelValues(status).Observe(duration.Seconds())
}

func (m *PipelineMetrics) ObserveWarnings(format domain.DocumentFormat, warnings []domain.ValidationWarning) {
	for _, w := range warnings {
		m.warningsTotal.WithLabelValues(string(format), w.Field, string(w.Kind)).Inc()
	}
}

func (m *PipelineMetrics) ObserveQueueLag(lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.Observe(lag.Seconds())
}

// BreakerStateChanged matches resilience.Config.OnStateChange.
func (m *PipelineMetrics) BreakerStateChanged(operation, state string) {
	open := 0.0
	if state == "open" {
		open = 1
	}
	m.breakerState.WithLabelValues(operation).Set(open)
}
