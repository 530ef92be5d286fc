package source

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/streamcatalog/metric"
)

// sourceMetrics holds Prometheus metrics for extraction pipeline operations.
type sourceMetrics struct {
	topicsTotal      *prometheus.CounterVec // By status (resolved/schemaless/filtered)
	workunitsTotal   prometheus.Counter
	resolutionsTotal *prometheus.CounterVec   // By side and strategy
	resolveDuration  *prometheus.HistogramVec // By stage (resolve/flatten/build)
	extractionErrors *prometheus.CounterVec   // By error_type
}

// newSourceMetrics creates and registers pipeline metrics with the provided registry.
func newSourceMetrics(registry *metric.MetricsRegistry) (*sourceMetrics, error) {
	if registry == nil {
		return nil, nil // Metrics disabled
	}

	m := &sourceMetrics{
		topicsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "streamcatalog",
			Subsystem: "source",
			Name:      "topics_total",
			Help:      "Total number of topics processed by outcome",
		}, []string{"status"}), // status: resolved, schemaless, filtered

		workunitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "streamcatalog",
			Subsystem: "source",
			Name:      "workunits_total",
			Help:      "Total number of workunits produced",
		}),

		resolutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "streamcatalog",
			Subsystem: "source",
			Name:      "resolutions_total",
			Help:      "Total number of topic sides resolved to a subject",
		}, []string{"side", "strategy"}),

		resolveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "streamcatalog",
			Subsystem: "source",
			Name:      "stage_duration_seconds",
			Help:      "Per-topic pipeline stage duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"stage"}),

		extractionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "streamcatalog",
			Subsystem: "source",
			Name:      "errors_total",
			Help:      "Total number of extraction errors",
		}, []string{"error_type"}), // error_type: resolve, flatten, config, discovery
	}

	if err := registry.RegisterCounterVec("source", "topics_total", m.topicsTotal); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter("source", "workunits_total", m.workunitsTotal); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec("source", "resolutions_total", m.resolutionsTotal); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogramVec("source", "stage_duration", m.resolveDuration); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec("source", "errors_total", m.extractionErrors); err != nil {
		return nil, err
	}

	return m, nil
}

// recordTopic records a processed topic outcome.
func (m *sourceMetrics) recordTopic(status string) {
	if m == nil {
		return
	}
	m.topicsTotal.WithLabelValues(status).Inc()
}

// recordWorkunit records one produced workunit.
func (m *sourceMetrics) recordWorkunit() {
	if m == nil {
		return
	}
	m.workunitsTotal.Inc()
}

// recordResolution records a resolved topic side by strategy.
func (m *sourceMetrics) recordResolution(side, strategy string) {
	if m == nil {
		return
	}
	m.resolutionsTotal.WithLabelValues(side, strategy).Inc()
}

// recordStage records a pipeline stage duration.
func (m *sourceMetrics) recordStage(stage string, duration time.Duration) {
	if m == nil {
		return
	}
	m.resolveDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// recordError records an extraction error.
func (m *sourceMetrics) recordError(errorType string) {
	if m == nil {
		return
	}
	m.extractionErrors.WithLabelValues(errorType).Inc()
}
