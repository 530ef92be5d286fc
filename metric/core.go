package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all platform-level metrics (not component-specific).
// The Record methods are safe on a nil receiver so callers without a
// registry can skip the guards.
type Metrics struct {
	TopicsDiscovered   prometheus.Counter
	TopicsFiltered     prometheus.Counter
	WorkunitsEmitted   prometheus.Counter
	SchemasResolved    *prometheus.CounterVec
	RegistryLookups    *prometheus.CounterVec
	ExtractionDuration *prometheus.HistogramVec
	ErrorsTotal        *prometheus.CounterVec
	BrokersConnected   prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all platform metrics
func NewMetrics() *Metrics {
	return &Metrics{
		TopicsDiscovered: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "streamcatalog",
				Subsystem: "topics",
				Name:      "discovered_total",
				Help:      "Total number of topics discovered before filtering",
			},
		),

		TopicsFiltered: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "streamcatalog",
				Subsystem: "topics",
				Name:      "filtered_total",
				Help:      "Total number of topics dropped by allow/deny patterns",
			},
		),

		WorkunitsEmitted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "streamcatalog",
				Subsystem: "workunits",
				Name:      "emitted_total",
				Help:      "Total number of workunits emitted",
			},
		),

		SchemasResolved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "streamcatalog",
				Subsystem: "schemas",
				Name:      "resolved_total",
				Help:      "Total number of topic sides resolved to a subject",
			},
			[]string{"side", "strategy"},
		),

		RegistryLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "streamcatalog",
				Subsystem: "registry",
				Name:      "lookups_total",
				Help:      "Total number of schema registry lookups",
			},
			[]string{"status"},
		),

		ExtractionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "streamcatalog",
				Subsystem: "extraction",
				Name:      "duration_seconds",
				Help:      "Extraction stage duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage"},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "streamcatalog",
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of errors",
			},
			[]string{"component", "type"},
		),

		BrokersConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "streamcatalog",
				Subsystem: "kafka",
				Name:      "brokers_connected",
				Help:      "Number of brokers in the connected cluster",
			},
		),
	}
}

// RecordTopicsDiscovered adds to the discovered topic counter
func (c *Metrics) RecordTopicsDiscovered(n int) {
	if c == nil {
		return
	}
	c.TopicsDiscovered.Add(float64(n))
}

// RecordTopicsFiltered adds to the filtered topic counter
func (c *Metrics) RecordTopicsFiltered(n int) {
	if c == nil {
		return
	}
	c.TopicsFiltered.Add(float64(n))
}

// RecordWorkunitEmitted increments the emitted workunit counter
func (c *Metrics) RecordWorkunitEmitted() {
	if c == nil {
		return
	}
	c.WorkunitsEmitted.Inc()
}

// RecordSchemaResolved increments the resolved schema counter
func (c *Metrics) RecordSchemaResolved(side, strategy string) {
	if c == nil {
		return
	}
	c.SchemasResolved.WithLabelValues(side, strategy).Inc()
}

// RecordRegistryLookup increments the registry lookup counter
func (c *Metrics) RecordRegistryLookup(status string) {
	if c == nil {
		return
	}
	c.RegistryLookups.WithLabelValues(status).Inc()
}

// RecordExtractionDuration records the duration of an extraction stage
func (c *Metrics) RecordExtractionDuration(stage string, duration time.Duration) {
	if c == nil {
		return
	}
	c.ExtractionDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordError increments the error counter
func (c *Metrics) RecordError(component, errorType string) {
	if c == nil {
		return
	}
	c.ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// RecordBrokerCount updates the connected broker gauge
func (c *Metrics) RecordBrokerCount(n int) {
	if c == nil {
		return
	}
	c.BrokersConnected.Set(float64(n))
}
