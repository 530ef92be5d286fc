package metric

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/streamcatalog/errors"
)

func TestNewMetricsRegistry(t *testing.T) {
	registry := NewMetricsRegistry()
	require.NotNil(t, registry)
	require.NotNil(t, registry.PrometheusRegistry())
	require.NotNil(t, registry.CoreMetrics())
}

func TestRegisterCounter(t *testing.T) {
	registry := NewMetricsRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_counter_total",
		Help: "test counter",
	})

	require.NoError(t, registry.RegisterCounter("source", "test_counter", counter))

	// Same key again is rejected before reaching prometheus.
	err := registry.RegisterCounter("source", "test_counter", counter)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestRegisterPrometheusConflict(t *testing.T) {
	registry := NewMetricsRegistry()
	a := prometheus.NewGauge(prometheus.GaugeOpts{Name: "conflicting_gauge", Help: "a"})
	b := prometheus.NewGauge(prometheus.GaugeOpts{Name: "conflicting_gauge", Help: "a"})

	require.NoError(t, registry.RegisterGauge("source", "gauge_a", a))

	err := registry.RegisterGauge("source", "gauge_b", b)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestRegisterVecs(t *testing.T) {
	registry := NewMetricsRegistry()

	counterVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "test_counter_vec_total", Help: "t"}, []string{"topic"})
	gaugeVec := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "test_gauge_vec", Help: "t"}, []string{"topic"})
	histogramVec := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "test_histogram_vec", Help: "t"}, []string{"topic"})

	require.NoError(t, registry.RegisterCounterVec("source", "counter_vec", counterVec))
	require.NoError(t, registry.RegisterGaugeVec("source", "gauge_vec", gaugeVec))
	require.NoError(t, registry.RegisterHistogramVec("source", "histogram_vec", histogramVec))
}

func TestUnregister(t *testing.T) {
	registry := NewMetricsRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "removable_counter_total",
		Help: "t",
	})

	require.NoError(t, registry.RegisterCounter("source", "removable", counter))
	assert.True(t, registry.Unregister("source", "removable"))
	assert.False(t, registry.Unregister("source", "removable"))

	// Key is free again after unregistration.
	require.NoError(t, registry.RegisterCounter("source", "removable", counter))
}

func TestCoreMetricsRecording(t *testing.T) {
	registry := NewMetricsRegistry()
	core := registry.CoreMetrics()

	core.RecordTopicsDiscovered(10)
	core.RecordTopicsFiltered(3)
	core.RecordWorkunitEmitted()
	core.RecordSchemaResolved("value", "topic-name")
	core.RecordRegistryLookup("hit")
	core.RecordExtractionDuration("discovery", 50*time.Millisecond)
	core.RecordError("source", "transient")
	core.RecordBrokerCount(3)

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["streamcatalog_topics_discovered_total"])
	assert.True(t, names["streamcatalog_workunits_emitted_total"])
	assert.True(t, names["streamcatalog_kafka_brokers_connected"])
}

func TestCoreMetricsNilReceiver(t *testing.T) {
	var core *Metrics

	assert.NotPanics(t, func() {
		core.RecordTopicsDiscovered(1)
		core.RecordTopicsFiltered(1)
		core.RecordWorkunitEmitted()
		core.RecordSchemaResolved("key", "override")
		core.RecordRegistryLookup("miss")
		core.RecordExtractionDuration("resolve", time.Millisecond)
		core.RecordError("source", "invalid")
		core.RecordBrokerCount(0)
	})
}
