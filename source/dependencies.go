package source

import (
	"log/slog"

	"github.com/c360/streamcatalog/kafka"
	"github.com/c360/streamcatalog/metric"
	"github.com/c360/streamcatalog/registry"
)

// Dependencies provides all external dependencies needed by a Source.
// Broker is required. Admin and Registry are optional; a Source without
// them degrades to config-less and schema-less extraction.
type Dependencies struct {
	Broker          kafka.Broker            // Cluster metadata access (required)
	Admin           kafka.Admin             // Topic config access (can be nil)
	Registry        registry.Client         // Schema registry access (can be nil)
	MetricsRegistry *metric.MetricsRegistry // Metrics registry for Prometheus (can be nil)
	Logger          *slog.Logger            // Structured logger (can be nil, defaults to slog.Default())
}

// GetLogger returns the configured logger or a default logger if none is provided
func (d *Dependencies) GetLogger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}
