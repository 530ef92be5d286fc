package source

import (
	"context"
	"time"

	"github.com/c360/streamcatalog/kafka"
)

// warnKeyAdmin keys all admin-related warnings so a run reports the admin
// problem once regardless of how many topics it affected.
const warnKeyAdmin = "kafka-admin"

// fetchConfigs retrieves topic configurations best-effort. A missing admin
// client or a describe failure degrades to config-less extraction with a
// single keyed warning; it never fails the run.
func (s *Source) fetchConfigs(ctx context.Context, topics []string) map[string][]kafka.ConfigEntry {
	if s.deps.Admin == nil {
		s.report.Warn(warnKeyAdmin, "admin client unavailable, topic configs skipped")
		return nil
	}

	start := time.Now()
	configs, err := s.deps.Admin.DescribeTopicConfigs(ctx, topics)
	s.metrics.recordStage("config", time.Since(start))
	s.core.RecordExtractionDuration("config", time.Since(start))
	if err != nil {
		s.logger.Warn("Topic config fetch failed", "error", err)
		s.metrics.recordError("config")
		s.core.RecordError("source", "config")
		s.report.Warn(warnKeyAdmin, "describe topic configs failed: "+err.Error())
		return nil
	}

	return configs
}
