// Package report accumulates the outcome of one extraction run: counters,
// warnings, and failures, keyed so repeated problems collapse to a single
// entry.
package report

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is one keyed warning or failure.
type Entry struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// RunReport collects per-run statistics. Safe for concurrent use.
type RunReport struct {
	mu sync.Mutex

	runID     string
	startedAt time.Time

	topicsDiscovered int
	topicsFiltered   int
	workunits        int
	schemasResolved  int
	schemaless       int

	warnings []Entry
	failures []Entry
	warnKeys map[string]struct{}
}

// New creates a report with a fresh run ID.
func New() *RunReport {
	return &RunReport{
		runID:     uuid.NewString(),
		startedAt: time.Now(),
		warnKeys:  make(map[string]struct{}),
	}
}

// RunID returns the unique identifier of this run.
func (r *RunReport) RunID() string {
	return r.runID
}

// Elapsed returns the time since the run started.
func (r *RunReport) Elapsed() time.Duration {
	return time.Since(r.startedAt)
}

// TopicDiscovered records topics seen before filtering.
func (r *RunReport) TopicDiscovered(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topicsDiscovered += n
}

// TopicFiltered records topics dropped by the allow/deny patterns.
func (r *RunReport) TopicFiltered(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topicsFiltered += n
}

// WorkunitEmitted records one emitted workunit.
func (r *RunReport) WorkunitEmitted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workunits++
}

// SchemaResolved records a topic that produced schema metadata.
func (r *RunReport) SchemaResolved() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemasResolved++
}

// Schemaless records a topic that produced no schema metadata.
func (r *RunReport) Schemaless() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemaless++
}

// Warn records a keyed warning. The first reason recorded for a key wins;
// later calls with the same key are dropped.
func (r *RunReport) Warn(key, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.warnKeys[key]; ok {
		return
	}
	r.warnKeys[key] = struct{}{}
	r.warnings = append(r.warnings, Entry{Key: key, Reason: reason})
}

// Fail records a keyed failure. Failures are not deduplicated.
func (r *RunReport) Fail(key, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, Entry{Key: key, Reason: reason})
}

// Warnings returns a copy of the recorded warnings in record order.
func (r *RunReport) Warnings() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.warnings...)
}

// Failures returns a copy of the recorded failures in record order.
func (r *RunReport) Failures() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.failures...)
}

// Failed reports whether the run recorded any failure.
func (r *RunReport) Failed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.failures) > 0
}

// Counts returns the run counters as a snapshot.
func (r *RunReport) Counts() Counts {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Counts{
		TopicsDiscovered: r.topicsDiscovered,
		TopicsFiltered:   r.topicsFiltered,
		Workunits:        r.workunits,
		SchemasResolved:  r.schemasResolved,
		Schemaless:       r.schemaless,
	}
}

// Counts is a point-in-time snapshot of the run counters.
type Counts struct {
	TopicsDiscovered int `json:"topics_discovered"`
	TopicsFiltered   int `json:"topics_filtered"`
	Workunits        int `json:"workunits"`
	SchemasResolved  int `json:"schemas_resolved"`
	Schemaless       int `json:"schemaless"`
}

// LogValue renders the report for structured logging.
func (r *RunReport) LogValue() slog.Value {
	counts := r.Counts()
	return slog.GroupValue(
		slog.String("run_id", r.runID),
		slog.Duration("elapsed", r.Elapsed()),
		slog.Int("topics_discovered", counts.TopicsDiscovered),
		slog.Int("topics_filtered", counts.TopicsFiltered),
		slog.Int("workunits", counts.Workunits),
		slog.Int("schemas_resolved", counts.SchemasResolved),
		slog.Int("schemaless", counts.Schemaless),
		slog.Int("warnings", len(r.Warnings())),
		slog.Int("failures", len(r.Failures())),
	)
}
