// Package source drives a metadata extraction run: topic discovery, pattern
// filtering, schema resolution, and workunit assembly. A Source is a
// pull-driven iterator; nothing touches the cluster until the first Next.
package source

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/c360/streamcatalog/catalog"
	"github.com/c360/streamcatalog/config"
	"github.com/c360/streamcatalog/errors"
	"github.com/c360/streamcatalog/filter"
	"github.com/c360/streamcatalog/kafka"
	"github.com/c360/streamcatalog/metric"
	"github.com/c360/streamcatalog/registry"
	"github.com/c360/streamcatalog/report"
	"github.com/c360/streamcatalog/resolver"
	"github.com/c360/streamcatalog/schema"
)

// State tracks where a Source is in its lifecycle.
type State int

// Source lifecycle states
const (
	StateUninitialized State = iota
	StateConnected
	StateDiscovering
	StateIterating
	StateDraining
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConnected:
		return "connected"
	case StateDiscovering:
		return "discovering"
	case StateIterating:
		return "iterating"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Source extracts topic metadata as a stream of workunits. Use it like a
// scanner: Next advances, Workunit returns the current item, Err reports
// what stopped iteration. Not safe for concurrent use.
type Source struct {
	cfg     *config.Config
	deps    Dependencies
	logger  *slog.Logger
	pattern *filter.Pattern
	res     *resolver.Resolver
	report  *report.RunReport
	metrics *sourceMetrics
	core    *metric.Metrics

	state   State
	pending []string
	configs map[string][]kafka.ConfigEntry
	buffer  []catalog.Workunit
	current catalog.Workunit
	err     error

	ownsClients bool
	closeOnce   sync.Once
	closeErr    error
}

// New creates a Source over already-constructed dependencies. Stateful
// ingestion requires a platform instance so successive runs key their state
// consistently; that is rejected here, before anything is dialed.
func New(cfg *config.Config, deps Dependencies) (*Source, error) {
	if cfg.StatefulIngestion.Enabled && cfg.PlatformInstance == "" {
		return nil, errors.WrapInvalid(
			errors.ErrMissingPlatformInstance, "Source", "New", "stateful ingestion requires platform_instance")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "Source", "New", "validate config")
	}
	if deps.Broker == nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: broker client required", errors.ErrMissingConfig), "Source", "New", "check dependencies")
	}

	cfg = cfg.Clone()
	if cfg.Environment == "" {
		cfg.Environment = "PROD"
	}
	if cfg.TopicPatterns.Deny == nil {
		cfg.TopicPatterns.Deny = []string{"^_.*"}
	}

	pattern, err := cfg.TopicPatterns.Compile()
	if err != nil {
		return nil, errors.Wrap(err, "Source", "New", "compile topic patterns")
	}

	metrics, err := newSourceMetrics(deps.MetricsRegistry)
	if err != nil {
		return nil, errors.Wrap(err, "Source", "New", "register metrics")
	}

	s := &Source{
		cfg:     cfg,
		deps:    deps,
		logger:  deps.GetLogger().With("component", "source"),
		pattern: pattern,
		report:  report.New(),
		metrics: metrics,
		state:   StateConnected,
	}
	if deps.MetricsRegistry != nil {
		s.core = deps.MetricsRegistry.CoreMetrics()
	}
	if deps.Registry != nil {
		s.res = resolver.New(deps.Registry, cfg.TopicSubjectMap, cfg.RecordNames)
	}
	return s, nil
}

// NewFromConfig constructs the broker, admin, and registry clients from
// config and wires them into a Source that owns their lifecycle. A broker
// connection failure is fatal; admin and registry failures degrade with a
// keyed warning.
func NewFromConfig(cfg *config.Config, opts ...ConfigOption) (*Source, error) {
	o := configOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	// Reject bad config before any dial.
	if cfg.StatefulIngestion.Enabled && cfg.PlatformInstance == "" {
		return nil, errors.WrapInvalid(
			errors.ErrMissingPlatformInstance, "Source", "NewFromConfig", "stateful ingestion requires platform_instance")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "Source", "NewFromConfig", "validate config")
	}

	bootstrap := strings.Split(cfg.Connection.Bootstrap, ",")
	kafkaOpts := []kafka.Option{
		kafka.WithClientID(cfg.Connection.ClientID),
		kafka.WithDialTimeout(cfg.Connection.Timeout),
	}

	broker, err := kafka.NewClient(bootstrap, kafkaOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "Source", "NewFromConfig", "connect broker client")
	}

	deps := Dependencies{
		Broker:          broker,
		MetricsRegistry: o.metricsRegistry,
		Logger:          o.logger,
	}

	var adminErr error
	deps.Admin, adminErr = kafka.NewAdminClient(bootstrap, kafkaOpts...)
	if adminErr != nil {
		deps.Admin = nil
	}

	var registryErr error
	if cfg.Connection.SchemaRegistryURL != "" {
		deps.Registry, registryErr = registry.NewConfluentClient(
			cfg.Connection.SchemaRegistryURL,
			registry.WithTimeout(cfg.Connection.Timeout),
			registry.WithLogger(deps.GetLogger()),
		)
		if registryErr != nil {
			_ = broker.Close()
			if deps.Admin != nil {
				_ = deps.Admin.Close()
			}
			return nil, errors.Wrap(registryErr, "Source", "NewFromConfig", "create registry client")
		}
	}

	s, err := New(cfg, deps)
	if err != nil {
		_ = broker.Close()
		if deps.Admin != nil {
			_ = deps.Admin.Close()
		}
		return nil, err
	}
	s.ownsClients = true

	if adminErr != nil {
		s.logger.Warn("Admin client unavailable, topic configs skipped", "error", adminErr)
		s.report.Warn(warnKeyAdmin, "admin client connect failed: "+adminErr.Error())
	}
	if cfg.Connection.SchemaRegistryURL == "" {
		s.report.Warn("schema-registry", "no registry URL configured, schemas skipped")
	}

	return s, nil
}

// ConfigOption customizes NewFromConfig.
type ConfigOption func(*configOptions)

type configOptions struct {
	logger          *slog.Logger
	metricsRegistry *metric.MetricsRegistry
}

// WithLogger sets the logger for the Source and its clients.
func WithLogger(logger *slog.Logger) ConfigOption {
	return func(o *configOptions) {
		o.logger = logger
	}
}

// WithMetrics sets the metrics registry the Source registers into.
func WithMetrics(registry *metric.MetricsRegistry) ConfigOption {
	return func(o *configOptions) {
		o.metricsRegistry = registry
	}
}

// State returns the current lifecycle state.
func (s *Source) State() State {
	return s.state
}

// Report returns the run report. Valid at any point; counters grow as the
// iterator advances.
func (s *Source) Report() *report.RunReport {
	return s.report
}

// Next advances to the next workunit. The first call performs discovery;
// workunits are assembled lazily per topic as the caller pulls. It returns
// false when the run is exhausted or stopped; Err distinguishes the two.
func (s *Source) Next(ctx context.Context) bool {
	if s.err != nil || s.state == StateClosed {
		return false
	}

	if s.state == StateConnected {
		if err := s.discover(ctx); err != nil {
			s.err = err
			return false
		}
		s.state = StateIterating
	}

	for len(s.buffer) == 0 {
		if err := ctx.Err(); err != nil {
			s.err = err
			return false
		}
		if len(s.pending) == 0 {
			s.state = StateDraining
			return false
		}

		topic := s.pending[0]
		s.pending = s.pending[1:]
		wus, err := s.processTopic(ctx, topic)
		if err != nil {
			s.err = err
			return false
		}
		s.buffer = wus
	}

	s.current = s.buffer[0]
	s.buffer = s.buffer[1:]
	s.report.WorkunitEmitted()
	s.metrics.recordWorkunit()
	s.core.RecordWorkunitEmitted()
	return true
}

// Workunit returns the workunit produced by the last successful Next.
func (s *Source) Workunit() catalog.Workunit {
	return s.current
}

// Err returns the error that stopped iteration, if any.
func (s *Source) Err() error {
	return s.err
}

// discover lists and filters topics, then primes the schema resolver and
// fetches topic configs. Only the topic listing can fail the run.
func (s *Source) discover(ctx context.Context) error {
	s.state = StateDiscovering
	start := time.Now()

	topics, err := s.deps.Broker.Topics(ctx)
	if err != nil {
		s.metrics.recordError("discovery")
		s.core.RecordError("source", "discovery")
		s.report.Fail("topic-discovery", err.Error())
		return errors.Wrap(err, "Source", "discover", "list topics")
	}

	s.report.TopicDiscovered(len(topics))
	s.core.RecordTopicsDiscovered(len(topics))
	s.core.RecordBrokerCount(s.deps.Broker.Brokers())
	kept := s.pattern.Apply(topics)
	filtered := len(topics) - len(kept)
	s.report.TopicFiltered(filtered)
	s.core.RecordTopicsFiltered(filtered)
	for i := 0; i < filtered; i++ {
		s.metrics.recordTopic("filtered")
	}

	s.logger.Info("Discovered topics",
		"brokers", s.deps.Broker.Brokers(),
		"topics", len(topics),
		"kept", len(kept),
		"filtered", filtered)

	s.pending = kept
	s.configs = s.fetchConfigs(ctx, kept)

	if s.res != nil {
		if err := s.res.Prime(ctx); err != nil {
			s.logger.Warn("Registry subject listing failed, schemas skipped", "error", err)
			s.metrics.recordError("resolve")
			s.core.RecordError("source", "resolve")
			s.report.Warn("schema-registry", "list subjects failed: "+err.Error())
			s.res = nil
		}
	}

	s.metrics.recordStage("discovery", time.Since(start))
	s.core.RecordExtractionDuration("discovery", time.Since(start))
	return nil
}

// processTopic resolves and flattens one topic's schemas and builds its
// workunits. Schema problems degrade the topic to schema-less; only context
// cancellation propagates.
func (s *Source) processTopic(ctx context.Context, topic string) ([]catalog.Workunit, error) {
	var pair resolver.Pair
	var merged schema.Merged

	if s.res != nil {
		start := time.Now()
		resolved, err := s.res.Resolve(ctx, topic)
		s.metrics.recordStage("resolve", time.Since(start))
		s.core.RecordExtractionDuration("resolve", time.Since(start))
		switch {
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case err != nil:
			s.logger.Warn("Schema resolution failed", "topic", topic, "error", err)
			s.metrics.recordError("resolve")
			s.core.RecordError("source", "resolve")
			s.report.Warn("schema-"+topic, "schema resolution failed: "+err.Error())
		default:
			pair = resolved
			s.recordResolution(resolver.SideKey, pair.Key)
			s.recordResolution(resolver.SideValue, pair.Value)
			var mergeErr error
			merged, mergeErr = schema.Merge(pair)
			if mergeErr != nil {
				// Merge keeps whatever side did parse; the failing side
				// contributes no fields.
				s.metrics.recordError("flatten")
				s.core.RecordError("source", "flatten")
				if !s.cfg.IgnoreUnsupportedSchemaFormat || !suppressibleSchemaError(mergeErr) {
					s.logger.Warn("Schema flattening failed", "topic", topic, "error", mergeErr)
					s.report.Warn("schema-"+topic, "schema flattening failed: "+mergeErr.Error())
				}
			}
		}
	}

	if merged.Empty() {
		s.report.Schemaless()
		s.metrics.recordTopic("schemaless")
	} else {
		s.report.SchemaResolved()
		s.metrics.recordTopic("resolved")
	}

	return buildWorkunits(s.cfg, topic, pair, merged, s.configs[topic]), nil
}

// recordResolution counts one resolved side by side and strategy, and the
// registry lookup outcome behind it.
func (s *Source) recordResolution(side resolver.Side, res resolver.Resolution) {
	if res.Strategy == resolver.StrategyNone {
		return
	}
	s.metrics.recordResolution(string(side), res.Strategy.String())
	s.core.RecordSchemaResolved(string(side), res.Strategy.String())
	if res.Schema != nil {
		s.core.RecordRegistryLookup("hit")
	} else {
		s.core.RecordRegistryLookup("miss")
	}
}

// suppressibleSchemaError reports whether err is the unsupported-format or
// unparseable-definition kind that ignore_unsupported_schema_format silences.
func suppressibleSchemaError(err error) bool {
	return stderrors.Is(err, errors.ErrUnsupportedSchemaFormat) || stderrors.Is(err, errors.ErrSchemaParse)
}

// Close releases the clients the Source owns. Safe to call more than once;
// iteration after Close returns false.
func (s *Source) Close() error {
	s.closeOnce.Do(func() {
		s.state = StateClosed
		if !s.ownsClients {
			return
		}
		if err := s.deps.Broker.Close(); err != nil {
			s.closeErr = errors.WrapTransient(err, "Source", "Close", "close broker client")
		}
		if s.deps.Admin != nil {
			if err := s.deps.Admin.Close(); err != nil && s.closeErr == nil {
				s.closeErr = errors.WrapTransient(err, "Source", "Close", "close admin client")
			}
		}
	})
	return s.closeErr
}
