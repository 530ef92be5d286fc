// Package streamcatalog extracts dataset metadata from Kafka-compatible
// clusters and their schema registries.
//
// # Overview
//
// A run discovers the cluster's topics, filters them through configurable
// allow/deny patterns, resolves each surviving topic's key and value
// schemas against a Confluent-compatible schema registry, and assembles the
// result into catalog workunits: a dataset snapshot plus a subtype tag per
// topic. Topic configuration is fetched best-effort through the admin API
// and attached as custom properties.
//
// # Packages
//
//   - source: the pull-driven extraction pipeline
//   - kafka: broker and admin access over sarama
//   - registry: schema registry client
//   - resolver: topic to subject resolution strategies
//   - schema: Avro schema flattening and merging
//   - filter: topic name allow/deny patterns
//   - catalog: URNs, aspects, snapshots, workunits
//   - report: per-run counters, warnings, and failures
//   - config: layered configuration loading
//   - metric: Prometheus registration and serving
//   - errors: error classification and wrapping
//
// # Failure model
//
// Only an unreachable cluster fails a run. Admin and registry problems
// degrade the output (config-less or schema-less workunits) and surface as
// keyed warnings on the run report, so one flaky dependency never hides
// the topics that could still be described.
package streamcatalog
