// Package config defines the extraction source configuration and a layered
// JSON loader with environment overrides.
package config

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/c360/streamcatalog/errors"
	"github.com/c360/streamcatalog/filter"
)

// Config is the complete source configuration for one extraction run.
type Config struct {
	Connection        ConnectionConfig  `json:"connection"`
	TopicPatterns     PatternConfig     `json:"topic_patterns"`
	TopicSubjectMap   map[string]string `json:"topic_subject_map,omitempty"`
	RecordNames       map[string]string `json:"record_names,omitempty"`
	PlatformInstance  string            `json:"platform_instance,omitempty"`
	Environment       string            `json:"environment,omitempty"`
	StatefulIngestion StatefulConfig    `json:"stateful_ingestion,omitempty"`

	// IgnoreUnsupportedSchemaFormat suppresses the warning recorded when a
	// topic's registered schema cannot be parsed or has an unknown format.
	IgnoreUnsupportedSchemaFormat bool `json:"ignore_unsupported_schema_format,omitempty"`
}

// ConnectionConfig holds broker and schema registry endpoints.
type ConnectionConfig struct {
	Bootstrap         string        `json:"bootstrap"`
	SchemaRegistryURL string        `json:"schema_registry_url,omitempty"`
	ClientID          string        `json:"client_id,omitempty"`
	Timeout           time.Duration `json:"timeout,omitempty"`
}

// UnmarshalJSON accepts the timeout either as a duration string ("10s") or
// as nanoseconds.
func (c *ConnectionConfig) UnmarshalJSON(data []byte) error {
	type Alias ConnectionConfig
	aux := &struct {
		Timeout any `json:"timeout"`
		*Alias
	}{
		Alias: (*Alias)(c),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	switch v := aux.Timeout.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		c.Timeout = d
	case float64:
		c.Timeout = time.Duration(v)
	}

	return nil
}

// PatternConfig holds the raw allow/deny expressions for topic inclusion.
type PatternConfig struct {
	Allow []string `json:"allow,omitempty"`
	Deny  []string `json:"deny,omitempty"`
}

// Compile builds the topic filter from the configured expressions.
func (pc PatternConfig) Compile() (*filter.Pattern, error) {
	return filter.New(pc.Allow, pc.Deny)
}

// StatefulConfig enables stateful ingestion. When enabled, a platform
// instance must also be configured.
type StatefulConfig struct {
	Enabled bool `json:"enabled"`
}

// Validate checks the configuration. Malformed inclusion patterns and
// missing required fields surface here, before any client is constructed.
func (c *Config) Validate() error {
	if c.Connection.Bootstrap == "" {
		return errors.WrapInvalid(
			fmt.Errorf("%w: connection.bootstrap is required", errors.ErrMissingConfig),
			"Config", "Validate", "check connection")
	}

	if _, err := c.TopicPatterns.Compile(); err != nil {
		return err
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}

	data, err := json.Marshal(c)
	if err != nil {
		copied := *c
		return &copied
	}

	var clone Config
	if err := json.Unmarshal(data, &clone); err != nil {
		copied := *c
		return &copied
	}

	return &clone
}

// String returns a JSON representation of the config.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
