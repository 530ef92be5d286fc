package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Loader handles configuration loading with layers and overrides.
type Loader struct {
	layers    []string
	envPrefix string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		layers:    []string{},
		envPrefix: "STREAMCATALOG",
	}
}

// AddLayer adds a configuration file layer. Later layers override earlier
// ones.
func (l *Loader) AddLayer(path string) {
	l.layers = append(l.layers, path)
}

// LoadFile loads configuration from a single file.
func (l *Loader) LoadFile(path string) (*Config, error) {
	l.layers = []string{path}
	return l.Load()
}

// Load loads and merges all configuration layers over the defaults, then
// applies environment overrides.
func (l *Loader) Load() (*Config, error) {
	cfg := l.getDefaults()

	for _, path := range l.layers {
		rawConfig, err := l.loadRawJSON(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		cfg = l.mergeFromMap(cfg, rawConfig)
	}

	l.applyEnvOverrides(cfg)

	return cfg, nil
}

// getDefaults returns the default configuration. The deny default excludes
// broker-internal topics.
func (l *Loader) getDefaults() *Config {
	return &Config{
		Connection: ConnectionConfig{
			Bootstrap: "localhost:9092",
			ClientID:  "streamcatalog",
			Timeout:   10 * time.Second,
		},
		TopicPatterns: PatternConfig{
			Allow: []string{".*"},
			Deny:  []string{"^_.*"},
		},
		Environment: "PROD",
	}
}

// loadRawJSON loads a configuration file as a map so that merge only
// overrides keys present in the file.
func (l *Loader) loadRawJSON(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rawConfig map[string]any
	if err := json.Unmarshal(data, &rawConfig); err != nil {
		return nil, err
	}

	l.parseDurations(rawConfig)

	return rawConfig, nil
}

// parseDurations converts duration strings to nanoseconds for json
// unmarshaling.
func (l *Loader) parseDurations(data map[string]any) {
	if conn, ok := data["connection"].(map[string]any); ok {
		if timeout, ok := conn["timeout"].(string); ok {
			if d, err := time.ParseDuration(timeout); err == nil {
				conn["timeout"] = d.Nanoseconds()
			}
		}
	}
}

// mergeFromMap merges configuration from a raw map, only overriding fields
// present in the map.
func (l *Loader) mergeFromMap(base *Config, override map[string]any) *Config {
	if override == nil {
		return base
	}

	baseJSON, err := json.Marshal(base)
	if err != nil {
		return base
	}

	var baseMap map[string]any
	if err := json.Unmarshal(baseJSON, &baseMap); err != nil {
		return base
	}

	mergedMap := l.deepMergeMaps(baseMap, override)

	mergedJSON, err := json.Marshal(mergedMap)
	if err != nil {
		return base
	}

	var merged Config
	if err := json.Unmarshal(mergedJSON, &merged); err != nil {
		return base
	}

	return &merged
}

// deepMergeMaps recursively merges two maps, with override taking precedence.
func (l *Loader) deepMergeMaps(base, override map[string]any) map[string]any {
	result := make(map[string]any)

	for k, v := range base {
		result[k] = v
	}

	for k, v := range override {
		if v == nil {
			continue
		}

		if baseMap, baseOk := base[k].(map[string]any); baseOk {
			if overrideMap, overrideOk := v.(map[string]any); overrideOk {
				result[k] = l.deepMergeMaps(baseMap, overrideMap)
				continue
			}
		}

		result[k] = v
	}

	return result
}

// applyEnvOverrides applies environment variable overrides.
func (l *Loader) applyEnvOverrides(cfg *Config) {
	if val := os.Getenv(l.envPrefix + "_BOOTSTRAP"); val != "" {
		cfg.Connection.Bootstrap = val
	}
	if val := os.Getenv(l.envPrefix + "_SCHEMA_REGISTRY_URL"); val != "" {
		cfg.Connection.SchemaRegistryURL = val
	}
	if val := os.Getenv(l.envPrefix + "_CLIENT_ID"); val != "" {
		cfg.Connection.ClientID = val
	}
	if val := os.Getenv(l.envPrefix + "_PLATFORM_INSTANCE"); val != "" {
		cfg.PlatformInstance = val
	}
	if val := os.Getenv(l.envPrefix + "_ENVIRONMENT"); val != "" {
		cfg.Environment = val
	}
	if val := os.Getenv(l.envPrefix + "_TOPIC_ALLOW"); val != "" {
		cfg.TopicPatterns.Allow = strings.Split(val, ",")
	}
	if val := os.Getenv(l.envPrefix + "_TOPIC_DENY"); val != "" {
		cfg.TopicPatterns.Deny = strings.Split(val, ",")
	}
	if val := os.Getenv(l.envPrefix + "_STATEFUL_INGESTION"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			cfg.StatefulIngestion.Enabled = parsed
		}
	}
}
