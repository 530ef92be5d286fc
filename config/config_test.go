package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/streamcatalog/errors"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoaderDefaults(t *testing.T) {
	loader := NewLoader()
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:9092", cfg.Connection.Bootstrap)
	assert.Equal(t, "streamcatalog", cfg.Connection.ClientID)
	assert.Equal(t, 10*time.Second, cfg.Connection.Timeout)
	assert.Equal(t, "PROD", cfg.Environment)
	assert.Equal(t, []string{".*"}, cfg.TopicPatterns.Allow)
	assert.Equal(t, []string{"^_.*"}, cfg.TopicPatterns.Deny)
	assert.False(t, cfg.StatefulIngestion.Enabled)
	assert.False(t, cfg.IgnoreUnsupportedSchemaFormat)
}

func TestLoaderFileLayer(t *testing.T) {
	path := writeConfigFile(t, `{
		"connection": {
			"bootstrap": "broker-1:9092,broker-2:9092",
			"schema_registry_url": "http://registry:8081",
			"timeout": "30s"
		},
		"topic_patterns": {"allow": ["orders.*"]},
		"platform_instance": "cluster-west",
		"topic_subject_map": {"orders-value": "com.acme.Order"}
	}`)

	cfg, err := NewLoader().LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "broker-1:9092,broker-2:9092", cfg.Connection.Bootstrap)
	assert.Equal(t, "http://registry:8081", cfg.Connection.SchemaRegistryURL)
	assert.Equal(t, 30*time.Second, cfg.Connection.Timeout)
	assert.Equal(t, []string{"orders.*"}, cfg.TopicPatterns.Allow)
	assert.Equal(t, "cluster-west", cfg.PlatformInstance)
	assert.Equal(t, "com.acme.Order", cfg.TopicSubjectMap["orders-value"])

	// Untouched keys keep their defaults.
	assert.Equal(t, []string{"^_.*"}, cfg.TopicPatterns.Deny)
	assert.Equal(t, "PROD", cfg.Environment)
}

func TestLoaderLayerPrecedence(t *testing.T) {
	base := writeConfigFile(t, `{"environment": "DEV", "platform_instance": "a"}`)
	override := writeConfigFile(t, `{"environment": "STAGING"}`)

	loader := NewLoader()
	loader.AddLayer(base)
	loader.AddLayer(override)

	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "STAGING", cfg.Environment)
	assert.Equal(t, "a", cfg.PlatformInstance)
}

func TestLoaderEnvOverrides(t *testing.T) {
	t.Setenv("STREAMCATALOG_BOOTSTRAP", "env-broker:9092")
	t.Setenv("STREAMCATALOG_ENVIRONMENT", "QA")
	t.Setenv("STREAMCATALOG_STATEFUL_INGESTION", "true")
	t.Setenv("STREAMCATALOG_TOPIC_ALLOW", "a.*,b.*")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "env-broker:9092", cfg.Connection.Bootstrap)
	assert.Equal(t, "QA", cfg.Environment)
	assert.True(t, cfg.StatefulIngestion.Enabled)
	assert.Equal(t, []string{"a.*", "b.*"}, cfg.TopicPatterns.Allow)
}

func TestLoaderMissingFile(t *testing.T) {
	_, err := NewLoader().LoadFile("/nonexistent/config.json")
	require.Error(t, err)
}

func TestConnectionTimeoutFromNanoseconds(t *testing.T) {
	var conn ConnectionConfig
	require.NoError(t, json.Unmarshal([]byte(`{"bootstrap":"b:9092","timeout":5000000000}`), &conn))
	assert.Equal(t, 5*time.Second, conn.Timeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name: "valid",
			cfg: Config{
				Connection:    ConnectionConfig{Bootstrap: "localhost:9092"},
				TopicPatterns: PatternConfig{Allow: []string{".*"}},
			},
		},
		{
			name:    "missing bootstrap",
			cfg:     Config{},
			wantErr: errors.ErrMissingConfig,
		},
		{
			name: "malformed allow pattern",
			cfg: Config{
				Connection:    ConnectionConfig{Bootstrap: "localhost:9092"},
				TopicPatterns: PatternConfig{Allow: []string{"["}},
			},
			wantErr: errors.ErrInvalidPattern,
		},
		{
			name: "malformed deny pattern",
			cfg: Config{
				Connection:    ConnectionConfig{Bootstrap: "localhost:9092"},
				TopicPatterns: PatternConfig{Deny: []string{"(bad"}},
			},
			wantErr: errors.ErrInvalidPattern,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, errors.IsInvalid(err))
		})
	}
}

func TestClone(t *testing.T) {
	cfg := &Config{
		Connection:      ConnectionConfig{Bootstrap: "b:9092"},
		TopicSubjectMap: map[string]string{"orders-value": "com.acme.Order"},
	}

	clone := cfg.Clone()
	clone.TopicSubjectMap["orders-value"] = "mutated"

	assert.Equal(t, "com.acme.Order", cfg.TopicSubjectMap["orders-value"])
}
