// Package registry provides the schema registry capability used to resolve
// topic schemas: listing subjects and fetching the latest registered version
// of a subject. Schemas are fetched read-only per run and never cached
// across runs.
package registry

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"
	"time"

	"github.com/riferrei/srclient"

	"github.com/c360/streamcatalog/errors"
)

// Format identifies the serialization format of a registered schema.
type Format string

// Known schema formats
const (
	FormatAvro     Format = "AVRO"
	FormatProtobuf Format = "PROTOBUF"
	FormatJSON     Format = "JSON"
	FormatUnknown  Format = "UNKNOWN"
)

// ParseFormat maps a registry-reported schema type to a Format. Anything
// unrecognized is FormatUnknown so the caller can degrade instead of fail.
func ParseFormat(s string) Format {
	switch s {
	case "", string(FormatAvro):
		return FormatAvro
	case string(FormatProtobuf):
		return FormatProtobuf
	case string(FormatJSON):
		return FormatJSON
	default:
		return FormatUnknown
	}
}

// RegisteredSchema is the latest version of a subject as reported by the
// registry.
type RegisteredSchema struct {
	Subject    string
	Version    int
	ID         int
	Definition string
	Format     Format
}

// Client is the schema registry query capability. A per-subject lookup that
// finds nothing returns (nil, nil); that is the schema-less case, not an
// error.
type Client interface {
	Subjects(ctx context.Context) ([]string, error)
	LatestVersion(ctx context.Context, subject string) (*RegisteredSchema, error)
}

// subjectNotFoundCode is the Confluent registry error code for a missing
// subject.
const subjectNotFoundCode = 40401

// ConfluentClient implements Client against a Confluent-compatible schema
// registry REST endpoint.
type ConfluentClient struct {
	client *srclient.SchemaRegistryClient
	logger *slog.Logger
}

// Option configures a ConfluentClient.
type Option func(*confluentOptions)

type confluentOptions struct {
	timeout  time.Duration
	username string
	password string
	logger   *slog.Logger
}

// WithTimeout sets the HTTP timeout for registry requests.
func WithTimeout(d time.Duration) Option {
	return func(o *confluentOptions) {
		o.timeout = d
	}
}

// WithCredentials sets basic-auth credentials for the registry.
func WithCredentials(username, password string) Option {
	return func(o *confluentOptions) {
		o.username = username
		o.password = password
	}
}

// WithLogger sets the logger used for per-lookup debug logging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *confluentOptions) {
		o.logger = logger
	}
}

// NewConfluentClient creates a registry client for the given endpoint URL.
func NewConfluentClient(url string, opts ...Option) (*ConfluentClient, error) {
	if url == "" {
		return nil, errors.WrapInvalid(
			errors.ErrMissingConfig, "ConfluentClient", "NewConfluentClient", "registry URL required")
	}

	o := confluentOptions{
		timeout: 10 * time.Second,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	client := srclient.NewSchemaRegistryClient(url)
	client.SetTimeout(o.timeout)
	if o.username != "" {
		client.SetCredentials(o.username, o.password)
	}

	// Every run must observe the registry's current state.
	client.CachingEnabled(false)

	return &ConfluentClient{
		client: client,
		logger: o.logger,
	}, nil
}

// Subjects lists all subjects known to the registry.
func (c *ConfluentClient) Subjects(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	subjects, err := c.client.GetSubjects()
	if err != nil {
		return nil, errors.WrapTransient(err, "ConfluentClient", "Subjects", "list subjects")
	}

	c.logger.Debug("Listed registry subjects", "count", len(subjects))
	return subjects, nil
}

// LatestVersion fetches the latest registered version of a subject. A
// missing subject returns (nil, nil).
func (c *ConfluentClient) LatestVersion(ctx context.Context, subject string) (*RegisteredSchema, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	schema, err := c.client.GetLatestSchema(subject)
	if err != nil {
		if isNotFound(err) {
			c.logger.Debug("Subject not registered", "subject", subject)
			return nil, nil
		}
		return nil, errors.WrapTransient(err, "ConfluentClient", "LatestVersion", "fetch latest version")
	}

	format := FormatAvro
	if schema.SchemaType() != nil {
		format = ParseFormat(string(*schema.SchemaType()))
	}

	return &RegisteredSchema{
		Subject:    subject,
		Version:    schema.Version(),
		ID:         schema.ID(),
		Definition: schema.Schema(),
		Format:     format,
	}, nil
}

// isNotFound reports whether the registry answered "no such subject".
func isNotFound(err error) bool {
	var srErr srclient.Error
	if stderrors.As(err, &srErr) {
		return srErr.Code == subjectNotFoundCode
	}
	return strings.Contains(err.Error(), "404")
}
