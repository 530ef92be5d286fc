// Package kafka wraps the cluster access needed for metadata extraction: a
// broker client for topic discovery and an admin client for topic config
// description. Both are thin read-only views over sarama.
package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"github.com/c360/streamcatalog/errors"
)

// Broker exposes cluster metadata.
type Broker interface {
	Topics(ctx context.Context) ([]string, error)
	Brokers() int
	Close() error
}

// ConfigEntry is one key/value of a topic configuration.
type ConfigEntry struct {
	Key   string
	Value string
}

// Admin exposes topic configuration lookups.
type Admin interface {
	DescribeTopicConfigs(ctx context.Context, topics []string) (map[string][]ConfigEntry, error)
	Close() error
}

// Option configures the sarama connection.
type Option func(*sarama.Config)

// WithClientID sets the client ID reported to brokers.
func WithClientID(id string) Option {
	return func(c *sarama.Config) {
		c.ClientID = id
	}
}

// WithDialTimeout sets the broker dial timeout.
func WithDialTimeout(d time.Duration) Option {
	return func(c *sarama.Config) {
		c.Net.DialTimeout = d
	}
}

// WithVersion overrides the assumed broker protocol version.
func WithVersion(v sarama.KafkaVersion) Option {
	return func(c *sarama.Config) {
		c.Version = v
	}
}

func newConfig(opts []Option) *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_8_0_0
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Client is a sarama-backed Broker.
type Client struct {
	client sarama.Client

	mu     sync.Mutex
	closed bool
}

// NewClient connects to the cluster. An unreachable cluster is fatal for a
// metadata run, so the error classifies as such.
func NewClient(bootstrap []string, opts ...Option) (*Client, error) {
	client, err := sarama.NewClient(bootstrap, newConfig(opts))
	if err != nil {
		return nil, errors.WrapFatal(err, "Client", "NewClient", "connect to brokers")
	}
	return &Client{client: client}, nil
}

// Topics lists all topic names known to the cluster.
func (c *Client) Topics(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	topics, err := c.client.Topics()
	if err != nil {
		return nil, errors.WrapFatal(err, "Client", "Topics", "list topics")
	}
	return topics, nil
}

// Brokers returns the number of brokers in the cluster.
func (c *Client) Brokers() int {
	return len(c.client.Brokers())
}

// Close releases the connection. Safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.client.Close()
}

// AdminClient is a sarama-backed Admin.
type AdminClient struct {
	admin sarama.ClusterAdmin

	mu     sync.Mutex
	closed bool
}

// NewAdminClient connects an admin client. Failures here are transient from
// the run's point of view; callers degrade to config-less extraction.
func NewAdminClient(bootstrap []string, opts ...Option) (*AdminClient, error) {
	admin, err := sarama.NewClusterAdmin(bootstrap, newConfig(opts))
	if err != nil {
		return nil, errors.WrapTransient(err, "AdminClient", "NewAdminClient", "connect admin client")
	}
	return &AdminClient{admin: admin}, nil
}

// DescribeTopicConfigs fetches the configuration of each topic. The first
// per-topic failure aborts the batch; partial results are not returned.
func (a *AdminClient) DescribeTopicConfigs(ctx context.Context, topics []string) (map[string][]ConfigEntry, error) {
	configs := make(map[string][]ConfigEntry, len(topics))

	for _, topic := range topics {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entries, err := a.admin.DescribeConfig(sarama.ConfigResource{
			Type: sarama.TopicResource,
			Name: topic,
		})
		if err != nil {
			return nil, errors.WrapTransient(err, "AdminClient", "DescribeTopicConfigs", "describe "+topic)
		}

		out := make([]ConfigEntry, 0, len(entries))
		for _, e := range entries {
			out = append(out, ConfigEntry{Key: e.Name, Value: e.Value})
		}
		configs[topic] = out
	}

	return configs, nil
}

// Close releases the admin connection. Safe to call more than once.
func (a *AdminClient) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	return a.admin.Close()
}
