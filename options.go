package hackgraph

import (
	"log/slog"

	"github.com/hackgraph/hackgraph/domain/search"
	"github.com/hackgraph/hackgraph/internal/config"
)

// clientConfig holds configuration for Client construction.
// Use newClientConfig() to create with defaults from internal/config.
type clientConfig struct {
	dbURL       string
	weaviateURL string
	index       search.Index
	embedder    search.Embedder
	embedding   config.EmbeddingConfig
	pipeline    config.PipelineConfig
	logger      *slog.Logger
}

// newClientConfig creates a clientConfig with defaults from internal/config.
func newClientConfig() *clientConfig {
	app := config.NewAppConfig()
	return &clientConfig{
		dbURL:       app.DBURL(),
		weaviateURL: app.WeaviateURL(),
		embedding:   app.Embedding(),
		pipeline:    app.Pipeline(),
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithSQLite configures SQLite as the relational store.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.dbURL = "sqlite://" + path
	}
}

// WithPostgres configures PostgreSQL as the relational store.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.dbURL = dsn
	}
}

// WithDatabaseURL configures the relational store from a URL
// (sqlite:// or postgres://).
func WithDatabaseURL(url string) Option {
	return func(c *clientConfig) {
		c.dbURL = url
	}
}

// WithWeaviate configures the search engine endpoint.
func WithWeaviate(url string) Option {
	return func(c *clientConfig) {
		c.weaviateURL = url
	}
}

// WithIndex injects a search index directly, bypassing the Weaviate client.
// Intended for tests and embedded deployments.
func WithIndex(index search.Index) Option {
	return func(c *clientConfig) {
		c.index = index
	}
}

// WithOpenAI configures the OpenAI embedding provider.
func WithOpenAI(apiKey string) Option {
	return func(c *clientConfig) {
		c.embedding = c.embedding.WithAPIKey(apiKey)
	}
}

// WithEmbeddingConfig replaces the embedding endpoint configuration.
func WithEmbeddingConfig(cfg config.EmbeddingConfig) Option {
	return func(c *clientConfig) {
		c.embedding = cfg
	}
}

// WithEmbedder injects an embedding provider directly.
func WithEmbedder(embedder search.Embedder) Option {
	return func(c *clientConfig) {
		c.embedder = embedder
	}
}

// WithPipelineConfig replaces the pipeline tuning configuration.
func WithPipelineConfig(cfg config.PipelineConfig) Option {
	return func(c *clientConfig) {
		c.pipeline = cfg
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}
