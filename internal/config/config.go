// Package config provides application configuration.
package config

import (
	"fmt"
	"time"
)

// Default configuration values.
const (
	DefaultLogLevel  = "INFO"
	DefaultLogFormat = "pretty"

	DefaultEmbeddingModel        = "text-embedding-3-small"
	DefaultEmbeddingDimension    = 1536
	DefaultEmbeddingTokenBudget  = 8000
	DefaultEmbeddingTimeout      = 60 * time.Second
	DefaultEmbeddingMaxRetries   = 5
	DefaultEmbeddingInitialDelay = 2 * time.Second
	DefaultEmbeddingBackoff      = 2.0

	DefaultMinEmbedChars  = 64
	DefaultShrinkFactor   = 0.75
	DefaultSimilarityTopK = 30
	DefaultOverfetch      = 3
	DefaultThreshold      = 0.3
	DefaultBatchSize      = 50
	DefaultMaxConcurrent  = 10
)

// EmbeddingConfig configures the embedding provider endpoint.
type EmbeddingConfig struct {
	baseURL      string
	model        string
	apiKey       string
	dimension    int
	tokenBudget  int
	timeout      time.Duration
	maxRetries   int
	initialDelay time.Duration
	backoff      float64
}

// NewEmbeddingConfig creates an EmbeddingConfig with defaults.
func NewEmbeddingConfig() EmbeddingConfig {
	return EmbeddingConfig{
		model:        DefaultEmbeddingModel,
		dimension:    DefaultEmbeddingDimension,
		tokenBudget:  DefaultEmbeddingTokenBudget,
		timeout:      DefaultEmbeddingTimeout,
		maxRetries:   DefaultEmbeddingMaxRetries,
		initialDelay: DefaultEmbeddingInitialDelay,
		backoff:      DefaultEmbeddingBackoff,
	}
}

// BaseURL returns the endpoint base URL (empty means the provider default).
func (c EmbeddingConfig) BaseURL() string { return c.baseURL }

// Model returns the embedding model identifier.
func (c EmbeddingConfig) Model() string { return c.model }

// APIKey returns the API key.
func (c EmbeddingConfig) APIKey() string { return c.apiKey }

// Dimension returns the expected embedding vector dimension.
func (c EmbeddingConfig) Dimension() int { return c.dimension }

// TokenBudget returns the maximum token count sent to the provider.
func (c EmbeddingConfig) TokenBudget() int { return c.tokenBudget }

// Timeout returns the per-request timeout.
func (c EmbeddingConfig) Timeout() time.Duration { return c.timeout }

// MaxRetries returns the retry attempt bound for transient failures.
func (c EmbeddingConfig) MaxRetries() int { return c.maxRetries }

// InitialDelay returns the initial retry backoff delay.
func (c EmbeddingConfig) InitialDelay() time.Duration { return c.initialDelay }

// Backoff returns the retry backoff multiplier.
func (c EmbeddingConfig) Backoff() float64 { return c.backoff }

// WithBaseURL returns a copy with the base URL set.
func (c EmbeddingConfig) WithBaseURL(url string) EmbeddingConfig {
	c.baseURL = url
	return c
}

// WithModel returns a copy with the model set.
func (c EmbeddingConfig) WithModel(model string) EmbeddingConfig {
	c.model = model
	return c
}

// WithAPIKey returns a copy with the API key set.
func (c EmbeddingConfig) WithAPIKey(key string) EmbeddingConfig {
	c.apiKey = key
	return c
}

// WithDimension returns a copy with the vector dimension set.
func (c EmbeddingConfig) WithDimension(d int) EmbeddingConfig {
	c.dimension = d
	return c
}

// WithTokenBudget returns a copy with the token budget set.
func (c EmbeddingConfig) WithTokenBudget(n int) EmbeddingConfig {
	c.tokenBudget = n
	return c
}

// PipelineConfig tunes the similarity sweep and embedding refresh.
type PipelineConfig struct {
	threshold     float64
	topK          int
	overfetch     int
	batchSize     int
	maxConcurrent int
	minEmbedChars int
	shrinkFactor  float64
}

// NewPipelineConfig creates a PipelineConfig with defaults matching the
// production deployment: threshold 0.3, k=30 with 3x candidate over-fetch,
// batches of 50 ids and at most 10 in-flight vector queries.
func NewPipelineConfig() PipelineConfig {
	return PipelineConfig{
		threshold:     DefaultThreshold,
		topK:          DefaultSimilarityTopK,
		overfetch:     DefaultOverfetch,
		batchSize:     DefaultBatchSize,
		maxConcurrent: DefaultMaxConcurrent,
		minEmbedChars: DefaultMinEmbedChars,
		shrinkFactor:  DefaultShrinkFactor,
	}
}

// Threshold returns the inclusive similarity acceptance threshold.
func (c PipelineConfig) Threshold() float64 { return c.threshold }

// TopK returns the nearest-neighbor result count.
func (c PipelineConfig) TopK() int { return c.topK }

// Overfetch returns the candidate over-fetch factor.
func (c PipelineConfig) Overfetch() int { return c.overfetch }

// BatchSize returns the number of ids per similarity batch.
func (c PipelineConfig) BatchSize() int { return c.batchSize }

// MaxConcurrent returns the global cap on in-flight vector queries.
func (c PipelineConfig) MaxConcurrent() int { return c.maxConcurrent }

// MinEmbedChars returns the minimum viable text length for shrink retries.
func (c PipelineConfig) MinEmbedChars() int { return c.minEmbedChars }

// ShrinkFactor returns the text shrink factor applied when the provider
// reports the input as too long.
func (c PipelineConfig) ShrinkFactor() float64 { return c.shrinkFactor }

// WithThreshold returns a copy with the threshold set.
func (c PipelineConfig) WithThreshold(t float64) PipelineConfig {
	c.threshold = t
	return c
}

// WithTopK returns a copy with the result count set.
func (c PipelineConfig) WithTopK(k int) PipelineConfig {
	c.topK = k
	return c
}

// WithOverfetch returns a copy with the over-fetch factor set.
func (c PipelineConfig) WithOverfetch(n int) PipelineConfig {
	c.overfetch = n
	return c
}

// WithBatchSize returns a copy with the batch size set.
func (c PipelineConfig) WithBatchSize(n int) PipelineConfig {
	c.batchSize = n
	return c
}

// WithMaxConcurrent returns a copy with the concurrency cap set.
func (c PipelineConfig) WithMaxConcurrent(n int) PipelineConfig {
	c.maxConcurrent = n
	return c
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c PipelineConfig) Validate() error {
	if c.threshold < 0 || c.threshold > 1 {
		return fmt.Errorf("similarity threshold must be in [0,1], got %g", c.threshold)
	}
	if c.topK <= 0 {
		return fmt.Errorf("similarity top-k must be positive, got %d", c.topK)
	}
	if c.overfetch < 1 {
		return fmt.Errorf("over-fetch factor must be >= 1, got %d", c.overfetch)
	}
	if c.batchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", c.batchSize)
	}
	if c.maxConcurrent <= 0 {
		return fmt.Errorf("concurrency cap must be positive, got %d", c.maxConcurrent)
	}
	if c.shrinkFactor <= 0 || c.shrinkFactor >= 1 {
		return fmt.Errorf("shrink factor must be in (0,1), got %g", c.shrinkFactor)
	}
	return nil
}

// AppConfig holds the full application configuration.
type AppConfig struct {
	dbURL         string
	weaviateURL   string
	logLevel      string
	logFormat     string
	embedding     EmbeddingConfig
	pipeline      PipelineConfig
}

// NewAppConfig creates an AppConfig with defaults.
func NewAppConfig() AppConfig {
	return AppConfig{
		dbURL:       "sqlite://hackgraph.db",
		weaviateURL: "http://localhost:8080",
		logLevel:    DefaultLogLevel,
		logFormat:   DefaultLogFormat,
		embedding:   NewEmbeddingConfig(),
		pipeline:    NewPipelineConfig(),
	}
}

// DBURL returns the relational database URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// WeaviateURL returns the search engine URL.
func (c AppConfig) WeaviateURL() string { return c.weaviateURL }

// LogLevel returns the log verbosity level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log output format.
func (c AppConfig) LogFormat() string { return c.logFormat }

// Embedding returns the embedding endpoint configuration.
func (c AppConfig) Embedding() EmbeddingConfig { return c.embedding }

// Pipeline returns the pipeline tuning configuration.
func (c AppConfig) Pipeline() PipelineConfig { return c.pipeline }
