package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
// Nested structs use underscore delimiter (e.g. EMBEDDING_ENDPOINT_BASE_URL).
type EnvConfig struct {
	// DBURL is the relational database connection URL.
	// Env: DB_URL (default: sqlite://hackgraph.db)
	DBURL string `envconfig:"DB_URL" default:"sqlite://hackgraph.db"`

	// WeaviateURL is the search engine URL.
	// Env: WEAVIATE_URL (default: http://localhost:8080)
	WeaviateURL string `envconfig:"WEAVIATE_URL" default:"http://localhost:8080"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// EmbeddingEndpoint configures the embedding provider.
	EmbeddingEndpoint EmbeddingEnv `envconfig:"EMBEDDING_ENDPOINT"`

	// Similarity configures the similarity sweep.
	Similarity SimilarityEnv `envconfig:"SIMILARITY"`
}

// EmbeddingEnv holds environment configuration for the embedding endpoint.
type EmbeddingEnv struct {
	// Env: EMBEDDING_ENDPOINT_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// Env: EMBEDDING_ENDPOINT_MODEL
	Model string `envconfig:"MODEL" default:"text-embedding-3-small"`

	// Env: EMBEDDING_ENDPOINT_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// Env: EMBEDDING_ENDPOINT_DIMENSION
	Dimension int `envconfig:"DIMENSION" default:"1536"`

	// Env: EMBEDDING_ENDPOINT_TOKEN_BUDGET
	TokenBudget int `envconfig:"TOKEN_BUDGET" default:"8000"`

	// Env: EMBEDDING_ENDPOINT_TIMEOUT (seconds)
	TimeoutSeconds int `envconfig:"TIMEOUT" default:"60"`

	// Env: EMBEDDING_ENDPOINT_MAX_RETRIES
	MaxRetries int `envconfig:"MAX_RETRIES" default:"5"`
}

// SimilarityEnv holds environment configuration for the similarity sweep.
type SimilarityEnv struct {
	// Env: SIMILARITY_THRESHOLD
	Threshold float64 `envconfig:"THRESHOLD" default:"0.3"`

	// Env: SIMILARITY_TOP_K
	TopK int `envconfig:"TOP_K" default:"30"`

	// Env: SIMILARITY_OVERFETCH
	Overfetch int `envconfig:"OVERFETCH" default:"3"`

	// Env: SIMILARITY_BATCH_SIZE
	BatchSize int `envconfig:"BATCH_SIZE" default:"50"`

	// Env: SIMILARITY_MAX_CONCURRENT
	MaxConcurrent int `envconfig:"MAX_CONCURRENT" default:"10"`
}

// LoadConfig loads configuration from an optional .env file and the
// environment. Environment variables override .env values.
func LoadConfig(envFile string) (AppConfig, error) {
	if err := LoadDotEnv(envFile); err != nil {
		return AppConfig{}, fmt.Errorf("load env file: %w", err)
	}

	var env EnvConfig
	if err := envconfig.Process("", &env); err != nil {
		return AppConfig{}, fmt.Errorf("process environment: %w", err)
	}

	return env.toAppConfig(), nil
}

func (e EnvConfig) toAppConfig() AppConfig {
	cfg := NewAppConfig()
	cfg.dbURL = e.DBURL
	cfg.weaviateURL = e.WeaviateURL
	cfg.logLevel = e.LogLevel
	cfg.logFormat = e.LogFormat

	emb := NewEmbeddingConfig().
		WithBaseURL(e.EmbeddingEndpoint.BaseURL).
		WithModel(e.EmbeddingEndpoint.Model).
		WithAPIKey(e.EmbeddingEndpoint.APIKey).
		WithDimension(e.EmbeddingEndpoint.Dimension).
		WithTokenBudget(e.EmbeddingEndpoint.TokenBudget)
	emb.timeout = time.Duration(e.EmbeddingEndpoint.TimeoutSeconds) * time.Second
	emb.maxRetries = e.EmbeddingEndpoint.MaxRetries
	cfg.embedding = emb

	cfg.pipeline = NewPipelineConfig().
		WithThreshold(e.Similarity.Threshold).
		WithTopK(e.Similarity.TopK).
		WithOverfetch(e.Similarity.Overfetch).
		WithBatchSize(e.Similarity.BatchSize).
		WithMaxConcurrent(e.Similarity.MaxConcurrent)

	return cfg
}
