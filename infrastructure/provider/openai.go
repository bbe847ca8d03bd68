package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hackgraph/hackgraph/domain/search"
	"github.com/hackgraph/hackgraph/internal/config"
)

// errEmptyEmbedding indicates the API returned no embedding data for a
// request. This is retryable: upstream providers can return HTTP 200 with an
// empty body under transient load.
var errEmptyEmbedding = errors.New("embedding response contained no data")

// OpenAIEmbedder implements search.Embedder using an OpenAI-compatible
// embeddings API. Transient failures (rate limits, 5xx, network timeouts)
// are retried internally with exponential backoff; context-length rejections
// surface as search.ErrContextTooLong so the caller can shrink the input;
// everything else surfaces as a permanent *ProviderError.
type OpenAIEmbedder struct {
	client        *openai.Client
	model         string
	dimension     int
	maxRetries    int
	initialDelay  time.Duration
	backoffFactor float64
}

// OpenAIOption is a functional option for OpenAIEmbedder.
type OpenAIOption func(*OpenAIEmbedder)

// WithModel sets the embedding model.
func WithModel(model string) OpenAIOption {
	return func(p *OpenAIEmbedder) { p.model = model }
}

// WithDimension sets the expected vector dimension.
func WithDimension(d int) OpenAIOption {
	return func(p *OpenAIEmbedder) { p.dimension = d }
}

// WithMaxRetries sets the maximum retry count for transient failures.
func WithMaxRetries(n int) OpenAIOption {
	return func(p *OpenAIEmbedder) { p.maxRetries = n }
}

// WithInitialDelay sets the initial retry delay.
func WithInitialDelay(d time.Duration) OpenAIOption {
	return func(p *OpenAIEmbedder) { p.initialDelay = d }
}

// WithBackoffFactor sets the backoff multiplier.
func WithBackoffFactor(f float64) OpenAIOption {
	return func(p *OpenAIEmbedder) { p.backoffFactor = f }
}

// NewOpenAIEmbedder creates an embedder with default settings.
func NewOpenAIEmbedder(apiKey string, opts ...OpenAIOption) *OpenAIEmbedder {
	p := &OpenAIEmbedder{
		client:        openai.NewClient(apiKey),
		model:         config.DefaultEmbeddingModel,
		dimension:     config.DefaultEmbeddingDimension,
		maxRetries:    config.DefaultEmbeddingMaxRetries,
		initialDelay:  config.DefaultEmbeddingInitialDelay,
		backoffFactor: config.DefaultEmbeddingBackoff,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewOpenAIEmbedderFromConfig creates an embedder from configuration.
func NewOpenAIEmbedderFromConfig(cfg config.EmbeddingConfig) *OpenAIEmbedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey())
	if cfg.BaseURL() != "" {
		clientCfg.BaseURL = cfg.BaseURL()
	}
	if cfg.Timeout() > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout()}
	}

	return &OpenAIEmbedder{
		client:        openai.NewClientWithConfig(clientCfg),
		model:         cfg.Model(),
		dimension:     cfg.Dimension(),
		maxRetries:    cfg.MaxRetries(),
		initialDelay:  cfg.InitialDelay(),
		backoffFactor: cfg.Backoff(),
	}
}

// Dimension returns the vector dimension this embedder produces.
func (p *OpenAIEmbedder) Dimension() int { return p.dimension }

// Embed returns the embedding vector for text.
func (p *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(p.model),
		Input: []string{text},
	}

	var resp openai.EmbeddingResponse
	err := p.withRetry(ctx, func() error {
		var callErr error
		resp, callErr = p.client.CreateEmbeddings(ctx, req)
		if callErr != nil {
			return callErr
		}
		if len(resp.Data) == 0 {
			return errEmptyEmbedding
		}
		return nil
	})
	if err != nil {
		return nil, p.wrapError(err)
	}

	embedding := resp.Data[0].Embedding
	if p.dimension > 0 && len(embedding) != p.dimension {
		return nil, NewProviderError("embedding", 0,
			fmt.Sprintf("unexpected vector dimension %d, want %d", len(embedding), p.dimension), nil)
	}

	vec := make([]float32, len(embedding))
	copy(vec, embedding)
	return vec, nil
}

// withRetry executes fn with exponential backoff for transient failures.
// Non-retryable errors return immediately.
func (p *OpenAIEmbedder) withRetry(ctx context.Context, fn func() error) error {
	delay := p.initialDelay
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !p.isRetryable(lastErr) {
			return lastErr
		}

		if attempt < p.maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay = time.Duration(float64(delay) * p.backoffFactor)
			}
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// isRetryable classifies an error as transient.
func (p *OpenAIEmbedder) isRetryable(err error) bool {
	if errors.Is(err, errEmptyEmbedding) {
		return true
	}

	if isContextTooLong(err) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		// Network-level errors are retryable.
		return true
	}

	return false
}

// isContextTooLong detects the provider's context-length rejection.
func isContextTooLong(err error) bool {
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.HTTPStatusCode != http.StatusBadRequest {
		return false
	}
	if code, ok := apiErr.Code.(string); ok && code == "context_length_exceeded" {
		return true
	}
	msg := strings.ToLower(apiErr.Message)
	return strings.Contains(msg, "context length") || strings.Contains(msg, "too long")
}

// wrapError maps provider failures to the error taxonomy the pipeline
// understands: search.ErrContextTooLong for oversized input, *ProviderError
// for everything else.
func (p *OpenAIEmbedder) wrapError(err error) error {
	if isContextTooLong(err) {
		return fmt.Errorf("%w: %s", search.ErrContextTooLong, err.Error())
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return NewProviderError("embedding", apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return NewProviderError("embedding", reqErr.HTTPStatusCode, reqErr.Error(), err)
	}

	return NewProviderError("embedding", 0, err.Error(), err)
}

var _ search.Embedder = (*OpenAIEmbedder)(nil)
