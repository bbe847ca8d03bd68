// Package pipeline implements the incremental embedding and similarity sweep:
// it refreshes the search index from the project catalog, recomputing
// embeddings only when text content changed, then rebuilds the similarity
// graph with bounded-concurrency nearest-neighbor queries.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/hackgraph/hackgraph/domain/catalog"
	"github.com/hackgraph/hackgraph/domain/search"
	"github.com/hackgraph/hackgraph/internal/config"
)

// Indexer refreshes one project's document in the search index. Text and
// facets are rewritten on every call; the embedding is recomputed only when
// the content fingerprint changed or no embedding is stored.
type Indexer struct {
	index         search.Index
	embedder      search.Embedder
	normalizer    search.Normalizer
	minEmbedChars int
	shrinkFactor  float64
	logger        *slog.Logger
}

// NewIndexer creates an Indexer.
func NewIndexer(
	index search.Index,
	embedder search.Embedder,
	normalizer search.Normalizer,
	cfg config.PipelineConfig,
	logger *slog.Logger,
) (*Indexer, error) {
	if index == nil {
		return nil, fmt.Errorf("NewIndexer: nil index")
	}
	if embedder == nil {
		return nil, fmt.Errorf("NewIndexer: nil embedder")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{
		index:         index,
		embedder:      embedder,
		normalizer:    normalizer,
		minEmbedChars: cfg.MinEmbedChars(),
		shrinkFactor:  cfg.ShrinkFactor(),
		logger:        logger,
	}, nil
}

// IndexProject upserts the record's document. The stored embedding is reused
// when the stored fingerprint matches the fresh one and a vector is present;
// otherwise a new embedding is requested. Records with no text content are
// indexed without a vector.
func (x *Indexer) IndexProject(ctx context.Context, record catalog.ProjectRecord) error {
	norm := x.normalizer.Normalize(record)
	doc := catalog.NewProjectDocument(record, norm.Fingerprint())

	stored, found, err := x.index.Get(ctx, record.ID())
	if err != nil {
		return fmt.Errorf("lookup document %s: %w", record.ID(), err)
	}

	switch {
	case found && stored.Fingerprint() == norm.Fingerprint() && stored.HasEmbedding():
		doc = doc.WithEmbedding(stored.Embedding())
		x.logger.Debug("embedding reused", slog.String("project_id", record.ID()))

	case norm.IsEmpty():
		x.logger.Debug("project has no text content", slog.String("project_id", record.ID()))

	default:
		vector, err := x.embed(ctx, norm.Truncated())
		if err != nil {
			return fmt.Errorf("embed project %s: %w", record.ID(), err)
		}
		doc = doc.WithEmbedding(vector)
	}

	if err := x.index.Upsert(ctx, doc); err != nil {
		return fmt.Errorf("upsert document %s: %w", record.ID(), err)
	}
	return nil
}

// embed requests an embedding, shrinking the text and retrying while the
// provider reports it as too long. The retry loop is bounded by the minimum
// viable text length; below it the last error surfaces.
func (x *Indexer) embed(ctx context.Context, text string) ([]float32, error) {
	for {
		vector, err := x.embedder.Embed(ctx, text)
		if err == nil {
			return vector, nil
		}
		if !errors.Is(err, search.ErrContextTooLong) {
			return nil, err
		}

		shrunk := shrinkText(text, x.shrinkFactor)
		if len(shrunk) < x.minEmbedChars || shrunk == text {
			return nil, err
		}

		x.logger.Warn("embedding input too long, shrinking",
			slog.Int("from_chars", len(text)),
			slog.Int("to_chars", len(shrunk)),
		)
		text = shrunk
	}
}

// shrinkText cuts text to factor of its byte length, backing off to the
// previous rune boundary so the result is always valid UTF-8.
func shrinkText(text string, factor float64) string {
	cut := int(float64(len(text)) * factor)
	if cut >= len(text) {
		cut = len(text) - 1
	}
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
