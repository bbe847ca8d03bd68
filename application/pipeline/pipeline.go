package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hackgraph/hackgraph/domain/catalog"
	"github.com/hackgraph/hackgraph/domain/graph"
	"github.com/hackgraph/hackgraph/domain/search"
	"github.com/hackgraph/hackgraph/internal/config"
)

// Pipeline is the entry point for a full indexing and similarity run. All
// collaborators are injected; nothing is process-global.
type Pipeline struct {
	projects  catalog.ProjectStore
	index     search.Index
	indexer   *Indexer
	scheduler *Scheduler
	logger    *slog.Logger
}

// NewPipeline wires a Pipeline from its external collaborators.
func NewPipeline(
	projects catalog.ProjectStore,
	index search.Index,
	embedder search.Embedder,
	edges graph.EdgeStore,
	budget search.TokenBudget,
	cfg config.PipelineConfig,
	logger *slog.Logger,
) (*Pipeline, error) {
	if projects == nil {
		return nil, fmt.Errorf("NewPipeline: nil project store")
	}
	if index == nil {
		return nil, fmt.Errorf("NewPipeline: nil index")
	}
	if edges == nil {
		return nil, fmt.Errorf("NewPipeline: nil edge store")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("NewPipeline: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	indexer, err := NewIndexer(index, embedder, search.NewNormalizer(budget), cfg, logger)
	if err != nil {
		return nil, err
	}

	computer, err := NewSimilarityComputer(index, cfg.TopK(), cfg.Overfetch(), cfg.Threshold())
	if err != nil {
		return nil, err
	}

	scheduler, err := NewScheduler(computer, edges, cfg.BatchSize(), cfg.MaxConcurrent(), logger)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		projects:  projects,
		index:     index,
		indexer:   indexer,
		scheduler: scheduler,
		logger:    logger,
	}, nil
}

// Ingest persists records from an upstream source into the project catalog.
func (p *Pipeline) Ingest(ctx context.Context, source catalog.ProjectSource) (int, error) {
	if source == nil {
		return 0, fmt.Errorf("ingest: nil source")
	}

	records, err := source.Projects(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch project records: %w", err)
	}
	if err := p.projects.SaveAll(ctx, records); err != nil {
		return 0, fmt.Errorf("save project records: %w", err)
	}

	p.logger.Info("catalog ingested", slog.Int("projects", len(records)))
	return len(records), nil
}

// Run executes one full pipeline pass: ensure the index schema, refresh
// every project's document, then rebuild the similarity graph. Safe to
// invoke repeatedly; every write path is an idempotent upsert.
//
// Per-project failures are reported in the result, not as an error. An
// unreachable search engine or relational store aborts the run.
func (p *Pipeline) Run(ctx context.Context) (RunResult, error) {
	if err := p.index.EnsureSchema(ctx); err != nil {
		return RunResult{}, fmt.Errorf("ensure index schema: %w", err)
	}

	records, err := p.projects.List(ctx)
	if err != nil {
		return RunResult{}, fmt.Errorf("list projects: %w", err)
	}

	p.logger.Info("pipeline run started", slog.Int("projects", len(records)))

	var (
		indexed  int
		failures []ProjectFailure
	)
	for _, record := range records {
		if err := p.indexer.IndexProject(ctx, record); err != nil {
			if errors.Is(err, search.ErrUnavailable) {
				return RunResult{}, err
			}
			p.logger.Warn("project indexing failed",
				slog.String("project_id", record.ID()),
				slog.Any("error", err),
			)
			failures = append(failures, NewProjectFailure(record.ID(), StageEmbedding, err))
			continue
		}
		indexed++
	}

	// The sweep covers every catalog id, not just the ones refreshed this
	// run: a project whose embedding step failed may still hold an older
	// indexed document, and one without any document yields no edges.
	ids, err := p.projects.ListIDs(ctx)
	if err != nil {
		return RunResult{}, fmt.Errorf("list project ids: %w", err)
	}

	persisted, sweepFailures, err := p.scheduler.Sweep(ctx, ids)
	if err != nil {
		return RunResult{}, err
	}
	failures = append(failures, sweepFailures...)

	result := NewRunResult(indexed, persisted, failures)
	p.logger.Info("pipeline run finished",
		slog.Int("documents_indexed", result.DocumentsIndexed()),
		slog.Int("edges_persisted", result.EdgesPersisted()),
		slog.Int("failures", len(result.Failures())),
	)
	return result, nil
}
