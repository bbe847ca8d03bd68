package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/hackgraph/hackgraph/domain/graph"
	"github.com/hackgraph/hackgraph/domain/search"
)

// Scheduler drives the similarity sweep: ids are split into fixed-size
// batches, computed concurrently under a global in-flight cap, and each
// batch's edges are committed as one grouped upsert.
//
// The cap bounds read pressure on the search engine independently of batch
// size, which only tunes write amortization.
type Scheduler struct {
	computer      *SimilarityComputer
	edges         graph.EdgeStore
	batchSize     int
	maxConcurrent int64
	logger        *slog.Logger
}

// NewScheduler creates a Scheduler.
func NewScheduler(
	computer *SimilarityComputer,
	edges graph.EdgeStore,
	batchSize, maxConcurrent int,
	logger *slog.Logger,
) (*Scheduler, error) {
	if computer == nil {
		return nil, fmt.Errorf("NewScheduler: nil computer")
	}
	if edges == nil {
		return nil, fmt.Errorf("NewScheduler: nil edge store")
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("NewScheduler: batch size must be positive, got %d", batchSize)
	}
	if maxConcurrent <= 0 {
		return nil, fmt.Errorf("NewScheduler: concurrency cap must be positive, got %d", maxConcurrent)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		computer:      computer,
		edges:         edges,
		batchSize:     batchSize,
		maxConcurrent: int64(maxConcurrent),
		logger:        logger,
	}, nil
}

// Sweep computes and persists similarity edges for all ids. A failure in one
// project's computation does not abort the sweep; the project contributes
// zero edges and is reported in failures. An unreachable search engine or a
// failed batch commit aborts the sweep.
func (s *Scheduler) Sweep(ctx context.Context, ids []string) (persisted int, failures []ProjectFailure, err error) {
	if len(ids) == 0 {
		return 0, nil, nil
	}

	sem := semaphore.NewWeighted(s.maxConcurrent)
	totalBatches := (len(ids) + s.batchSize - 1) / s.batchSize

	for batchIdx := 0; batchIdx*s.batchSize < len(ids); batchIdx++ {
		start := batchIdx * s.batchSize
		end := start + s.batchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]

		// Each task writes only its own slot; results are merged after
		// the fan-in join.
		edgesBySlot := make([][]graph.SimilarityEdge, len(batch))
		failureBySlot := make([]*ProjectFailure, len(batch))

		g, gctx := errgroup.WithContext(ctx)
		var acquireErr error
		for slot, id := range batch {
			if err := sem.Acquire(gctx, 1); err != nil {
				// Cancellation must surface as a sweep failure, not a
				// short count.
				acquireErr = err
				break
			}
			g.Go(func() error {
				defer sem.Release(1)

				edges, err := s.computer.EdgesFor(gctx, id)
				if err != nil {
					if errors.Is(err, search.ErrUnavailable) {
						return err
					}
					s.logger.Warn("similarity computation failed",
						slog.String("project_id", id),
						slog.Any("error", err),
					)
					failure := NewProjectFailure(id, StageSimilarity, err)
					failureBySlot[slot] = &failure
					return nil
				}
				edgesBySlot[slot] = edges
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return persisted, failures, fmt.Errorf("similarity batch %d: %w", batchIdx+1, err)
		}
		if acquireErr != nil {
			return persisted, failures, fmt.Errorf("similarity batch %d: %w", batchIdx+1, acquireErr)
		}

		var batchEdges []graph.SimilarityEdge
		for slot := range batch {
			if failureBySlot[slot] != nil {
				failures = append(failures, *failureBySlot[slot])
				continue
			}
			batchEdges = append(batchEdges, edgesBySlot[slot]...)
		}

		if err := s.edges.SaveAll(ctx, batchEdges); err != nil {
			return persisted, failures, fmt.Errorf("commit similarity batch %d: %w", batchIdx+1, err)
		}
		persisted += len(batchEdges)

		s.logger.Info("similarity batch committed",
			slog.Int("batch", batchIdx+1),
			slog.Int("total_batches", totalBatches),
			slog.Int("edges", len(batchEdges)),
		)
	}

	return persisted, failures, nil
}
