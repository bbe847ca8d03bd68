package graph

import "context"

// EdgeStore persists similarity edges. SaveAll is an upsert keyed by the
// canonical pair (low_id, high_id): insert if absent, otherwise overwrite
// the score. Re-running a sweep never accumulates duplicate rows.
type EdgeStore interface {
	// SaveAll upserts a batch of edges.
	SaveAll(ctx context.Context, edges []SimilarityEdge) error

	// Count returns the number of stored edges.
	Count(ctx context.Context) (int64, error)
}
