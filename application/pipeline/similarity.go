package pipeline

import (
	"context"
	"fmt"

	"github.com/hackgraph/hackgraph/domain/graph"
	"github.com/hackgraph/hackgraph/domain/search"
)

// SimilarityComputer derives qualifying similarity edges for one project from
// a nearest-neighbor query against the whole index.
type SimilarityComputer struct {
	index     search.Index
	topK      int
	overfetch int
	threshold float64
}

// NewSimilarityComputer creates a SimilarityComputer.
func NewSimilarityComputer(index search.Index, topK, overfetch int, threshold float64) (*SimilarityComputer, error) {
	if index == nil {
		return nil, fmt.Errorf("NewSimilarityComputer: nil index")
	}
	if topK <= 0 {
		return nil, fmt.Errorf("NewSimilarityComputer: topK must be positive, got %d", topK)
	}
	if overfetch < 1 {
		return nil, fmt.Errorf("NewSimilarityComputer: overfetch must be >= 1, got %d", overfetch)
	}
	return &SimilarityComputer{
		index:     index,
		topK:      topK,
		overfetch: overfetch,
		threshold: threshold,
	}, nil
}

// EdgesFor returns the edges the query project contributes to the graph.
// A project with no stored embedding yields no edges and no error.
//
// The candidate list is over-fetched to compensate for approximate search
// recall, then filtered: self-hits are dropped, and only candidates ordered
// after the query id under the canonical ordering are kept. The sweep visits
// every id, so each unordered pair is considered exactly once, from its low
// side. The threshold is an inclusive lower bound.
func (c *SimilarityComputer) EdgesFor(ctx context.Context, id string) ([]graph.SimilarityEdge, error) {
	doc, found, err := c.index.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load embedding for %s: %w", id, err)
	}
	if !found || !doc.HasEmbedding() {
		return nil, nil
	}

	hits, err := c.index.VectorQuery(ctx, doc.Embedding(), c.topK*c.overfetch)
	if err != nil {
		return nil, fmt.Errorf("vector query for %s: %w", id, err)
	}

	edges := make([]graph.SimilarityEdge, 0, c.topK)
	for _, hit := range hits {
		if len(edges) == c.topK {
			break
		}
		if hit.ProjectID() == id {
			continue
		}
		if low, _ := graph.Canonicalize(id, hit.ProjectID()); low != id {
			continue
		}
		if hit.Score() < c.threshold {
			continue
		}

		edge, err := graph.NewSimilarityEdge(id, hit.ProjectID(), clampScore(hit.Score()))
		if err != nil {
			return nil, fmt.Errorf("edge for %s: %w", id, err)
		}
		edges = append(edges, edge)
	}
	return edges, nil
}

// clampScore bounds a score to [0,1]. Engine certainty values can drift a
// hair past 1.0 through float conversion.
func clampScore(score float64) float64 {
	if score > 1 {
		return 1
	}
	if score < 0 {
		return 0
	}
	return score
}
