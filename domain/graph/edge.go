// Package graph provides the similarity graph domain: undirected,
// score-weighted edges between projects stored in canonical order.
package graph

import (
	"fmt"
	"strings"
)

// Canonicalize returns the two ids in canonical order (low < high under
// lexicographic byte order). This is the single definition of the ordering
// rule; SimilarityComputer and the edge store both rely on it so each
// unordered pair maps to exactly one row.
func Canonicalize(a, b string) (low, high string) {
	if strings.Compare(a, b) <= 0 {
		return a, b
	}
	return b, a
}

// SimilarityEdge is an undirected similarity relationship between two
// distinct projects. Invariants: lowID < highID, score in [0,1].
type SimilarityEdge struct {
	lowID  string
	highID string
	score  float64
}

// NewSimilarityEdge creates an edge for the unordered pair {a, b},
// canonicalizing the order. Self-edges are rejected.
func NewSimilarityEdge(a, b string, score float64) (SimilarityEdge, error) {
	if a == b {
		return SimilarityEdge{}, fmt.Errorf("self-edge forbidden: %s", a)
	}
	if score < 0 || score > 1 {
		return SimilarityEdge{}, fmt.Errorf("edge score out of range: %g", score)
	}
	low, high := Canonicalize(a, b)
	return SimilarityEdge{lowID: low, highID: high, score: score}, nil
}

// LowID returns the lower project id of the canonical pair.
func (e SimilarityEdge) LowID() string { return e.lowID }

// HighID returns the higher project id of the canonical pair.
func (e SimilarityEdge) HighID() string { return e.highID }

// Score returns the similarity score.
func (e SimilarityEdge) Score() float64 { return e.score }
