package search

import (
	"context"
	"errors"

	"github.com/hackgraph/hackgraph/domain/catalog"
)

// ErrUnavailable indicates the search engine cannot be reached. Unlike a
// per-document failure this is fatal for a pipeline run: no meaningful
// progress is possible without the index.
var ErrUnavailable = errors.New("search engine unavailable")

// Hit is one ranked result of a vector query.
type Hit struct {
	projectID string
	score     float64
}

// NewHit creates a Hit.
func NewHit(projectID string, score float64) Hit {
	return Hit{projectID: projectID, score: score}
}

// ProjectID returns the matched project id.
func (h Hit) ProjectID() string { return h.projectID }

// Score returns the similarity score in [0,1].
func (h Hit) Score() float64 { return h.score }

// Index is the narrow contract with the vector search engine.
type Index interface {
	// EnsureSchema creates the index schema if absent. Idempotent.
	EnsureSchema(ctx context.Context) error

	// Get returns the stored document for id. The second result is false
	// when no document exists.
	Get(ctx context.Context, id string) (catalog.ProjectDocument, bool, error)

	// Upsert replaces the document for its id.
	Upsert(ctx context.Context, doc catalog.ProjectDocument) error

	// VectorQuery returns up to limit hits ranked by cosine similarity to
	// vector, best first.
	VectorQuery(ctx context.Context, vector []float32, limit int) ([]Hit, error)
}
