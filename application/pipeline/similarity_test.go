package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgraph/hackgraph/domain/catalog"
	"github.com/hackgraph/hackgraph/domain/search"
)

// stubIndex returns a fixed candidate list for every vector query.
type stubIndex struct {
	docs map[string]catalog.ProjectDocument
	hits []search.Hit
}

func (s *stubIndex) EnsureSchema(context.Context) error { return nil }

func (s *stubIndex) Get(_ context.Context, id string) (catalog.ProjectDocument, bool, error) {
	doc, ok := s.docs[id]
	return doc, ok, nil
}

func (s *stubIndex) Upsert(_ context.Context, doc catalog.ProjectDocument) error {
	s.docs[doc.ID()] = doc
	return nil
}

func (s *stubIndex) VectorQuery(context.Context, []float32, int) ([]search.Hit, error) {
	return s.hits, nil
}

func embeddedDoc(id string) catalog.ProjectDocument {
	record := catalog.NewProjectRecord(id, "name "+id, "", "", "")
	return catalog.NewProjectDocument(record, "fp-"+id).WithEmbedding([]float32{1, 0, 0})
}

func TestEdgesForThresholdIsInclusive(t *testing.T) {
	index := &stubIndex{
		docs: map[string]catalog.ProjectDocument{"p1": embeddedDoc("p1")},
		hits: []search.Hit{
			search.NewHit("p2", 0.3),
			search.NewHit("p3", 0.29999),
		},
	}

	computer, err := NewSimilarityComputer(index, 30, 3, 0.3)
	require.NoError(t, err)

	edges, err := computer.EdgesFor(context.Background(), "p1")
	require.NoError(t, err)

	// Exactly at the threshold is accepted; strictly below is not.
	require.Len(t, edges, 1)
	assert.Equal(t, "p1", edges[0].LowID())
	assert.Equal(t, "p2", edges[0].HighID())
	assert.InDelta(t, 0.3, edges[0].Score(), 1e-9)
}

func TestEdgesForKeepsOnlyHigherCandidates(t *testing.T) {
	index := &stubIndex{
		docs: map[string]catalog.ProjectDocument{"p2": embeddedDoc("p2")},
		hits: []search.Hit{
			search.NewHit("p2", 1.0), // self
			search.NewHit("p1", 0.9), // lower id, owned by p1's query
			search.NewHit("p3", 0.8),
		},
	}

	computer, err := NewSimilarityComputer(index, 30, 3, 0.3)
	require.NoError(t, err)

	edges, err := computer.EdgesFor(context.Background(), "p2")
	require.NoError(t, err)

	require.Len(t, edges, 1)
	assert.Equal(t, "p2", edges[0].LowID())
	assert.Equal(t, "p3", edges[0].HighID())
}

func TestEdgesForMissingEmbedding(t *testing.T) {
	record := catalog.NewProjectRecord("p1", "name", "", "", "")
	index := &stubIndex{
		docs: map[string]catalog.ProjectDocument{
			"p1": catalog.NewProjectDocument(record, "fp"),
		},
		hits: []search.Hit{search.NewHit("p2", 0.9)},
	}

	computer, err := NewSimilarityComputer(index, 30, 3, 0.3)
	require.NoError(t, err)

	// No embedding stored: nothing to compare, not an error.
	edges, err := computer.EdgesFor(context.Background(), "p1")
	require.NoError(t, err)
	assert.Empty(t, edges)

	// Absent document behaves the same way.
	edges, err = computer.EdgesFor(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestEdgesForCapsResultCount(t *testing.T) {
	hits := []search.Hit{
		search.NewHit("p2", 0.9),
		search.NewHit("p3", 0.8),
		search.NewHit("p4", 0.7),
		search.NewHit("p5", 0.6),
	}
	index := &stubIndex{
		docs: map[string]catalog.ProjectDocument{"p1": embeddedDoc("p1")},
		hits: hits,
	}

	computer, err := NewSimilarityComputer(index, 2, 3, 0.3)
	require.NoError(t, err)

	edges, err := computer.EdgesFor(context.Background(), "p1")
	require.NoError(t, err)

	require.Len(t, edges, 2)
	assert.Equal(t, "p2", edges[0].HighID())
	assert.Equal(t, "p3", edges[1].HighID())
}

func TestEdgesForClampsScore(t *testing.T) {
	index := &stubIndex{
		docs: map[string]catalog.ProjectDocument{"p1": embeddedDoc("p1")},
		hits: []search.Hit{search.NewHit("p2", 1.0000001)},
	}

	computer, err := NewSimilarityComputer(index, 30, 3, 0.3)
	require.NoError(t, err)

	edges, err := computer.EdgesFor(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, 1.0, edges[0].Score())
}
