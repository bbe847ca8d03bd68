package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgraph/hackgraph/domain/search"
)

func testScheduler(t *testing.T, index search.Index, edges *fakeEdgeStore, batchSize, maxConcurrent int) *Scheduler {
	t.Helper()
	computer, err := NewSimilarityComputer(index, 30, 3, 0.3)
	require.NoError(t, err)
	s, err := NewScheduler(computer, edges, batchSize, maxConcurrent, nil)
	require.NoError(t, err)
	return s
}

func TestSweepIsolatesProjectFailures(t *testing.T) {
	index := newFakeIndex()
	edges := newFakeEdgeStore()

	doc1 := embeddedDoc("p1")
	doc3 := embeddedDoc("p3")
	require.NoError(t, index.Upsert(context.Background(), doc1))
	require.NoError(t, index.Upsert(context.Background(), doc3))
	index.getErr["p2"] = errors.New("malformed document")

	s := testScheduler(t, index, edges, 50, 10)

	persisted, failures, err := s.Sweep(context.Background(), []string{"p1", "p2", "p3"})
	require.NoError(t, err)

	assert.Equal(t, 1, persisted)
	require.Len(t, failures, 1)
	assert.Equal(t, "p2", failures[0].ProjectID())
	assert.Equal(t, StageSimilarity, failures[0].Stage())
	assert.Contains(t, edges.edges, "p1|p3")
}

func TestSweepAbortsWhenEngineUnavailable(t *testing.T) {
	index := newFakeIndex()
	edges := newFakeEdgeStore()
	index.getErr["p1"] = fmt.Errorf("get: %w", search.ErrUnavailable)

	s := testScheduler(t, index, edges, 50, 10)

	_, _, err := s.Sweep(context.Background(), []string{"p1", "p2"})
	require.Error(t, err)
	assert.ErrorIs(t, err, search.ErrUnavailable)
}

func TestSweepAbortsOnCommitFailure(t *testing.T) {
	index := newFakeIndex()
	edges := newFakeEdgeStore()
	edges.saveErr = errors.New("connection refused")

	require.NoError(t, index.Upsert(context.Background(), embeddedDoc("p1")))
	require.NoError(t, index.Upsert(context.Background(), embeddedDoc("p2")))

	s := testScheduler(t, index, edges, 50, 10)

	_, _, err := s.Sweep(context.Background(), []string{"p1", "p2"})
	require.Error(t, err)
}

func TestSweepCommitsPerBatch(t *testing.T) {
	index := newFakeIndex()
	edges := newFakeEdgeStore()

	ids := make([]string, 5)
	for i := range ids {
		ids[i] = fmt.Sprintf("p%d", i+1)
		require.NoError(t, index.Upsert(context.Background(), embeddedDoc(ids[i])))
	}

	s := testScheduler(t, index, edges, 2, 10)

	_, failures, err := s.Sweep(context.Background(), ids)
	require.NoError(t, err)
	assert.Empty(t, failures)

	// 5 ids with batch size 2 commit in 3 groups.
	assert.Equal(t, 3, edges.saveCalls)
}

func TestSweepFailsOnCanceledContext(t *testing.T) {
	index := newFakeIndex()
	edges := newFakeEdgeStore()

	require.NoError(t, index.Upsert(context.Background(), embeddedDoc("p1")))
	require.NoError(t, index.Upsert(context.Background(), embeddedDoc("p2")))

	s := testScheduler(t, index, edges, 50, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	persisted, _, err := s.Sweep(ctx, []string{"p1", "p2"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, persisted)
	assert.Zero(t, edges.saveCalls)
}

func TestSweepEmptyIDs(t *testing.T) {
	s := testScheduler(t, newFakeIndex(), newFakeEdgeStore(), 50, 10)

	persisted, failures, err := s.Sweep(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, persisted)
	assert.Empty(t, failures)
}

// slowIndex tracks how many vector queries run at once.
type slowIndex struct {
	*fakeIndex
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (s *slowIndex) VectorQuery(ctx context.Context, vector []float32, limit int) ([]search.Hit, error) {
	current := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)

	for {
		peak := s.peak.Load()
		if current <= peak || s.peak.CompareAndSwap(peak, current) {
			break
		}
	}

	time.Sleep(5 * time.Millisecond)
	return s.fakeIndex.VectorQuery(ctx, vector, limit)
}

func TestSweepRespectsConcurrencyCap(t *testing.T) {
	index := &slowIndex{fakeIndex: newFakeIndex()}
	edges := newFakeEdgeStore()

	ids := make([]string, 12)
	for i := range ids {
		ids[i] = fmt.Sprintf("p%02d", i+1)
		require.NoError(t, index.Upsert(context.Background(), embeddedDoc(ids[i])))
	}

	s := testScheduler(t, index, edges, 12, 3)

	_, _, err := s.Sweep(context.Background(), ids)
	require.NoError(t, err)

	assert.LessOrEqual(t, index.peak.Load(), int32(3))
}
