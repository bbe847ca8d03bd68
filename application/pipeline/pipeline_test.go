package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgraph/hackgraph/domain/catalog"
	"github.com/hackgraph/hackgraph/domain/graph"
	"github.com/hackgraph/hackgraph/domain/search"
	"github.com/hackgraph/hackgraph/internal/config"
)

// fakeProjectStore serves records from memory.
type fakeProjectStore struct {
	records     map[string]catalog.ProjectRecord
	listIDCalls int
}

func newFakeProjectStore(records ...catalog.ProjectRecord) *fakeProjectStore {
	s := &fakeProjectStore{records: make(map[string]catalog.ProjectRecord)}
	for _, r := range records {
		s.records[r.ID()] = r
	}
	return s
}

func (s *fakeProjectStore) SaveAll(_ context.Context, records []catalog.ProjectRecord) error {
	for _, r := range records {
		s.records[r.ID()] = r
	}
	return nil
}

func (s *fakeProjectStore) Get(_ context.Context, id string) (catalog.ProjectRecord, error) {
	r, ok := s.records[id]
	if !ok {
		return catalog.ProjectRecord{}, fmt.Errorf("project %s not found", id)
	}
	return r, nil
}

func (s *fakeProjectStore) List(_ context.Context) ([]catalog.ProjectRecord, error) {
	ids := s.sortedIDs()
	records := make([]catalog.ProjectRecord, len(ids))
	for i, id := range ids {
		records[i] = s.records[id]
	}
	return records, nil
}

func (s *fakeProjectStore) ListIDs(_ context.Context) ([]string, error) {
	s.listIDCalls++
	return s.sortedIDs(), nil
}

func (s *fakeProjectStore) sortedIDs() []string {
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// fakeIndex is a map-backed search engine with exact cosine ranking.
type fakeIndex struct {
	mu          sync.Mutex
	docs        map[string]catalog.ProjectDocument
	schemaCalls int
	getErr      map[string]error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{
		docs:   make(map[string]catalog.ProjectDocument),
		getErr: make(map[string]error),
	}
}

func (f *fakeIndex) EnsureSchema(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.schemaCalls++
	return nil
}

func (f *fakeIndex) Get(_ context.Context, id string) (catalog.ProjectDocument, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.getErr[id]; err != nil {
		return catalog.ProjectDocument{}, false, err
	}
	doc, ok := f.docs[id]
	return doc, ok, nil
}

func (f *fakeIndex) Upsert(_ context.Context, doc catalog.ProjectDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[doc.ID()] = doc
	return nil
}

func (f *fakeIndex) VectorQuery(_ context.Context, vector []float32, limit int) ([]search.Hit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	hits := make([]search.Hit, 0, len(f.docs))
	for id, doc := range f.docs {
		if !doc.HasEmbedding() {
			continue
		}
		hits = append(hits, search.NewHit(id, cosine(vector, doc.Embedding())))
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Score() > hits[j].Score() })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// fakeEmbedder maps marker substrings of the input text to fixed vectors and
// records every call.
type fakeEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	errs    map[string]error
	calls   []string
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{
		vectors: make(map[string][]float32),
		errs:    make(map[string]error),
	}
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)

	for marker, err := range f.errs {
		if strings.Contains(text, marker) {
			return nil, err
		}
	}
	for marker, vector := range f.vectors {
		if strings.Contains(text, marker) {
			return vector, nil
		}
	}
	return nil, fmt.Errorf("no scripted vector for %q", text)
}

func (f *fakeEmbedder) Dimension() int { return 3 }

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeEdgeStore keeps edges keyed by their canonical pair.
type fakeEdgeStore struct {
	mu        sync.Mutex
	edges     map[string]graph.SimilarityEdge
	saveCalls int
	saveErr   error
}

func newFakeEdgeStore() *fakeEdgeStore {
	return &fakeEdgeStore{edges: make(map[string]graph.SimilarityEdge)}
}

func (f *fakeEdgeStore) SaveAll(_ context.Context, edges []graph.SimilarityEdge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saveCalls++
	for _, e := range edges {
		f.edges[e.LowID()+"|"+e.HighID()] = e
	}
	return nil
}

func (f *fakeEdgeStore) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.edges)), nil
}

func testBudget(t *testing.T) search.TokenBudget {
	t.Helper()
	budget, err := search.NewTokenBudget(search.DefaultEncoding, 8000)
	require.NoError(t, err)
	return budget
}

func testPipeline(t *testing.T, projects *fakeProjectStore, index *fakeIndex, embedder *fakeEmbedder, edges *fakeEdgeStore) *Pipeline {
	t.Helper()
	p, err := NewPipeline(projects, index, embedder, edges, testBudget(t), config.NewPipelineConfig(), nil)
	require.NoError(t, err)
	return p
}

func chatRecord() catalog.ProjectRecord {
	return catalog.NewProjectRecord("p1", "ChatDrop", "decentralized chat app", "Peer to peer chat.", "")
}

func messagingRecord() catalog.ProjectRecord {
	return catalog.NewProjectRecord("p2", "Cipher", "encrypted messaging platform", "End to end encrypted.", "")
}

func nftRecord() catalog.ProjectRecord {
	return catalog.NewProjectRecord("p3", "MintHouse", "NFT marketplace", "Buy and sell NFTs.", "")
}

func scriptEmbeddings(embedder *fakeEmbedder) {
	// p1 and p2 nearly parallel, p3 orthogonal to both.
	embedder.vectors["ChatDrop"] = []float32{1, 0, 0}
	embedder.vectors["Cipher"] = []float32{0.95, 0.05, 0}
	embedder.vectors["MintHouse"] = []float32{0, 0, 1}
}

func TestRunLinksSimilarProjects(t *testing.T) {
	projects := newFakeProjectStore(chatRecord(), messagingRecord(), nftRecord())
	index := newFakeIndex()
	embedder := newFakeEmbedder()
	edges := newFakeEdgeStore()
	scriptEmbeddings(embedder)

	result, err := testPipeline(t, projects, index, embedder, edges).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.DocumentsIndexed())
	assert.Equal(t, 1, result.EdgesPersisted())
	assert.Empty(t, result.Failures())
	assert.Equal(t, 1, index.schemaCalls)

	edge, ok := edges.edges["p1|p2"]
	require.True(t, ok, "expected one edge for the chat pair")
	assert.GreaterOrEqual(t, edge.Score(), 0.3)

	for key := range edges.edges {
		assert.NotContains(t, key, "p3")
	}

	// The sweep reads its id set back from the store.
	assert.Equal(t, 1, projects.listIDCalls)
}

func TestRunIsIdempotent(t *testing.T) {
	projects := newFakeProjectStore(chatRecord(), messagingRecord(), nftRecord())
	index := newFakeIndex()
	embedder := newFakeEmbedder()
	edges := newFakeEdgeStore()
	scriptEmbeddings(embedder)

	p := testPipeline(t, projects, index, embedder, edges)

	first, err := p.Run(context.Background())
	require.NoError(t, err)
	callsAfterFirst := embedder.callCount()

	second, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.DocumentsIndexed(), second.DocumentsIndexed())
	assert.Equal(t, first.EdgesPersisted(), second.EdgesPersisted())
	assert.Len(t, edges.edges, 1)

	// Unchanged text reuses stored embeddings on the second run.
	assert.Equal(t, callsAfterFirst, embedder.callCount())
}

func TestRunReembedsAfterTextChange(t *testing.T) {
	projects := newFakeProjectStore(chatRecord(), messagingRecord(), nftRecord())
	index := newFakeIndex()
	embedder := newFakeEmbedder()
	edges := newFakeEdgeStore()
	scriptEmbeddings(embedder)

	p := testPipeline(t, projects, index, embedder, edges)
	_, err := p.Run(context.Background())
	require.NoError(t, err)
	callsAfterFirst := embedder.callCount()

	// One character of new text invalidates only that project's cache.
	changed := catalog.NewProjectRecord("p1", "ChatDrop", "decentralized chat app!", "Peer to peer chat.", "")
	require.NoError(t, projects.SaveAll(context.Background(), []catalog.ProjectRecord{changed}))

	_, err = p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, callsAfterFirst+1, embedder.callCount())
}

func TestRunRefreshesFacetsWithoutReembedding(t *testing.T) {
	projects := newFakeProjectStore(chatRecord(), messagingRecord(), nftRecord())
	index := newFakeIndex()
	embedder := newFakeEmbedder()
	edges := newFakeEdgeStore()
	scriptEmbeddings(embedder)

	p := testPipeline(t, projects, index, embedder, edges)
	_, err := p.Run(context.Background())
	require.NoError(t, err)
	callsAfterFirst := embedder.callCount()

	// Adding a prize changes facets but not text.
	withPrize := chatRecord().WithPrizes([]catalog.Prize{
		catalog.NewPrize("Best Chat", "Best Chat App", "sponsor", "Acme", "Acme Labs"),
	})
	require.NoError(t, projects.SaveAll(context.Background(), []catalog.ProjectRecord{withPrize}))

	_, err = p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, callsAfterFirst, embedder.callCount())

	doc, found, err := index.Get(context.Background(), "p1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"sponsor"}, doc.PrizeTypes())
	assert.Equal(t, []string{"Acme Labs"}, doc.SponsorOrganizations())
	assert.True(t, doc.HasEmbedding())
}

func TestRunIsolatesEmbeddingFailure(t *testing.T) {
	projects := newFakeProjectStore(chatRecord(), messagingRecord(), nftRecord())
	index := newFakeIndex()
	embedder := newFakeEmbedder()
	edges := newFakeEdgeStore()
	scriptEmbeddings(embedder)

	// Permanent provider failure for p2 only.
	embedder.errs["Cipher"] = errors.New("invalid api key")

	result, err := testPipeline(t, projects, index, embedder, edges).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.DocumentsIndexed())
	require.Len(t, result.Failures(), 1)
	assert.Equal(t, "p2", result.Failures()[0].ProjectID())
	assert.Equal(t, StageEmbedding, result.Failures()[0].Stage())

	// p1 and p3 remain indexed; no edge survives since p2 never embedded.
	_, found, err := index.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, found)
	_, found, err = index.Get(context.Background(), "p3")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, edges.edges)
}

func TestRunIndexesEmptyTextWithoutEmbedding(t *testing.T) {
	empty := catalog.NewProjectRecord("p9", "", "", "", "").WithEventName("ethglobal-2024")
	projects := newFakeProjectStore(empty)
	index := newFakeIndex()
	embedder := newFakeEmbedder()
	edges := newFakeEdgeStore()

	result, err := testPipeline(t, projects, index, embedder, edges).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.DocumentsIndexed())
	assert.Zero(t, embedder.callCount())

	doc, found, err := index.Get(context.Background(), "p9")
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, doc.HasEmbedding())
	assert.Equal(t, "ethglobal-2024", doc.EventName())
}

func TestIngestSavesRecords(t *testing.T) {
	projects := newFakeProjectStore()
	index := newFakeIndex()
	embedder := newFakeEmbedder()
	edges := newFakeEdgeStore()

	p := testPipeline(t, projects, index, embedder, edges)

	source := sourceFunc(func(context.Context) ([]catalog.ProjectRecord, error) {
		return []catalog.ProjectRecord{chatRecord(), nftRecord()}, nil
	})

	n, err := p.Ingest(context.Background(), source)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ids, err := projects.ListIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p3"}, ids)
}

type sourceFunc func(ctx context.Context) ([]catalog.ProjectRecord, error)

func (f sourceFunc) Projects(ctx context.Context) ([]catalog.ProjectRecord, error) {
	return f(ctx)
}
