// Package hackgraph maintains a semantically indexed catalog of hackathon
// projects and a derived similarity graph for related-project
// recommendations.
//
// Basic usage:
//
//	client, err := hackgraph.New(
//	    hackgraph.WithSQLite("hackgraph.db"),
//	    hackgraph.WithWeaviate("http://localhost:8080"),
//	    hackgraph.WithOpenAI(os.Getenv("OPENAI_API_KEY")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	result, err := client.Run(ctx)
//	fmt.Println(result.DocumentsIndexed(), result.EdgesPersisted())
package hackgraph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hackgraph/hackgraph/application/pipeline"
	"github.com/hackgraph/hackgraph/domain/catalog"
	"github.com/hackgraph/hackgraph/domain/search"
	"github.com/hackgraph/hackgraph/infrastructure/persistence"
	"github.com/hackgraph/hackgraph/infrastructure/provider"
	"github.com/hackgraph/hackgraph/infrastructure/weaviate"
	"github.com/hackgraph/hackgraph/internal/database"
)

// Client is the main entry point for the hackgraph library.
type Client struct {
	db           database.Database
	projectStore persistence.ProjectStore
	edgeStore    persistence.EdgeStore
	index        search.Index
	pipeline     *pipeline.Pipeline
	logger       *slog.Logger
}

// New creates a Client. The relational schema is migrated on creation; the
// search schema is ensured on the first Run.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	db, err := database.NewDatabase(ctx, cfg.dbURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := persistence.AutoMigrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	index := cfg.index
	if index == nil {
		wvClient, err := weaviate.NewClient(cfg.weaviateURL)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		index, err = weaviate.NewIndex(wvClient, logger)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	embedder := cfg.embedder
	if embedder == nil {
		embedder = provider.NewOpenAIEmbedderFromConfig(cfg.embedding)
	}

	budget, err := search.NewTokenBudget(search.DefaultEncoding, cfg.embedding.TokenBudget())
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	projectStore := persistence.NewProjectStore(db)
	edgeStore := persistence.NewEdgeStore(db)

	p, err := pipeline.NewPipeline(projectStore, index, embedder, edgeStore, budget, cfg.pipeline, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Client{
		db:           db,
		projectStore: projectStore,
		edgeStore:    edgeStore,
		index:        index,
		pipeline:     p,
		logger:       logger,
	}, nil
}

// Projects returns the project catalog store.
func (c *Client) Projects() catalog.ProjectStore {
	return c.projectStore
}

// Edges returns the similarity edge store.
func (c *Client) Edges() persistence.EdgeStore {
	return c.edgeStore
}

// Ingest persists records from an upstream source into the catalog.
func (c *Client) Ingest(ctx context.Context, source catalog.ProjectSource) (int, error) {
	return c.pipeline.Ingest(ctx, source)
}

// Run executes one full indexing and similarity pass.
func (c *Client) Run(ctx context.Context) (pipeline.RunResult, error) {
	return c.pipeline.Run(ctx)
}

// Close releases the database connection pool.
func (c *Client) Close() error {
	return c.db.Close()
}
