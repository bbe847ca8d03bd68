// Package weaviate implements the search.Index contract on a Weaviate
// instance: one class holding each project's text fields, keyword facets,
// and embedding vector under cosine distance.
package weaviate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/fault"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/hackgraph/hackgraph/domain/catalog"
	"github.com/hackgraph/hackgraph/domain/search"
)

// DefaultClassName is the Weaviate class holding project documents.
const DefaultClassName = "Project"

// Index implements search.Index over a Weaviate client.
type Index struct {
	client    *weaviate.Client
	className string
	logger    *slog.Logger
}

// NewIndex creates an Index for the given client.
func NewIndex(client *weaviate.Client, logger *slog.Logger) (*Index, error) {
	if client == nil {
		return nil, fmt.Errorf("NewIndex: nil client")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{
		client:    client,
		className: DefaultClassName,
		logger:    logger,
	}, nil
}

// NewClient creates a Weaviate client from a URL such as
// "http://localhost:8080".
func NewClient(url string) (*weaviate.Client, error) {
	cfg := weaviate.Config{Host: url, Scheme: "http"}
	switch {
	case strings.HasPrefix(url, "https://"):
		cfg.Scheme = "https"
		cfg.Host = strings.TrimPrefix(url, "https://")
	case strings.HasPrefix(url, "http://"):
		cfg.Host = strings.TrimPrefix(url, "http://")
	}

	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create weaviate client: %w", err)
	}
	return client, nil
}

// EnsureSchema creates the project class if absent. Idempotent.
func (i *Index) EnsureSchema(ctx context.Context) error {
	exists, err := i.client.Schema().ClassExistenceChecker().
		WithClassName(i.className).
		Do(ctx)
	if err != nil {
		return wrapEngineError("check class existence", err)
	}
	if exists {
		return nil
	}

	if err := i.client.Schema().ClassCreator().
		WithClass(i.classDefinition()).
		Do(ctx); err != nil {
		return wrapEngineError("create class", err)
	}

	i.logger.Info("search schema created", slog.String("class", i.className))
	return nil
}

// classDefinition declares the index schema: full-text fields word-tokenized,
// facets as exact-match keyword lists, and externally supplied vectors
// compared by cosine distance.
func (i *Index) classDefinition() *models.Class {
	indexFilterable := new(bool)
	*indexFilterable = true

	return &models.Class{
		Class:      i.className,
		Vectorizer: "none",
		VectorIndexConfig: map[string]any{
			"distance": "cosine",
		},
		Properties: []*models.Property{
			{
				Name:         propProjectID,
				DataType:     []string{"text"},
				Tokenization: "field",

				IndexFilterable: indexFilterable,
			},
			{
				Name:         propName,
				DataType:     []string{"text"},
				Tokenization: "word",
			},
			{
				Name:         propTagline,
				DataType:     []string{"text"},
				Tokenization: "word",
			},
			{
				Name:         propDescription,
				DataType:     []string{"text"},
				Tokenization: "word",
			},
			{
				Name:         propHowItsMade,
				DataType:     []string{"text"},
				Tokenization: "word",
			},
			{
				Name:            propEventName,
				DataType:        []string{"text"},
				Tokenization:    "field",
				IndexFilterable: indexFilterable,
			},
			{
				Name:            propPrizeTypes,
				DataType:        []string{"text[]"},
				Tokenization:    "field",
				IndexFilterable: indexFilterable,
			},
			{
				Name:            propSponsorOrganizations,
				DataType:        []string{"text[]"},
				Tokenization:    "field",
				IndexFilterable: indexFilterable,
			},
			{
				Name:         propFingerprint,
				DataType:     []string{"text"},
				Tokenization: "field",
			},
		},
	}
}

// Get returns the stored document for a project id.
func (i *Index) Get(ctx context.Context, id string) (catalog.ProjectDocument, bool, error) {
	objects, err := i.client.Data().ObjectsGetter().
		WithClassName(i.className).
		WithID(objectID(id)).
		WithVector().
		Do(ctx)
	if err != nil {
		if isNotFound(err) {
			return catalog.ProjectDocument{}, false, nil
		}
		return catalog.ProjectDocument{}, false, wrapEngineError("get document", err)
	}
	if len(objects) == 0 {
		return catalog.ProjectDocument{}, false, nil
	}

	doc, err := documentFromObject(objects[0])
	if err != nil {
		return catalog.ProjectDocument{}, false, fmt.Errorf("decode document %s: %w", id, err)
	}
	return doc, true, nil
}

// Upsert replaces the document stored for its id. The batch endpoint writes
// by object id, so repeated calls overwrite rather than append.
func (i *Index) Upsert(ctx context.Context, doc catalog.ProjectDocument) error {
	obj := objectFromDocument(i.className, doc)

	resp, err := i.client.Batch().ObjectsBatcher().
		WithObjects(obj).
		Do(ctx)
	if err != nil {
		return wrapEngineError("upsert document", err)
	}

	for _, r := range resp {
		if r.Result != nil && r.Result.Errors != nil && len(r.Result.Errors.Error) > 0 {
			return fmt.Errorf("upsert document %s: %s", doc.ID(), r.Result.Errors.Error[0].Message)
		}
	}
	return nil
}

// VectorQuery returns up to limit hits ranked by similarity to vector.
// Scores are Weaviate certainty values: cosine similarity rescaled to [0,1].
func (i *Index) VectorQuery(ctx context.Context, vector []float32, limit int) ([]search.Hit, error) {
	nearVector := i.client.GraphQL().NearVectorArgBuilder().
		WithVector(vector)

	fields := []graphql.Field{
		{Name: propProjectID},
		{Name: "_additional", Fields: []graphql.Field{
			{Name: "certainty"},
		}},
	}

	resp, err := i.client.GraphQL().Get().
		WithClassName(i.className).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, wrapEngineError("vector query", err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("vector query: %s", resp.Errors[0].Message)
	}

	return hitsFromResponse(resp, i.className)
}

// wrapEngineError tags connection-level failures with search.ErrUnavailable
// so the pipeline can treat them as fatal rather than per-project.
func wrapEngineError(op string, err error) error {
	if isConnectionError(err) {
		return fmt.Errorf("%w: %s: %s", search.ErrUnavailable, op, err.Error())
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isConnectionError reports whether the request never reached the engine.
func isConnectionError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var clientErr *fault.WeaviateClientError
	if errors.As(err, &clientErr) {
		return clientErr.StatusCode <= 0 && clientErr.DerivedFromError != nil
	}
	return false
}

// isNotFound reports whether the engine returned a 404 for an object get.
func isNotFound(err error) bool {
	var clientErr *fault.WeaviateClientError
	return errors.As(err, &clientErr) && clientErr.StatusCode == 404
}

var _ search.Index = (*Index)(nil)
