package catalog

import "context"

// ProjectSource supplies upstream project records. The paginated download
// client implements this; the pipeline only consumes already-fetched records.
type ProjectSource interface {
	Projects(ctx context.Context) ([]ProjectRecord, error)
}

// ProjectStore persists project records and their prizes in the relational
// store. Saves are idempotent upserts keyed by project id.
type ProjectStore interface {
	// SaveAll upserts records and their prize rows.
	SaveAll(ctx context.Context, records []ProjectRecord) error

	// Get returns the record for id, including prizes.
	Get(ctx context.Context, id string) (ProjectRecord, error)

	// List returns all records, including prizes, ordered by id.
	List(ctx context.Context) ([]ProjectRecord, error)

	// ListIDs returns all project ids ordered by id.
	ListIDs(ctx context.Context) ([]string, error)
}
