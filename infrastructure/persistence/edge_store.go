package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/hackgraph/hackgraph/domain/graph"
	"github.com/hackgraph/hackgraph/internal/database"
)

// EdgeStore implements graph.EdgeStore using GORM.
type EdgeStore struct {
	db     database.Database
	mapper EdgeMapper
}

// NewEdgeStore creates a new EdgeStore.
func NewEdgeStore(db database.Database) EdgeStore {
	return EdgeStore{
		db:     db,
		mapper: EdgeMapper{},
	}
}

// SaveAll upserts edges. The conflict target is the canonical (low_id,
// high_id) pair; re-running similarity for the same pair refreshes the score
// instead of inserting a duplicate.
func (s EdgeStore) SaveAll(ctx context.Context, edges []graph.SimilarityEdge) error {
	if len(edges) == 0 {
		return nil
	}

	models := make([]EdgeModel, len(edges))
	for i, e := range edges {
		models[i] = s.mapper.ToModel(e)
	}

	result := s.db.Session(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "low_id"}, {Name: "high_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "updated_at"}),
	}).Create(&models)
	if result.Error != nil {
		return fmt.Errorf("save edges: %w", result.Error)
	}
	return nil
}

// Count returns the number of persisted edges.
func (s EdgeStore) Count(ctx context.Context) (int64, error) {
	var count int64
	result := s.db.Session(ctx).Model(&EdgeModel{}).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("count edges: %w", result.Error)
	}
	return count, nil
}

// ForProject returns the edges touching a project id, best score first.
func (s EdgeStore) ForProject(ctx context.Context, id string) ([]graph.SimilarityEdge, error) {
	var models []EdgeModel
	result := s.db.Session(ctx).
		Where("low_id = ? OR high_id = ?", id, id).
		Order("score DESC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("edges for project: %w", result.Error)
	}

	edges := make([]graph.SimilarityEdge, 0, len(models))
	for _, m := range models {
		edge, err := s.mapper.ToDomain(m)
		if err != nil {
			return nil, fmt.Errorf("decode edge (%s, %s): %w", m.LowID, m.HighID, err)
		}
		edges = append(edges, edge)
	}
	return edges, nil
}

var _ graph.EdgeStore = (*EdgeStore)(nil)
