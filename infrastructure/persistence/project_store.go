package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hackgraph/hackgraph/domain/catalog"
	"github.com/hackgraph/hackgraph/internal/database"
)

// ProjectStore implements catalog.ProjectStore using GORM.
type ProjectStore struct {
	db     database.Database
	mapper ProjectMapper
}

// NewProjectStore creates a new ProjectStore.
func NewProjectStore(db database.Database) ProjectStore {
	return ProjectStore{
		db:     db,
		mapper: ProjectMapper{},
	}
}

// SaveAll upserts records and their prize rows. Project rows conflict on id;
// prize rows conflict on (project_id, detail) so re-ingesting the same
// catalog page does not duplicate prizes.
func (s ProjectStore) SaveAll(ctx context.Context, records []catalog.ProjectRecord) error {
	if len(records) == 0 {
		return nil
	}

	return s.db.GORM().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		models := make([]ProjectModel, len(records))
		for i, r := range records {
			models[i] = s.mapper.ToModel(r)
		}

		result := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"slug", "name", "tagline", "description", "how_its_made",
				"source_code_url", "event_name", "logo_url", "banner_url",
				"updated_at",
			}),
		}).Create(&models)
		if result.Error != nil {
			return fmt.Errorf("save projects: %w", result.Error)
		}

		var prizeModels []PrizeModel
		for _, r := range records {
			prizeModels = append(prizeModels, s.mapper.PrizeModels(r)...)
		}
		if len(prizeModels) == 0 {
			return nil
		}

		result = tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "project_id"}, {Name: "detail"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "prize_type", "sponsor", "sponsor_organization",
			}),
		}).Create(&prizeModels)
		if result.Error != nil {
			return fmt.Errorf("save prizes: %w", result.Error)
		}
		return nil
	})
}

// Get returns the record for id, including prizes.
func (s ProjectStore) Get(ctx context.Context, id string) (catalog.ProjectRecord, error) {
	var model ProjectModel
	result := s.db.Session(ctx).Preload("Prizes").Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return catalog.ProjectRecord{}, fmt.Errorf("%w: project with id %s", database.ErrNotFound, id)
		}
		return catalog.ProjectRecord{}, fmt.Errorf("get project: %w", result.Error)
	}
	return s.mapper.ToDomain(model), nil
}

// List returns all records, including prizes, ordered by id.
func (s ProjectStore) List(ctx context.Context) ([]catalog.ProjectRecord, error) {
	var models []ProjectModel
	result := s.db.Session(ctx).Preload("Prizes").Order("id").Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("list projects: %w", result.Error)
	}

	records := make([]catalog.ProjectRecord, len(models))
	for i, m := range models {
		records[i] = s.mapper.ToDomain(m)
	}
	return records, nil
}

// ListIDs returns all project ids ordered by id.
func (s ProjectStore) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	result := s.db.Session(ctx).Model(&ProjectModel{}).Order("id").Pluck("id", &ids)
	if result.Error != nil {
		return nil, fmt.Errorf("list project ids: %w", result.Error)
	}
	return ids, nil
}

var _ catalog.ProjectStore = (*ProjectStore)(nil)
