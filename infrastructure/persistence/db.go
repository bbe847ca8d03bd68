package persistence

import (
	"github.com/hackgraph/hackgraph/internal/database"
)

// AutoMigrate runs GORM auto migration for all models.
func AutoMigrate(db database.Database) error {
	return db.GORM().AutoMigrate(
		&ProjectModel{},
		&PrizeModel{},
		&EdgeModel{},
	)
}
