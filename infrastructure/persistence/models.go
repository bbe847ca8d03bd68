// Package persistence provides the relational storage implementations.
package persistence

import "time"

// ProjectModel represents a hackathon project in the database.
type ProjectModel struct {
	ID            string       `gorm:"column:id;primaryKey;size:64"`
	Slug          string       `gorm:"column:slug;index;size:512"`
	Name          string       `gorm:"column:name;size:512"`
	Tagline       string       `gorm:"column:tagline;type:text"`
	Description   string       `gorm:"column:description;type:text"`
	HowItsMade    string       `gorm:"column:how_its_made;type:text"`
	SourceCodeURL string       `gorm:"column:source_code_url;size:1024"`
	EventName     string       `gorm:"column:event_name;index;size:255"`
	LogoURL       string       `gorm:"column:logo_url;size:1024"`
	BannerURL     string       `gorm:"column:banner_url;size:1024"`
	Prizes        []PrizeModel `gorm:"foreignKey:ProjectID;references:ID"`
	CreatedAt     time.Time    `gorm:"column:created_at"`
	UpdatedAt     time.Time    `gorm:"column:updated_at"`
}

// TableName returns the table name.
func (ProjectModel) TableName() string {
	return "projects"
}

// PrizeModel represents one prize entry for a project.
type PrizeModel struct {
	ID                  int64     `gorm:"primaryKey;autoIncrement"`
	ProjectID           string    `gorm:"column:project_id;uniqueIndex:idx_project_prize;size:64"`
	Detail              string    `gorm:"column:detail;uniqueIndex:idx_project_prize;size:512"`
	Name                string    `gorm:"column:name;size:512"`
	PrizeType           string    `gorm:"column:prize_type;index;size:255"`
	Sponsor             string    `gorm:"column:sponsor;size:255"`
	SponsorOrganization string    `gorm:"column:sponsor_organization;index;size:255"`
	CreatedAt           time.Time `gorm:"column:created_at"`
}

// TableName returns the table name.
func (PrizeModel) TableName() string {
	return "prizes"
}

// EdgeModel represents one undirected similarity edge between two projects.
// The pair is stored in canonical order, low id first.
type EdgeModel struct {
	LowID     string    `gorm:"column:low_id;primaryKey;size:64"`
	HighID    string    `gorm:"column:high_id;primaryKey;size:64"`
	Score     float64   `gorm:"column:score"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName returns the table name.
func (EdgeModel) TableName() string {
	return "similarity_edges"
}
