package persistence

import (
	"github.com/hackgraph/hackgraph/domain/catalog"
	"github.com/hackgraph/hackgraph/domain/graph"
)

// ProjectMapper maps between catalog.ProjectRecord and ProjectModel.
type ProjectMapper struct{}

// ToDomain converts a ProjectModel to a catalog.ProjectRecord.
func (m ProjectMapper) ToDomain(model ProjectModel) catalog.ProjectRecord {
	prizes := make([]catalog.Prize, len(model.Prizes))
	for i, p := range model.Prizes {
		prizes[i] = catalog.NewPrize(p.Name, p.Detail, p.PrizeType, p.Sponsor, p.SponsorOrganization)
	}

	return catalog.NewProjectRecord(model.ID, model.Name, model.Tagline, model.Description, model.HowItsMade).
		WithSlug(model.Slug).
		WithEventName(model.EventName).
		WithSourceCodeURL(model.SourceCodeURL).
		WithLogoURL(model.LogoURL).
		WithBannerURL(model.BannerURL).
		WithPrizes(prizes)
}

// ToModel converts a catalog.ProjectRecord to a ProjectModel. Prize rows are
// produced separately via PrizeModels so they can be upserted on their own
// conflict target.
func (m ProjectMapper) ToModel(record catalog.ProjectRecord) ProjectModel {
	return ProjectModel{
		ID:            record.ID(),
		Slug:          record.Slug(),
		Name:          record.Name(),
		Tagline:       record.Tagline(),
		Description:   record.Description(),
		HowItsMade:    record.HowItsMade(),
		SourceCodeURL: record.SourceCodeURL(),
		EventName:     record.EventName(),
		LogoURL:       record.LogoURL(),
		BannerURL:     record.BannerURL(),
	}
}

// PrizeModels converts a record's prizes to rows keyed by project id.
func (m ProjectMapper) PrizeModels(record catalog.ProjectRecord) []PrizeModel {
	prizes := record.Prizes()
	models := make([]PrizeModel, len(prizes))
	for i, p := range prizes {
		models[i] = PrizeModel{
			ProjectID:           record.ID(),
			Detail:              p.Detail(),
			Name:                p.Name(),
			PrizeType:           p.Type(),
			Sponsor:             p.Sponsor(),
			SponsorOrganization: p.SponsorOrganization(),
		}
	}
	return models
}

// EdgeMapper maps between graph.SimilarityEdge and EdgeModel.
type EdgeMapper struct{}

// ToDomain converts an EdgeModel to a graph.SimilarityEdge.
func (m EdgeMapper) ToDomain(model EdgeModel) (graph.SimilarityEdge, error) {
	return graph.NewSimilarityEdge(model.LowID, model.HighID, model.Score)
}

// ToModel converts a graph.SimilarityEdge to an EdgeModel.
func (m EdgeMapper) ToModel(edge graph.SimilarityEdge) EdgeModel {
	return EdgeModel{
		LowID:  edge.LowID(),
		HighID: edge.HighID(),
		Score:  edge.Score(),
	}
}
