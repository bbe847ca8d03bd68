package catalog

import "sort"

// ProjectDocument is the indexed, searchable representation of a project.
// There is exactly one document per project id. Facet lists are sorted and
// deduplicated so indexed documents are deterministic across runs.
type ProjectDocument struct {
	id                   string
	name                 string
	tagline              string
	description          string
	howItsMade           string
	eventName            string
	prizeTypes           []string
	sponsorOrganizations []string
	embedding            []float32
	fingerprint          string
}

// NewProjectDocument builds a document from an upstream record and the
// content fingerprint of its normalized text. The embedding is attached
// separately via WithEmbedding.
func NewProjectDocument(record ProjectRecord, fingerprint string) ProjectDocument {
	return ProjectDocument{
		id:                   record.ID(),
		name:                 record.Name(),
		tagline:              record.Tagline(),
		description:          record.Description(),
		howItsMade:           record.HowItsMade(),
		eventName:            record.EventName(),
		prizeTypes:           record.PrizeTypes(),
		sponsorOrganizations: record.SponsorOrganizations(),
		fingerprint:          fingerprint,
	}
}

// ReconstructDocument rebuilds a document from stored fields.
func ReconstructDocument(
	id, name, tagline, description, howItsMade, eventName string,
	prizeTypes, sponsorOrganizations []string,
	embedding []float32,
	fingerprint string,
) ProjectDocument {
	emb := make([]float32, len(embedding))
	copy(emb, embedding)
	return ProjectDocument{
		id:                   id,
		name:                 name,
		tagline:              tagline,
		description:          description,
		howItsMade:           howItsMade,
		eventName:            eventName,
		prizeTypes:           dedupSorted(prizeTypes),
		sponsorOrganizations: dedupSorted(sponsorOrganizations),
		embedding:            emb,
		fingerprint:          fingerprint,
	}
}

// WithEmbedding returns a copy with the embedding vector set.
func (d ProjectDocument) WithEmbedding(embedding []float32) ProjectDocument {
	cp := make([]float32, len(embedding))
	copy(cp, embedding)
	d.embedding = cp
	return d
}

// ID returns the project identifier.
func (d ProjectDocument) ID() string { return d.id }

// Name returns the project name.
func (d ProjectDocument) Name() string { return d.name }

// Tagline returns the tagline.
func (d ProjectDocument) Tagline() string { return d.tagline }

// Description returns the description.
func (d ProjectDocument) Description() string { return d.description }

// HowItsMade returns the "how it's made" text.
func (d ProjectDocument) HowItsMade() string { return d.howItsMade }

// EventName returns the event name facet.
func (d ProjectDocument) EventName() string { return d.eventName }

// PrizeTypes returns the sorted, deduplicated prize type facets.
func (d ProjectDocument) PrizeTypes() []string {
	cp := make([]string, len(d.prizeTypes))
	copy(cp, d.prizeTypes)
	return cp
}

// SponsorOrganizations returns the sorted, deduplicated sponsor facets.
func (d ProjectDocument) SponsorOrganizations() []string {
	cp := make([]string, len(d.sponsorOrganizations))
	copy(cp, d.sponsorOrganizations)
	return cp
}

// Embedding returns the embedding vector, or nil if none is attached.
func (d ProjectDocument) Embedding() []float32 {
	if d.embedding == nil {
		return nil
	}
	cp := make([]float32, len(d.embedding))
	copy(cp, d.embedding)
	return cp
}

// HasEmbedding reports whether a non-empty embedding is attached.
func (d ProjectDocument) HasEmbedding() bool { return len(d.embedding) > 0 }

// Fingerprint returns the content fingerprint of the normalized text.
func (d ProjectDocument) Fingerprint() string { return d.fingerprint }

// dedupSorted returns the distinct non-empty values in sorted order.
func dedupSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
