package search

import (
	"github.com/hackgraph/hackgraph/domain/catalog"
)

// NormalizedText is the output of text normalization for one project.
type NormalizedText struct {
	full        string
	truncated   string
	fingerprint string
}

// Full returns the untruncated normalized text.
func (n NormalizedText) Full() string { return n.full }

// Truncated returns the normalized text capped to the token budget. This is
// the text sent to the embedding provider.
func (n NormalizedText) Truncated() string { return n.truncated }

// Fingerprint returns the content fingerprint, computed over the full text.
func (n NormalizedText) Fingerprint() string { return n.fingerprint }

// IsEmpty reports whether the record had no text content at all.
func (n NormalizedText) IsEmpty() bool { return n.full == "" }

// Normalizer builds the canonical text blob for a project and enforces the
// embedding token budget. Pure, no side effects.
type Normalizer struct {
	budget TokenBudget
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(budget TokenBudget) Normalizer {
	return Normalizer{budget: budget}
}

// Normalize joins the record's non-empty text fields, fingerprints the full
// join, and truncates a copy to the token budget.
func (n Normalizer) Normalize(record catalog.ProjectRecord) NormalizedText {
	full := catalog.JoinText(record)
	return NormalizedText{
		full:        full,
		truncated:   n.budget.Truncate(full),
		fingerprint: catalog.Fingerprint(full),
	}
}
