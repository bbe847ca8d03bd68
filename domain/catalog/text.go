package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// textSeparator joins the text fields of a project into one blob. Changing it
// invalidates every stored content fingerprint, forcing full re-embedding.
const textSeparator = "\n\n"

// JoinText builds the canonical text blob for a record: the non-empty text
// fields (name, tagline, description, how it's made) joined in order.
func JoinText(record ProjectRecord) string {
	fields := []string{
		record.Name(),
		record.Tagline(),
		record.Description(),
		record.HowItsMade(),
	}

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			continue
		}
		parts = append(parts, f)
	}
	return strings.Join(parts, textSeparator)
}

// Fingerprint returns the content fingerprint of a text blob: the SHA-256 of
// the untruncated text, hex encoded. Computed over the full text so that
// token-budget truncation changes never spuriously invalidate the embedding
// cache.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
