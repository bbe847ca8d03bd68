// Package search provides the contracts between the indexing pipeline and
// its external services: the embedding provider and the vector search engine.
package search

import (
	"fmt"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the tokenizer encoding used by the OpenAI embedding
// model family.
const DefaultEncoding = "cl100k_base"

// TokenBudget caps text at a maximum token count using a provider-compatible
// tokenizer. Truncation operates on token boundaries: the text is encoded,
// cut to the budget, and decoded back, so the result never ends mid-codepoint.
type TokenBudget struct {
	enc       *tiktoken.Tiktoken
	maxTokens int
}

// NewTokenBudget creates a TokenBudget for the given encoding.
// maxTokens must be positive.
func NewTokenBudget(encoding string, maxTokens int) (TokenBudget, error) {
	if maxTokens <= 0 {
		return TokenBudget{}, fmt.Errorf("NewTokenBudget: maxTokens must be positive, got %d", maxTokens)
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return TokenBudget{}, fmt.Errorf("NewTokenBudget: load encoding %q: %w", encoding, err)
	}
	return TokenBudget{enc: enc, maxTokens: maxTokens}, nil
}

// MaxTokens returns the token budget.
func (b TokenBudget) MaxTokens() int { return b.maxTokens }

// CountTokens returns the token count of text under the budget's encoding.
func (b TokenBudget) CountTokens(text string) int {
	return len(b.enc.Encode(text, nil, nil))
}

// Truncate returns text capped to the token budget. Byte-level BPE token
// boundaries can split a multi-byte codepoint; any trailing partial rune is
// dropped so the result is always valid UTF-8.
func (b TokenBudget) Truncate(text string) string {
	tokens := b.enc.Encode(text, nil, nil)
	if len(tokens) <= b.maxTokens {
		return text
	}

	cut := b.enc.Decode(tokens[:b.maxTokens])
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
