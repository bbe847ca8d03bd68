package search

import (
	"context"
	"errors"
)

// ErrContextTooLong indicates the provider rejected the input for exceeding
// its context window. Recoverable by shrinking the text and retrying.
var ErrContextTooLong = errors.New("embedding input exceeds provider context window")

// Embedder converts text into an embedding vector. Implementations retry
// transient failures internally with backoff; permanent failures and
// ErrContextTooLong surface to the caller.
type Embedder interface {
	// Embed returns a fixed-length vector for text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the vector dimension this embedder produces.
	Dimension() int
}
