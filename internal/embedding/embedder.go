// Package embedding converts free text into fixed-length numeric vectors for
// similarity search.
package embedding

import "context"

// Embedder produces a fixed-length vector for a text input. Implementations
// are constructed once and reused: real providers amortize expensive
// initialization across many Encode calls.
type Embedder interface {
	Encode(ctx context.Context, text string) ([]float64, error)
	Dimension() int
}
