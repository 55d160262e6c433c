package embedding

import (
	"context"
	"math"
)

// Fake is a deterministic embedder for tests and offline runs. Identical
// inputs always produce identical vectors, so index behavior stays testable
// without a model server.
type Fake struct {
	dim int
}

// NewFake creates a fake embedder with the given vector size.
func NewFake(dim int) *Fake {
	if dim <= 0 {
		dim = 8
	}
	return &Fake{dim: dim}
}

// Dimension returns the configured vector size.
func (f *Fake) Dimension() int { return f.dim }

// Encode hashes the text bytes into a normalized vector.
func (f *Fake) Encode(_ context.Context, text string) ([]float64, error) {
	vec := make([]float64, f.dim)
	for i, b := range []byte(text) {
		vec[(i+int(b))%f.dim] += float64(b%13) - 6
	}
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}
