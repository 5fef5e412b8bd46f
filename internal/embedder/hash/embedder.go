// Package hash provides a deterministic, offline embedding provider. The
// vector for a given text is derived from a hash of the text, so equal inputs
// always embed to equal vectors across processes and restarts. Useful for
// local development and as a fallback when no external provider is configured.
package hash

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"

	"github.com/DominicD213/shoprank/internal/domain"
)

// Embedder generates pseudo-random unit vectors seeded by the input text.
type Embedder struct {
	dimensions int
}

// New creates a hash embedder producing vectors of the given dimensionality.
func New(dimensions int) (*Embedder, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("invalid dimensions: %d", dimensions)
	}
	return &Embedder{dimensions: dimensions}, nil
}

// Embed returns the deterministic vector for text at the configured
// dimensionality. Token counts are always zero: no provider is consulted.
func (e *Embedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	return e.embed(text, e.dimensions)
}

// EmbedDim returns the deterministic vector for text at an explicit
// dimensionality, used when scoring items stored with legacy vector sizes.
func (e *Embedder) EmbedDim(_ context.Context, text string, dim int) (domain.EmbeddingResult, error) {
	if dim <= 0 {
		return domain.EmbeddingResult{}, fmt.Errorf("invalid dimensions: %d", dim)
	}
	return e.embed(text, dim)
}

// HealthCheck always succeeds: there is no upstream dependency.
func (e *Embedder) HealthCheck(_ context.Context) error { return nil }

func (e *Embedder) embed(text string, dim int) (domain.EmbeddingResult, error) {
	normalized := strings.ToLower(strings.TrimSpace(text))

	h := fnv.New64a()
	h.Write([]byte(normalized))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = float32(rng.NormFloat64())
	}
	domain.UnitNormalize(vec)

	return domain.EmbeddingResult{Embedding: vec}, nil
}
