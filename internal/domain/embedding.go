package domain

import "context"

// KeyPrefix namespaces every key this service writes to the store.
const KeyPrefix = "shoprank:"

// DefaultDimensions is the system-wide embedding dimension. Every vector
// written by the indexer has this length; legacy data may differ and is
// handled by grouping, never by blending dimensions in one computation.
const DefaultDimensions = 300

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// DimEmbedder produces a vector of an explicit dimension. Used when legacy
// data holds vectors of a non-default length and a matching query vector is
// needed for that group.
type DimEmbedder interface {
	EmbedDim(ctx context.Context, text string, dim int) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the
// decorator chain. Local providers report zero tokens.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedding is a stored item vector.
type Embedding struct {
	itemID string
	vector []float32
}

// NewEmbedding creates an item embedding.
func NewEmbedding(itemID string, vector []float32) Embedding {
	return Embedding{itemID: itemID, vector: vector}
}

// ItemID returns the owning item identifier.
func (e Embedding) ItemID() string { return e.itemID }

// Vector returns the raw vector.
func (e Embedding) Vector() []float32 { return e.vector }

// Dim returns the vector length.
func (e Embedding) Dim() int { return len(e.vector) }
