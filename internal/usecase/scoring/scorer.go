// Package scoring ranks catalog items against a query by blended relevance:
// vector similarity combined with catalog popularity and rating signals.
package scoring

import (
	"context"
	"fmt"

	"github.com/DominicD213/shoprank/internal/domain"
	domcat "github.com/DominicD213/shoprank/internal/domain/catalog"
)

// Blend weights. Cosine similarity dominates; popularity and rating pull
// equally on the remainder.
const (
	cosineWeight     = 0.6
	popularityWeight = 0.2
	ratingWeight     = 0.2

	popularityMax = 1000
	ratingMax     = 5.0
)

// Embedder derives a deterministic query vector at an explicit dimension.
type Embedder interface {
	EmbedDim(ctx context.Context, text string, dim int) (domain.EmbeddingResult, error)
}

// Candidate pairs an item with its stored vector.
type Candidate struct {
	Item   domcat.Item
	Vector []float32
}

// Scored pairs an item with its combined score. Output is unsorted; ordering
// is the caller's job.
type Scored struct {
	Item  domcat.Item
	Score float64
}

// Service scores candidate items against query text.
type Service struct {
	embed Embedder
}

// New creates a scorer.
func New(embed Embedder) *Service {
	return &Service{embed: embed}
}

// ScoreGroup scores candidates whose vectors all share the given dimension.
// Empty candidate sets return nil without touching the embedder. A candidate
// vector of a different length is a data error, not something to coerce.
func (s *Service) ScoreGroup(ctx context.Context, query string, dim int, candidates []Candidate) ([]Scored, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	result, err := s.embed.EmbedDim(ctx, query, dim)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	queryVec := result.Embedding

	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Vector) != dim {
			return nil, fmt.Errorf("item %s: vector dim %d in group of dim %d: %w",
				c.Item.ID(), len(c.Vector), dim, domain.ErrDimensionMismatch)
		}
		scored = append(scored, Scored{
			Item:  c.Item,
			Score: Blend(domain.Cosine(queryVec, c.Vector), c.Item.Popularity(), c.Item.Rating()),
		})
	}
	return scored, nil
}

// Blend computes the combined relevance score from a cosine similarity plus
// the item's popularity and rating signals.
func Blend(cosine float64, popularity int, rating float64) float64 {
	return cosineWeight*cosine +
		popularityWeight*Normalize(float64(popularity), 0, popularityMax) +
		ratingWeight*Normalize(rating, 0, ratingMax)
}

// Normalize clamps v to [min, max] and maps it linearly onto [0, 1]. A
// degenerate range yields 0.
func Normalize(v, min, max float64) float64 {
	if min >= max {
		return 0
	}
	if v < min {
		v = min
	}
	if v > max {
		v = max
	}
	return (v - min) / (max - min)
}
