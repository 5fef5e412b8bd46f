package search

import (
	"context"

	"github.com/DominicD213/shoprank/internal/domain"
	domcat "github.com/DominicD213/shoprank/internal/domain/catalog"
	domsearch "github.com/DominicD213/shoprank/internal/domain/search"
	"github.com/DominicD213/shoprank/internal/domain/term"
	"github.com/DominicD213/shoprank/internal/usecase/scoring"
)

// Validator screens the raw query into validated terms.
type Validator interface {
	Validate(ctx context.Context, raw string, class term.Class) (int, []term.Term, error)
}

// CatalogReader fetches catalog items matching the request filters.
type CatalogReader interface {
	Filter(ctx context.Context, f domsearch.Filters) ([]domcat.Item, error)
}

// EmbeddingReader fetches stored vectors for a candidate set. Items without
// a vector are simply absent from the returned map.
type EmbeddingReader interface {
	GetMulti(ctx context.Context, itemIDs []string) (map[string]domain.Embedding, error)
}

// Scorer ranks one same-dimension candidate group against the query.
type Scorer interface {
	ScoreGroup(ctx context.Context, query string, dim int, candidates []scoring.Candidate) ([]scoring.Scored, error)
}
