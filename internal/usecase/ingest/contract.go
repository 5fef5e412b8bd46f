package ingest

import (
	"context"

	"github.com/DominicD213/shoprank/internal/domain"
	domact "github.com/DominicD213/shoprank/internal/domain/activity"
	domcat "github.com/DominicD213/shoprank/internal/domain/catalog"
)

// CatalogStore reads and writes catalog items.
type CatalogStore interface {
	All(ctx context.Context) ([]domcat.Item, error)
	PutMulti(ctx context.Context, items []domcat.Item) error
}

// EmbeddingStore reads and writes item vectors.
type EmbeddingStore interface {
	All(ctx context.Context) (map[string]domain.Embedding, error)
	PutMulti(ctx context.Context, embs []domain.Embedding) error
}

// ActivityWriter appends activity events.
type ActivityWriter interface {
	Append(ctx context.Context, ev domact.Event) error
}

// Embedder vectorizes item text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
