package recommend

import (
	"context"
	"time"

	"github.com/DominicD213/shoprank/internal/domain"
	domact "github.com/DominicD213/shoprank/internal/domain/activity"
	domcat "github.com/DominicD213/shoprank/internal/domain/catalog"
)

// EmbeddingReader fetches stored item vectors.
type EmbeddingReader interface {
	Get(ctx context.Context, itemID string) (domain.Embedding, error)
	All(ctx context.Context) (map[string]domain.Embedding, error)
}

// CatalogReader fetches the catalog records used to shape results.
type CatalogReader interface {
	GetMulti(ctx context.Context, ids []string) ([]domcat.Item, error)
}

// ActivityReader reads the append-only activity log.
type ActivityReader interface {
	EventsByUserSince(ctx context.Context, userID string, since time.Time) ([]domact.Event, error)
	Users(ctx context.Context) ([]string, error)
}
