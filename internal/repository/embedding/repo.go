// Package embedding is the store-backed reader/writer for item vectors.
package embedding

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/DominicD213/shoprank/internal/db"
	"github.com/DominicD213/shoprank/internal/domain"
)

const keyPrefix = domain.KeyPrefix + "vec:"

// store is the consumer interface for embedding operations (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo persists one vector per catalog item, keyed by item id. Vectors are
// stored as raw little-endian float32 bytes with the dimension alongside.
type Repo struct {
	store store
}

// New creates an embedding repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Get fetches the vector for one item.
// Returns domain.ErrMissingEmbedding when the item has no stored vector.
func (r *Repo) Get(ctx context.Context, itemID string) (domain.Embedding, error) {
	m, err := r.store.HGetAll(ctx, keyPrefix+itemID)
	if err != nil {
		return domain.Embedding{}, fmt.Errorf("get embedding %s: %w", itemID, err)
	}
	emb, ok := parseHashFields(itemID, m)
	if !ok {
		return domain.Embedding{}, fmt.Errorf("item %s: %w", itemID, domain.ErrMissingEmbedding)
	}
	return emb, nil
}

// GetMulti fetches vectors for a set of items, silently skipping items
// without one. Missing vectors are a degraded path, not an error.
func (r *Repo) GetMulti(ctx context.Context, itemIDs []string) (map[string]domain.Embedding, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	keys := make([]string, len(itemIDs))
	for i, id := range itemIDs {
		keys[i] = keyPrefix + id
	}
	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("get embeddings: %w", err)
	}
	out := make(map[string]domain.Embedding, len(itemIDs))
	for i, m := range maps {
		if emb, ok := parseHashFields(itemIDs[i], m); ok {
			out[itemIDs[i]] = emb
		}
	}
	return out, nil
}

// All returns every stored embedding keyed by item id.
func (r *Repo) All(ctx context.Context) (map[string]domain.Embedding, error) {
	keys, err := r.store.Scan(ctx, keyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan embeddings: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	sort.Strings(keys)

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("get embeddings: %w", err)
	}
	out := make(map[string]domain.Embedding, len(keys))
	for i, m := range maps {
		id := strings.TrimPrefix(keys[i], keyPrefix)
		if emb, ok := parseHashFields(id, m); ok {
			out[id] = emb
		}
	}
	return out, nil
}

// Put stores an item vector, replacing any previous one in place.
func (r *Repo) Put(ctx context.Context, emb domain.Embedding) error {
	if emb.Dim() == 0 {
		return fmt.Errorf("put embedding %s: empty vector", emb.ItemID())
	}
	if err := r.store.HSet(ctx, keyPrefix+emb.ItemID(), buildHashFields(emb)); err != nil {
		return fmt.Errorf("put embedding %s: %w", emb.ItemID(), err)
	}
	return nil
}

// PutMulti stores multiple vectors in one round-trip (ingest path).
func (r *Repo) PutMulti(ctx context.Context, embs []domain.Embedding) error {
	if len(embs) == 0 {
		return nil
	}
	batch := make([]db.HashSetItem, len(embs))
	for i, emb := range embs {
		if emb.Dim() == 0 {
			return fmt.Errorf("put embedding %s: empty vector", emb.ItemID())
		}
		batch[i] = db.HashSetItem{Key: keyPrefix + emb.ItemID(), Fields: buildHashFields(emb)}
	}
	if err := r.store.HSetMulti(ctx, batch); err != nil {
		return fmt.Errorf("put embeddings: %w", err)
	}
	return nil
}
