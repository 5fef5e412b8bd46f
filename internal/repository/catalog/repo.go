// Package catalog is the store-backed reader for catalog items.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/DominicD213/shoprank/internal/db"
	"github.com/DominicD213/shoprank/internal/domain"
	domcat "github.com/DominicD213/shoprank/internal/domain/catalog"
	domsearch "github.com/DominicD213/shoprank/internal/domain/search"
)

const keyPrefix = domain.KeyPrefix + "item:"

// store is the consumer interface for catalog operations (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo reads and writes catalog items as Redis hashes.
type Repo struct {
	store store
}

// New creates a catalog repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// GetByID fetches one item. Returns domain.ErrItemNotFound for unknown ids.
func (r *Repo) GetByID(ctx context.Context, id string) (domcat.Item, error) {
	m, err := r.store.HGetAll(ctx, keyPrefix+id)
	if err != nil {
		return domcat.Item{}, fmt.Errorf("get item %s: %w", id, err)
	}
	if len(m) == 0 {
		return domcat.Item{}, fmt.Errorf("item %s: %w", id, domain.ErrItemNotFound)
	}
	return parseHashFields(id, m), nil
}

// GetMulti fetches items by id, skipping unknown ids. Order follows ids.
func (r *Repo) GetMulti(ctx context.Context, ids []string) ([]domcat.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyPrefix + id
	}
	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	items := make([]domcat.Item, 0, len(ids))
	for i, m := range maps {
		if len(m) == 0 {
			continue
		}
		items = append(items, parseHashFields(ids[i], m))
	}
	return items, nil
}

// All returns every catalog item in stable id order.
func (r *Repo) All(ctx context.Context) ([]domcat.Item, error) {
	keys, err := r.store.Scan(ctx, keyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan items: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	// SCAN order is not stable; sort for deterministic fetch order.
	sort.Strings(keys)

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	items := make([]domcat.Item, 0, len(keys))
	for i, m := range maps {
		if len(m) == 0 {
			continue
		}
		items = append(items, parseHashFields(strings.TrimPrefix(keys[i], keyPrefix), m))
	}
	return items, nil
}

// Filter returns items matching every provided filter: price range inclusive
// both ends, brand as case-insensitive substring, rating floor inclusive.
func (r *Repo) Filter(ctx context.Context, f domsearch.Filters) ([]domcat.Item, error) {
	items, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	if f.IsEmpty() {
		return items, nil
	}
	matched := items[:0]
	for _, it := range items {
		if matchesFilters(&it, f) {
			matched = append(matched, it)
		}
	}
	return matched, nil
}

// CategoryForTag returns the category of the first item whose tags contain
// the term (case-insensitive), or "" when no item matches. Items are walked
// in stable id order; a full walk is fine at this catalog size.
func (r *Repo) CategoryForTag(ctx context.Context, tag string) (string, error) {
	items, err := r.All(ctx)
	if err != nil {
		return "", err
	}
	needle := strings.ToLower(tag)
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Tags()), needle) {
			return it.Category(), nil
		}
	}
	return "", nil
}

// Put stores an item (ingest path).
func (r *Repo) Put(ctx context.Context, it domcat.Item) error {
	if err := r.store.HSet(ctx, keyPrefix+it.ID(), buildHashFields(&it)); err != nil {
		return fmt.Errorf("put item %s: %w", it.ID(), err)
	}
	return nil
}

// PutMulti stores multiple items in one round-trip (ingest path).
func (r *Repo) PutMulti(ctx context.Context, items []domcat.Item) error {
	if len(items) == 0 {
		return nil
	}
	batch := make([]db.HashSetItem, len(items))
	for i := range items {
		batch[i] = db.HashSetItem{
			Key:    keyPrefix + items[i].ID(),
			Fields: buildHashFields(&items[i]),
		}
	}
	if err := r.store.HSetMulti(ctx, batch); err != nil {
		return fmt.Errorf("put items: %w", err)
	}
	return nil
}

func matchesFilters(it *domcat.Item, f domsearch.Filters) bool {
	if f.MinPrice != nil && it.Price() < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && it.Price() > *f.MaxPrice {
		return false
	}
	if f.Brand != "" && !strings.Contains(strings.ToLower(it.Brand()), strings.ToLower(f.Brand)) {
		return false
	}
	if f.MinRating != nil && it.Rating() < *f.MinRating {
		return false
	}
	return true
}
