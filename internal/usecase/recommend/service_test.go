package recommend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/DominicD213/shoprank/internal/domain"
	domact "github.com/DominicD213/shoprank/internal/domain/activity"
	domcat "github.com/DominicD213/shoprank/internal/domain/catalog"
	domsearch "github.com/DominicD213/shoprank/internal/domain/search"
	"github.com/DominicD213/shoprank/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterCoreMetrics()
	os.Exit(m.Run())
}

type mockVectors struct {
	vecs map[string]domain.Embedding
	err  error
}

func (m *mockVectors) Get(_ context.Context, itemID string) (domain.Embedding, error) {
	if m.err != nil {
		return domain.Embedding{}, m.err
	}
	emb, ok := m.vecs[itemID]
	if !ok {
		return domain.Embedding{}, fmt.Errorf("embedding for item %s: %w", itemID, domain.ErrMissingEmbedding)
	}
	return emb, nil
}

func (m *mockVectors) All(_ context.Context) (map[string]domain.Embedding, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.vecs, nil
}

type mockCatalog struct {
	items map[string]domcat.Item
	err   error
}

func (m *mockCatalog) GetMulti(_ context.Context, ids []string) ([]domcat.Item, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domcat.Item
	for _, id := range ids {
		if it, ok := m.items[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

type mockActivity struct {
	events map[string][]domact.Event
	err    error
}

func (m *mockActivity) EventsByUserSince(_ context.Context, userID string, since time.Time) ([]domact.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domact.Event
	for _, ev := range m.events[userID] {
		if !ev.Timestamp().Before(since) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *mockActivity) Users(_ context.Context) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	var users []string
	for u := range m.events {
		users = append(users, u)
	}
	return users, nil
}

func catalogFor(vecs map[string]domain.Embedding, extra ...string) *mockCatalog {
	items := make(map[string]domcat.Item)
	add := func(id string) {
		items[id] = domcat.Reconstruct(id, "title "+id, "", "general", "", "", 100, 4, 10, 0, 0)
	}
	for id := range vecs {
		add(id)
	}
	for _, id := range extra {
		add(id)
	}
	return &mockCatalog{items: items}
}

func testConfig() Config {
	return Config{WindowDays: 30, MinUserSimilarity: 0.2, MaxSimilarUsers: 5}
}

func newTestService(vecs *mockVectors, catalog *mockCatalog, activity *mockActivity) *Service {
	if activity == nil {
		activity = &mockActivity{}
	}
	if catalog == nil {
		catalog = catalogFor(vecs.vecs)
	}
	return New(vecs, catalog, activity, testConfig())
}

func TestRecommend_SeedWithoutEmbedding(t *testing.T) {
	svc := newTestService(&mockVectors{vecs: map[string]domain.Embedding{}}, nil, nil)

	results, err := svc.Recommend(context.Background(), "ghost", "")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if results != nil {
		t.Errorf("got %v, want nil", results)
	}
}

func TestRecommend_ContentOnly(t *testing.T) {
	vecs := &mockVectors{vecs: map[string]domain.Embedding{
		"seed": domain.NewEmbedding("seed", []float32{1, 0}),
		"near": domain.NewEmbedding("near", []float32{0.9, 0.1}),
		"far":  domain.NewEmbedding("far", []float32{0, 1}),
	}}
	svc := newTestService(vecs, nil, nil)

	results, err := svc.Recommend(context.Background(), "seed", "")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].ID != "near" {
		t.Errorf("top result = %s, want near", results[0].ID)
	}
	for _, r := range results {
		if r.ID == "seed" {
			t.Error("seed item must never appear in its own recommendations")
		}
	}
}

func TestRecommend_ExcludesOtherDimensions(t *testing.T) {
	vecs := &mockVectors{vecs: map[string]domain.Embedding{
		"seed":  domain.NewEmbedding("seed", []float32{1, 0}),
		"same":  domain.NewEmbedding("same", []float32{1, 0}),
		"other": domain.NewEmbedding("other", []float32{1, 0, 0}),
	}}
	svc := newTestService(vecs, nil, nil)

	results, err := svc.Recommend(context.Background(), "seed", "")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(results) != 1 || results[0].ID != "same" {
		t.Errorf("results = %v, want only same-dimension item", results)
	}
}

func TestRecommend_CapAt5(t *testing.T) {
	vecs := map[string]domain.Embedding{
		"seed": domain.NewEmbedding("seed", []float32{1, 0}),
	}
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("p%d", i)
		vecs[id] = domain.NewEmbedding(id, []float32{1, float32(i) / 10})
	}
	svc := newTestService(&mockVectors{vecs: vecs}, nil, nil)

	results, err := svc.Recommend(context.Background(), "seed", "")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(results) != domsearch.MaxRecommendations {
		t.Errorf("got %d results, want %d", len(results), domsearch.MaxRecommendations)
	}
}

func TestRecommend_BlendedWithCollaborative(t *testing.T) {
	now := time.Now().UTC()
	vecs := &mockVectors{vecs: map[string]domain.Embedding{
		"seed": domain.NewEmbedding("seed", []float32{1, 0}),
		"a":    domain.NewEmbedding("a", []float32{0.8, 0.6}),
		"b":    domain.NewEmbedding("b", []float32{0.8, 0.6}),
	}}
	// Users u1 and u2 share item a; u2 also purchased b heavily.
	activity := &mockActivity{events: map[string][]domact.Event{
		"u1": {
			domact.Reconstruct("u1", "a", domact.Viewed, now),
		},
		"u2": {
			domact.Reconstruct("u2", "a", domact.Viewed, now),
			domact.Reconstruct("u2", "b", domact.Purchased, now),
		},
	}}
	svc := newTestService(vecs, nil, activity)

	results, err := svc.Recommend(context.Background(), "seed", "u1")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	// a and b have equal content scores; b's collaborative boost from the
	// similar user u2 must rank it first.
	if results[0].ID != "b" {
		t.Errorf("top result = %s, want b (collaborative boost)", results[0].ID)
	}
}

func TestRecommend_UserWithoutActivityFallsBackToContent(t *testing.T) {
	vecs := &mockVectors{vecs: map[string]domain.Embedding{
		"seed": domain.NewEmbedding("seed", []float32{1, 0}),
		"a":    domain.NewEmbedding("a", []float32{0.9, 0.1}),
	}}
	svc := newTestService(vecs, nil, &mockActivity{})

	results, err := svc.Recommend(context.Background(), "seed", "loner")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(results) != 1 || results[0].ID != "a" {
		t.Errorf("results = %v, want content-only ranking", results)
	}
}

func TestRecommend_OldActivityOutsideWindowIgnored(t *testing.T) {
	now := time.Now().UTC()
	vecs := &mockVectors{vecs: map[string]domain.Embedding{
		"seed": domain.NewEmbedding("seed", []float32{1, 0}),
		"a":    domain.NewEmbedding("a", []float32{0.5, 0.5}),
		"b":    domain.NewEmbedding("b", []float32{0.5, 0.5}),
	}}
	// All overlap is 40 days old, outside the 30-day window.
	activity := &mockActivity{events: map[string][]domact.Event{
		"u1": {domact.Reconstruct("u1", "a", domact.Viewed, now.Add(-40*24*time.Hour))},
		"u2": {domact.Reconstruct("u2", "a", domact.Viewed, now.Add(-40*24*time.Hour)),
			domact.Reconstruct("u2", "b", domact.Purchased, now.Add(-40*24*time.Hour))},
	}}
	svc := newTestService(vecs, nil, activity)

	results, err := svc.Recommend(context.Background(), "seed", "u1")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	// No in-window activity: pure content, a wins the id tie-break.
	if len(results) != 2 || results[0].ID != "a" {
		t.Errorf("results = %v, want content ordering [a b]", results)
	}
}

func TestRecommend_MissingCatalogItemSkipped(t *testing.T) {
	vecs := &mockVectors{vecs: map[string]domain.Embedding{
		"seed": domain.NewEmbedding("seed", []float32{1, 0}),
		"a":    domain.NewEmbedding("a", []float32{0.9, 0.1}),
		"gone": domain.NewEmbedding("gone", []float32{1, 0}),
	}}
	catalog := catalogFor(map[string]domain.Embedding{
		"seed": vecs.vecs["seed"],
		"a":    vecs.vecs["a"],
	})
	svc := newTestService(vecs, catalog, nil)

	results, err := svc.Recommend(context.Background(), "seed", "")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	for _, r := range results {
		if r.ID == "gone" {
			t.Error("item missing from the catalog must not be returned")
		}
	}
}

func TestRecommend_StoreErrors(t *testing.T) {
	storeErr := errors.New("connection refused")

	svc := newTestService(&mockVectors{err: storeErr}, &mockCatalog{}, nil)
	if _, err := svc.Recommend(context.Background(), "seed", ""); err == nil {
		t.Error("embedding store error must propagate")
	}

	vecs := &mockVectors{vecs: map[string]domain.Embedding{
		"seed": domain.NewEmbedding("seed", []float32{1, 0}),
		"a":    domain.NewEmbedding("a", []float32{0.9, 0.1}),
	}}
	svc = newTestService(vecs, nil, &mockActivity{err: storeErr})
	if _, err := svc.Recommend(context.Background(), "seed", "u1"); err == nil {
		t.Error("activity store error must propagate")
	}

	svc = newTestService(vecs, &mockCatalog{err: storeErr}, nil)
	if _, err := svc.Recommend(context.Background(), "seed", ""); err == nil {
		t.Error("catalog error must propagate")
	}
}
