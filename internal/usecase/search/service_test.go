package search

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/DominicD213/shoprank/internal/domain"
	domcat "github.com/DominicD213/shoprank/internal/domain/catalog"
	domsearch "github.com/DominicD213/shoprank/internal/domain/search"
	"github.com/DominicD213/shoprank/internal/domain/term"
	"github.com/DominicD213/shoprank/internal/metrics"
	"github.com/DominicD213/shoprank/internal/usecase/scoring"
)

func TestMain(m *testing.M) {
	metrics.RegisterCoreMetrics()
	os.Exit(m.Run())
}

// passValidator marks every whitespace token usable.
type passValidator struct {
	err error
}

func (v *passValidator) Validate(_ context.Context, raw string, _ term.Class) (int, []term.Term, error) {
	if v.err != nil {
		return 0, nil, v.err
	}
	tokens := strings.Fields(strings.ToLower(raw))
	terms := make([]term.Term, 0, len(tokens))
	for _, tok := range tokens {
		terms = append(terms, term.New("", tok, term.Unsupported))
	}
	return len(terms), terms, nil
}

// flagValidator flags every term.
type flagValidator struct{}

func (flagValidator) Validate(_ context.Context, raw string, _ term.Class) (int, []term.Term, error) {
	return 1, []term.Term{term.New("", raw, term.Flagged)}, nil
}

type mockCatalog struct {
	items []domcat.Item
	err   error
}

func (m *mockCatalog) Filter(_ context.Context, _ domsearch.Filters) ([]domcat.Item, error) {
	return m.items, m.err
}

type mockVectors struct {
	vecs map[string]domain.Embedding
	err  error
}

func (m *mockVectors) GetMulti(_ context.Context, ids []string) (map[string]domain.Embedding, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[string]domain.Embedding)
	for _, id := range ids {
		if emb, ok := m.vecs[id]; ok {
			out[id] = emb
		}
	}
	return out, nil
}

// firstComponentScorer scores each candidate by its vector's first component,
// keeping ordering assertions trivial.
type firstComponentScorer struct {
	err  error
	dims []int
}

func (s *firstComponentScorer) ScoreGroup(
	_ context.Context, _ string, dim int, candidates []scoring.Candidate,
) ([]scoring.Scored, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.dims = append(s.dims, dim)
	scored := make([]scoring.Scored, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, scoring.Scored{Item: c.Item, Score: float64(c.Vector[0])})
	}
	return scored, nil
}

func item(id, title string) domcat.Item {
	return domcat.Reconstruct(id, title, "", "general", "", "", 100, 4, 10, 12, 16.7)
}

func emb(id string, vec ...float32) domain.Embedding {
	return domain.NewEmbedding(id, vec)
}

func newService(v Validator, c *mockCatalog, e *mockVectors, sc Scorer) *Service {
	if v == nil {
		v = &passValidator{}
	}
	if sc == nil {
		sc = &firstComponentScorer{}
	}
	return New(v, c, e, sc)
}

func TestSearch_EmptyQuery(t *testing.T) {
	svc := newService(nil, &mockCatalog{}, &mockVectors{}, nil)

	for _, q := range []string{"", "   "} {
		results, err := svc.Search(context.Background(), q, term.General, domsearch.Filters{})
		if err != nil {
			t.Fatalf("Search(%q): %v", q, err)
		}
		if results != nil {
			t.Errorf("Search(%q) = %v, want nil", q, results)
		}
	}
}

func TestSearch_AllTermsFlagged(t *testing.T) {
	svc := newService(flagValidator{}, &mockCatalog{items: []domcat.Item{item("a", "anything")}}, &mockVectors{}, nil)

	results, err := svc.Search(context.Background(), "cocaine", term.General, domsearch.Filters{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("flagged-only query returned %d results, want 0", len(results))
	}
}

func TestSearch_NoSubstringMatch(t *testing.T) {
	svc := newService(nil, &mockCatalog{items: []domcat.Item{item("a", "wooden chair")}}, &mockVectors{}, nil)

	results, err := svc.Search(context.Background(), "laptop", term.General, domsearch.Filters{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestSearch_RankedOrdering(t *testing.T) {
	items := []domcat.Item{
		item("a", "red shoes low"),
		item("b", "red shoes high"),
		item("c", "red shoes mid"),
	}
	vecs := &mockVectors{vecs: map[string]domain.Embedding{
		"a": emb("a", 0.1, 0),
		"b": emb("b", 0.9, 0),
		"c": emb("c", 0.5, 0),
	}}
	svc := newService(nil, &mockCatalog{items: items}, vecs, nil)

	results, err := svc.Search(context.Background(), "shoes", term.General, domsearch.Filters{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	got := make([]string, len(results))
	for i, r := range results {
		got[i] = r.ID
	}
	if !reflect.DeepEqual(got, []string{"b", "c", "a"}) {
		t.Errorf("order = %v, want [b c a]", got)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Error("scores not non-increasing")
		}
	}
}

func TestSearch_TieBreakByID(t *testing.T) {
	items := []domcat.Item{item("z", "shoes"), item("a", "shoes")}
	vecs := &mockVectors{vecs: map[string]domain.Embedding{
		"z": emb("z", 0.5),
		"a": emb("a", 0.5),
	}}
	svc := newService(nil, &mockCatalog{items: items}, vecs, nil)

	results, err := svc.Search(context.Background(), "shoes", term.General, domsearch.Filters{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if results[0].ID != "a" || results[1].ID != "z" {
		t.Errorf("tie order = [%s %s], want [a z]", results[0].ID, results[1].ID)
	}
}

func TestSearch_CapAt15(t *testing.T) {
	var items []domcat.Item
	vecs := map[string]domain.Embedding{}
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("p%02d", i)
		items = append(items, item(id, "shoes "+id))
		vecs[id] = emb(id, float32(i)/20)
	}
	svc := newService(nil, &mockCatalog{items: items}, &mockVectors{vecs: vecs}, nil)

	results, err := svc.Search(context.Background(), "shoes", term.General, domsearch.Filters{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != domsearch.MaxResults {
		t.Errorf("got %d results, want %d", len(results), domsearch.MaxResults)
	}
}

func TestSearch_DegradedPath(t *testing.T) {
	var items []domcat.Item
	for i := 0; i < 20; i++ {
		items = append(items, item(fmt.Sprintf("p%02d", i), fmt.Sprintf("shoes %02d", i)))
	}
	svc := newService(nil, &mockCatalog{items: items}, &mockVectors{}, nil)

	results, err := svc.Search(context.Background(), "shoes", term.General, domsearch.Filters{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != domsearch.MaxResults {
		t.Fatalf("degraded path returned %d, want %d", len(results), domsearch.MaxResults)
	}
	for i, r := range results {
		if r.Score != 1.0 {
			t.Errorf("degraded score = %v, want 1.0", r.Score)
		}
		// Fetch order preserved.
		if want := fmt.Sprintf("p%02d", i); r.ID != want {
			t.Errorf("result[%d] = %s, want %s", i, r.ID, want)
		}
	}
}

func TestSearch_GroupsByDimension(t *testing.T) {
	items := []domcat.Item{item("a", "shoes a"), item("b", "shoes b"), item("c", "shoes c")}
	vecs := &mockVectors{vecs: map[string]domain.Embedding{
		"a": emb("a", 0.3, 0),
		"b": emb("b", 0.7, 0, 0),
		"c": emb("c", 0.5, 0),
	}}
	scorer := &firstComponentScorer{}
	svc := newService(nil, &mockCatalog{items: items}, vecs, scorer)

	results, err := svc.Search(context.Background(), "shoes", term.General, domsearch.Filters{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !reflect.DeepEqual(scorer.dims, []int{2, 3}) {
		t.Errorf("scored dims = %v, want [2 3]", scorer.dims)
	}
	if len(results) != 3 || results[0].ID != "b" {
		t.Errorf("merged results = %v", results)
	}
}

func TestSearch_SkipsItemsWithoutVectorWhenRanked(t *testing.T) {
	items := []domcat.Item{item("a", "shoes a"), item("b", "shoes b")}
	vecs := &mockVectors{vecs: map[string]domain.Embedding{
		"a": emb("a", 0.9),
	}}
	svc := newService(nil, &mockCatalog{items: items}, vecs, nil)

	results, err := svc.Search(context.Background(), "shoes", term.General, domsearch.Filters{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "a" {
		t.Errorf("results = %v, want only item a", results)
	}
}

func TestSearch_Deterministic(t *testing.T) {
	items := []domcat.Item{item("a", "red shoes"), item("b", "red boots")}
	vecs := &mockVectors{vecs: map[string]domain.Embedding{
		"a": emb("a", 0.4),
		"b": emb("b", 0.6),
	}}
	svc := newService(nil, &mockCatalog{items: items}, vecs, nil)

	first, err := svc.Search(context.Background(), "red shoes", term.General, domsearch.Filters{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	second, err := svc.Search(context.Background(), "red shoes", term.General, domsearch.Filters{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated search differs:\n%v\n%v", first, second)
	}
}

func TestSearch_ScoreRounding(t *testing.T) {
	items := []domcat.Item{item("a", "shoes")}
	vecs := &mockVectors{vecs: map[string]domain.Embedding{
		"a": emb("a", 0.123456),
	}}
	svc := newService(nil, &mockCatalog{items: items}, vecs, nil)

	results, err := svc.Search(context.Background(), "shoes", term.General, domsearch.Filters{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if results[0].Score != 0.123 {
		t.Errorf("score = %v, want 0.123", results[0].Score)
	}
}

func TestSearch_StoreErrors(t *testing.T) {
	storeErr := errors.New("connection refused")

	svc := newService(&passValidator{err: storeErr}, &mockCatalog{}, &mockVectors{}, nil)
	if _, err := svc.Search(context.Background(), "shoes", term.General, domsearch.Filters{}); err == nil {
		t.Error("validator error must propagate")
	}

	svc = newService(nil, &mockCatalog{err: storeErr}, &mockVectors{}, nil)
	if _, err := svc.Search(context.Background(), "shoes", term.General, domsearch.Filters{}); err == nil {
		t.Error("catalog error must propagate")
	}

	svc = newService(nil, &mockCatalog{items: []domcat.Item{item("a", "shoes")}}, &mockVectors{err: storeErr}, nil)
	if _, err := svc.Search(context.Background(), "shoes", term.General, domsearch.Filters{}); err == nil {
		t.Error("embedding store error must propagate")
	}

	svc = newService(nil,
		&mockCatalog{items: []domcat.Item{item("a", "shoes")}},
		&mockVectors{vecs: map[string]domain.Embedding{"a": emb("a", 0.5)}},
		&firstComponentScorer{err: storeErr})
	if _, err := svc.Search(context.Background(), "shoes", term.General, domsearch.Filters{}); err == nil {
		t.Error("scorer error must propagate")
	}
}
