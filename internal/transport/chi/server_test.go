package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DominicD213/shoprank/internal/domain"
	domact "github.com/DominicD213/shoprank/internal/domain/activity"
	domcat "github.com/DominicD213/shoprank/internal/domain/catalog"
	domsearch "github.com/DominicD213/shoprank/internal/domain/search"
	"github.com/DominicD213/shoprank/internal/domain/term"
	healthuc "github.com/DominicD213/shoprank/internal/usecase/health"
)

type mockSearcher struct {
	results []domsearch.Result
	err     error
	query   string
	class   term.Class
	filters domsearch.Filters
}

func (m *mockSearcher) Search(_ context.Context, query string, class term.Class, filters domsearch.Filters) ([]domsearch.Result, error) {
	m.query, m.class, m.filters = query, class, filters
	return m.results, m.err
}

type mockRecommender struct {
	results []domsearch.Result
	err     error
	seedID  string
	userID  string
}

func (m *mockRecommender) Recommend(_ context.Context, seedID, userID string) ([]domsearch.Result, error) {
	m.seedID, m.userID = seedID, userID
	return m.results, m.err
}

type mockValidator struct {
	count       int
	terms       []term.Term
	err         error
	simpleCalls int
	fullCalls   int
}

func (m *mockValidator) Validate(_ context.Context, _ string, _ term.Class) (int, []term.Term, error) {
	m.fullCalls++
	return m.count, m.terms, m.err
}

func (m *mockValidator) ValidateSimple(_ string) (int, []term.Term) {
	m.simpleCalls++
	return m.count, m.terms
}

type mockCatalogReader struct {
	item domcat.Item
	err  error
}

func (m *mockCatalogReader) GetByID(context.Context, string) (domcat.Item, error) {
	return m.item, m.err
}

type mockActivityWriter struct {
	events []domact.Event
	err    error
}

func (m *mockActivityWriter) Append(_ context.Context, ev domact.Event) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, ev)
	return nil
}

type mockHealthChecker struct {
	report healthuc.Report
}

func (m *mockHealthChecker) Check(context.Context) healthuc.Report { return m.report }

type serverMocks struct {
	search    *mockSearcher
	recommend *mockRecommender
	validate  *mockValidator
	catalog   *mockCatalogReader
	activity  *mockActivityWriter
	health    *mockHealthChecker
}

func newTestServer(t *testing.T) (*serverMocks, http.Handler) {
	t.Helper()
	m := &serverMocks{
		search:    &mockSearcher{},
		recommend: &mockRecommender{},
		validate:  &mockValidator{},
		catalog:   &mockCatalogReader{},
		activity:  &mockActivityWriter{},
		health:    &mockHealthChecker{report: healthuc.Report{Status: healthuc.Healthy}},
	}
	srv := NewServer(m.search, m.recommend, m.validate, m.catalog, m.activity, m.health, zap.NewNop())
	r := chi.NewRouter()
	srv.RegisterRoutes(r)
	return m, r
}

func postJSON(t *testing.T, handler http.Handler, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestSearch_ReturnsRankedResults(t *testing.T) {
	m, handler := newTestServer(t)
	m.search.results = []domsearch.Result{
		{ID: "p1", Title: "running shoes", Category: "clothing", Price: 59.99, Score: 0.9},
		{ID: "p2", Title: "trail shoes", Category: "clothing", Price: 79.99, Score: 0.7},
	}

	rr := postJSON(t, handler, "/api/search", map[string]any{"query": "shoes"}, nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, http.StatusOK, rr.Body.String())
	}
	var resp resultsResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Results) != 2 || resp.Results[0].ID != "p1" {
		t.Errorf("results: got %+v", resp.Results)
	}
	if m.search.query != "shoes" {
		t.Errorf("query passed to searcher: got %q", m.search.query)
	}
	if m.search.class != term.General {
		t.Errorf("default class: got %q, want %q", m.search.class, term.General)
	}
}

func TestSearch_NilResultsEncodeAsEmptyArray(t *testing.T) {
	_, handler := newTestServer(t)

	rr := postJSON(t, handler, "/api/search", map[string]any{"query": "nothing here"}, nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	body := rr.Body.String()
	if body == "" || !bytes.Contains([]byte(body), []byte(`"results":[]`)) {
		t.Errorf("expected empty results array, got %s", body)
	}
}

func TestSearch_PassesFilters(t *testing.T) {
	m, handler := newTestServer(t)

	rr := postJSON(t, handler, "/api/search", map[string]any{
		"query":     "shoes",
		"min_price": 10.0,
		"max_price": 100.0,
		"brand":     "acme",
	}, nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	f := m.search.filters
	if f.MinPrice == nil || *f.MinPrice != 10.0 {
		t.Errorf("min price: got %v", f.MinPrice)
	}
	if f.MaxPrice == nil || *f.MaxPrice != 100.0 {
		t.Errorf("max price: got %v", f.MaxPrice)
	}
	if f.Brand != "acme" {
		t.Errorf("brand: got %q", f.Brand)
	}
}

func TestSearch_UnknownClass_400(t *testing.T) {
	_, handler := newTestServer(t)

	rr := postJSON(t, handler, "/api/search", map[string]any{"query": "x", "class": "Gibberish"}, nil)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
	var errResp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errResp.Code != codeValidationFailed {
		t.Errorf("error code: got %s, want %s", errResp.Code, codeValidationFailed)
	}
}

func TestSearch_InvalidBody_400(t *testing.T) {
	_, handler := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/search", bytes.NewReader([]byte("{not json")))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestSearch_RecordsSearchedActivityForIdentifiedUser(t *testing.T) {
	m, handler := newTestServer(t)

	rr := postJSON(t, handler, "/api/search", map[string]any{"query": "shoes"},
		map[string]string{"X-User-ID": "u1"})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if len(m.activity.events) != 1 {
		t.Fatalf("recorded events: got %d, want 1", len(m.activity.events))
	}
	ev := m.activity.events[0]
	if ev.UserID() != "u1" || ev.Action() != domact.Searched {
		t.Errorf("event: got user %q action %q", ev.UserID(), ev.Action())
	}
}

func TestSearch_ActivityWriteFailureDoesNotFailRequest(t *testing.T) {
	m, handler := newTestServer(t)
	m.activity.err = fmt.Errorf("store down")

	rr := postJSON(t, handler, "/api/search", map[string]any{"query": "shoes"},
		map[string]string{"X-User-ID": "u1"})

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestSearch_RateLimited_429(t *testing.T) {
	m, handler := newTestServer(t)
	m.search.err = fmt.Errorf("embed query: %w", domain.ErrRateLimited)

	rr := postJSON(t, handler, "/api/search", map[string]any{"query": "shoes"}, nil)

	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusTooManyRequests)
	}
}

func TestSearch_ProviderError_502(t *testing.T) {
	m, handler := newTestServer(t)
	m.search.err = fmt.Errorf("embed query: %w", domain.ErrEmbeddingProviderError)

	rr := postJSON(t, handler, "/api/search", map[string]any{"query": "shoes"}, nil)

	if rr.Code != http.StatusBadGateway {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadGateway)
	}
}

func TestSearch_UnexpectedError_500(t *testing.T) {
	m, handler := newTestServer(t)
	m.search.err = fmt.Errorf("something broke")

	rr := postJSON(t, handler, "/api/search", map[string]any{"query": "shoes"}, nil)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusInternalServerError)
	}
	var errResp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errResp.Message != "internal error" {
		t.Errorf("internals leaked to client: %q", errResp.Message)
	}
}

func TestGetProduct_ReturnsItemAndRecordsView(t *testing.T) {
	m, handler := newTestServer(t)
	m.catalog.item = domcat.Reconstruct(
		"p1", "running shoes", "shoes, running", "clothing",
		"lightweight trainers", "acme", 500, 4.5, 59.99, 79.99, 25.0)

	req := httptest.NewRequest("GET", "/api/products/p1", http.NoBody)
	req.Header.Set("X-User-ID", "u1")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d (body %s)", rr.Code, rr.Body.String())
	}
	var resp productResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != "p1" || resp.Title != "running shoes" || resp.Price != 59.99 {
		t.Errorf("product: got %+v", resp)
	}
	if len(m.activity.events) != 1 || m.activity.events[0].Action() != domact.Viewed {
		t.Errorf("viewed event not recorded: %+v", m.activity.events)
	}
	if m.activity.events[0].ItemID() != "p1" {
		t.Errorf("event item: got %q, want p1", m.activity.events[0].ItemID())
	}
}

func TestGetProduct_NotFound_404(t *testing.T) {
	m, handler := newTestServer(t)
	m.catalog.err = fmt.Errorf("get item p9: %w", domain.ErrItemNotFound)

	req := httptest.NewRequest("GET", "/api/products/p9", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
	var errResp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errResp.Code != codeItemNotFound {
		t.Errorf("error code: got %s, want %s", errResp.Code, codeItemNotFound)
	}
}

func TestRelated_PassesSeedAndUser(t *testing.T) {
	m, handler := newTestServer(t)
	m.recommend.results = []domsearch.Result{{ID: "p2", Score: 0.8}}

	req := httptest.NewRequest("GET", "/api/products/p1/related?user_id=u1", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if m.recommend.seedID != "p1" || m.recommend.userID != "u1" {
		t.Errorf("seed/user: got %q/%q", m.recommend.seedID, m.recommend.userID)
	}
	var resp resultsResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != "p2" {
		t.Errorf("results: got %+v", resp.Results)
	}
}

func TestRelated_EmptyForUnknownSeed(t *testing.T) {
	_, handler := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/products/p9/related", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte(`"results":[]`)) {
		t.Errorf("expected empty results array, got %s", rr.Body.String())
	}
}

func TestValidate_FullMode(t *testing.T) {
	m, handler := newTestServer(t)
	m.validate.count = 1
	m.validate.terms = []term.Term{term.New("book", "novel", term.OK)}

	rr := postJSON(t, handler, "/api/validate", map[string]any{"text": "novel"}, nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if m.validate.fullCalls != 1 || m.validate.simpleCalls != 0 {
		t.Errorf("calls: full %d simple %d", m.validate.fullCalls, m.validate.simpleCalls)
	}
	var resp validateResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 1 || len(resp.Terms) != 1 {
		t.Fatalf("response: got %+v", resp)
	}
	got := resp.Terms[0]
	if got.Term != "book" || got.Original != "novel" || got.Status != string(term.OK) {
		t.Errorf("term: got %+v", got)
	}
}

func TestValidate_SimpleMode(t *testing.T) {
	m, handler := newTestServer(t)
	m.validate.count = 2
	m.validate.terms = []term.Term{
		term.New("red", "red", term.OK),
		term.New("shoes", "shoes", term.OK),
	}

	rr := postJSON(t, handler, "/api/validate", map[string]any{"text": "red shoes", "mode": "simple"}, nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if m.validate.simpleCalls != 1 || m.validate.fullCalls != 0 {
		t.Errorf("calls: full %d simple %d", m.validate.fullCalls, m.validate.simpleCalls)
	}
}

func TestValidate_UnknownMode_400(t *testing.T) {
	_, handler := newTestServer(t)

	rr := postJSON(t, handler, "/api/validate", map[string]any{"text": "x", "mode": "fancy"}, nil)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestPostActivity_Accepted(t *testing.T) {
	m, handler := newTestServer(t)

	rr := postJSON(t, handler, "/api/activity", map[string]any{
		"user_id": "u1",
		"item_id": "p1",
		"action":  "purchased",
	}, nil)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, http.StatusAccepted, rr.Body.String())
	}
	if len(m.activity.events) != 1 {
		t.Fatalf("events: got %d, want 1", len(m.activity.events))
	}
	ev := m.activity.events[0]
	if ev.UserID() != "u1" || ev.ItemID() != "p1" || ev.Action() != domact.Purchased {
		t.Errorf("event: got %+v", ev)
	}
	if ev.Timestamp().IsZero() {
		t.Errorf("event timestamp not defaulted")
	}
}

func TestPostActivity_UnknownAction_400(t *testing.T) {
	_, handler := newTestServer(t)

	rr := postJSON(t, handler, "/api/activity", map[string]any{
		"user_id": "u1",
		"action":  "teleported",
	}, nil)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestPostActivity_MissingUser_400(t *testing.T) {
	_, handler := newTestServer(t)

	rr := postJSON(t, handler, "/api/activity", map[string]any{"action": "viewed"}, nil)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestHealthCheck_Healthy_200(t *testing.T) {
	m, handler := newTestServer(t)
	m.health.report = healthuc.Report{
		Status: healthuc.Healthy,
		Checks: map[string]healthuc.CheckResult{"store": healthuc.CheckOK},
	}

	req := httptest.NewRequest("GET", "/health", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	var resp healthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != string(healthuc.Healthy) || resp.Checks["store"] != string(healthuc.CheckOK) {
		t.Errorf("response: got %+v", resp)
	}
}

func TestHealthCheck_Degraded_503(t *testing.T) {
	m, handler := newTestServer(t)
	m.health.report = healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{"store": healthuc.CheckError},
	}

	req := httptest.NewRequest("GET", "/health", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
}
