// Package chi is the HTTP transport: routing, request decoding, domain error
// mapping and response shaping.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/DominicD213/shoprank/internal/domain"
	domact "github.com/DominicD213/shoprank/internal/domain/activity"
	domsearch "github.com/DominicD213/shoprank/internal/domain/search"
	"github.com/DominicD213/shoprank/internal/domain/term"
	healthuc "github.com/DominicD213/shoprank/internal/usecase/health"
)

// errorCode is the machine-readable error identifier in error responses.
type errorCode string

const (
	codeBadRequest       errorCode = "bad_request"
	codeUnauthorized     errorCode = "unauthorized"
	codeValidationFailed errorCode = "validation_failed"
	codeItemNotFound     errorCode = "item_not_found"
	codeRateLimited      errorCode = "rate_limited"
	codeEmbeddingError   errorCode = "embedding_provider_error"
	codeInternalError    errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers.
type Server struct {
	search        Searcher
	recommend     Recommender
	validate      Validator
	catalog       CatalogReader
	activity      ActivityWriter
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search Searcher,
	recommend Recommender,
	validate Validator,
	catalog CatalogReader,
	activity ActivityWriter,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:    search,
		recommend: recommend,
		validate:  validate,
		catalog:   catalog,
		activity:  activity,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrItemNotFound, http.StatusNotFound, codeItemNotFound),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingError),
	}
	return s
}

// RegisterRoutes mounts all endpoints on the router.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Post("/api/search", s.Search)
	r.Get("/api/products/{id}", s.GetProduct)
	r.Get("/api/products/{id}/related", s.Related)
	r.Post("/api/validate", s.Validate)
	r.Post("/api/activity", s.PostActivity)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

type searchRequest struct {
	Query     string   `json:"query"`
	Class     string   `json:"class,omitempty"`
	MinPrice  *float64 `json:"min_price,omitempty"`
	MaxPrice  *float64 `json:"max_price,omitempty"`
	Brand     string   `json:"brand,omitempty"`
	MinRating *float64 `json:"min_rating,omitempty"`
}

type resultsResponse struct {
	Results []domsearch.Result `json:"results"`
}

// Search handles POST /api/search. When an X-User-ID header is present the
// query is recorded as a searched activity event.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	class := term.General
	if req.Class != "" {
		class = term.Class(req.Class)
		if !class.IsValid() {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "unknown input class "+req.Class)
			return
		}
	}

	filters := domsearch.Filters{
		MinPrice:  req.MinPrice,
		MaxPrice:  req.MaxPrice,
		Brand:     req.Brand,
		MinRating: req.MinRating,
	}

	results, err := s.search.Search(r.Context(), req.Query, class, filters)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	s.recordActivity(r, "", domact.Searched)

	if results == nil {
		results = []domsearch.Result{}
	}
	writeJSON(w, http.StatusOK, resultsResponse{Results: results})
}

type productResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Tags        string  `json:"tags,omitempty"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
	Brand       string  `json:"brand,omitempty"`
	Popularity  int     `json:"popularity"`
	Rating      float64 `json:"rating"`
	Price       float64 `json:"price"`
	WasPrice    float64 `json:"was_price"`
	Discount    float64 `json:"discount"`
}

// GetProduct handles GET /api/products/{id}. When an X-User-ID header is
// present the lookup is recorded as a viewed activity event.
func (s *Server) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	item, err := s.catalog.GetByID(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	s.recordActivity(r, id, domact.Viewed)

	writeJSON(w, http.StatusOK, productResponse{
		ID:          item.ID(),
		Title:       item.Title(),
		Tags:        item.Tags(),
		Category:    item.Category(),
		Description: item.Description(),
		Brand:       item.Brand(),
		Popularity:  item.Popularity(),
		Rating:      item.Rating(),
		Price:       item.Price(),
		WasPrice:    item.WasPrice(),
		Discount:    item.Discount(),
	})
}

// Related handles GET /api/products/{id}/related.
func (s *Server) Related(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := r.URL.Query().Get("user_id")

	results, err := s.recommend.Recommend(r.Context(), id, userID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	if results == nil {
		results = []domsearch.Result{}
	}
	writeJSON(w, http.StatusOK, resultsResponse{Results: results})
}

type validateRequest struct {
	Text  string `json:"text"`
	Mode  string `json:"mode,omitempty"`  // "full" (default) or "simple"
	Class string `json:"class,omitempty"` // input class for full mode
}

type validatedTerm struct {
	Term     string `json:"term"`
	Original string `json:"original"`
	Status   string `json:"status"`
}

type validateResponse struct {
	Count int             `json:"count"`
	Terms []validatedTerm `json:"terms"`
}

// Validate handles POST /api/validate.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	var (
		count int
		terms []term.Term
		err   error
	)
	switch req.Mode {
	case "", "full":
		class := term.General
		if req.Class != "" {
			class = term.Class(req.Class)
			if !class.IsValid() {
				writeError(w, http.StatusBadRequest, codeValidationFailed, "unknown input class "+req.Class)
				return
			}
		}
		count, terms, err = s.validate.Validate(r.Context(), req.Text, class)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
	case "simple":
		count, terms = s.validate.ValidateSimple(req.Text)
	default:
		writeError(w, http.StatusBadRequest, codeValidationFailed, "mode must be full or simple")
		return
	}

	out := make([]validatedTerm, len(terms))
	for i, t := range terms {
		out[i] = validatedTerm{Term: t.Canonical(), Original: t.Original(), Status: string(t.Status())}
	}
	writeJSON(w, http.StatusOK, validateResponse{Count: count, Terms: out})
}

type activityRequest struct {
	UserID string `json:"user_id"`
	ItemID string `json:"item_id,omitempty"`
	Action string `json:"action"`
}

// PostActivity handles POST /api/activity.
func (s *Server) PostActivity(w http.ResponseWriter, r *http.Request) {
	var req activityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	action, err := domact.ParseAction(req.Action)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	ev, err := domact.NewEvent(req.UserID, req.ItemID, action, time.Time{})
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	if err := s.activity.Append(r.Context(), ev); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// recordActivity logs an implicit activity event for the calling user, when
// identified via X-User-ID. Failures are logged and never fail the request.
func (s *Server) recordActivity(r *http.Request, itemID string, action domact.Action) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		return
	}

	ev, err := domact.NewEvent(userID, itemID, action, time.Time{})
	if err != nil {
		return
	}
	if err := s.activity.Append(r.Context(), ev); err != nil {
		s.logger.Warn("Failed to record activity event",
			zap.String("user_id", userID),
			zap.String("action", string(action)),
			zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrItemNotFound,
		domain.ErrMissingEmbedding,
		domain.ErrDimensionMismatch,
		domain.ErrProhibitedContent,
		domain.ErrRateLimited,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
