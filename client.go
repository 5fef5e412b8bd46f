// Package shoprank is the embeddable SDK: it wires the search pipeline,
// the recommendation engine and the activity log against a Redis store
// without the HTTP layer.
package shoprank

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/DominicD213/shoprank/internal/db"
	dbRedis "github.com/DominicD213/shoprank/internal/db/redis"
	"github.com/DominicD213/shoprank/internal/domain"
	domact "github.com/DominicD213/shoprank/internal/domain/activity"
	domsearch "github.com/DominicD213/shoprank/internal/domain/search"
	"github.com/DominicD213/shoprank/internal/domain/term"
	hashEmb "github.com/DominicD213/shoprank/internal/embedder/hash"
	"github.com/DominicD213/shoprank/internal/metrics"
	activityrepo "github.com/DominicD213/shoprank/internal/repository/activity"
	catalogrepo "github.com/DominicD213/shoprank/internal/repository/catalog"
	"github.com/DominicD213/shoprank/internal/repository/embcache"
	embeddingrepo "github.com/DominicD213/shoprank/internal/repository/embedding"
	"github.com/DominicD213/shoprank/internal/usecase/recommend"
	"github.com/DominicD213/shoprank/internal/usecase/scoring"
	searchuc "github.com/DominicD213/shoprank/internal/usecase/search"
	"github.com/DominicD213/shoprank/internal/usecase/validate"
)

const defaultReadinessTimeout = 10 * time.Second

// EmbeddingResult carries the embedding vector and token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder is the pluggable text vectorization provider.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// Result is a single ranked hit.
type Result struct {
	ID       string
	Title    string
	Category string
	Price    float64
	WasPrice float64
	Discount float64
	Score    float64
}

// Product is a full catalog record.
type Product struct {
	ID          string
	Title       string
	Tags        string
	Category    string
	Description string
	Brand       string
	Popularity  int
	Rating      float64
	Price       float64
	WasPrice    float64
	Discount    float64
}

// Term is one validated query term.
type Term struct {
	Term     string
	Original string
	Status   string
}

// SearchOptions configures a search call. The zero value searches the whole
// catalog with the general input class.
type SearchOptions struct {
	Class     string
	MinPrice  *float64
	MaxPrice  *float64
	Brand     string
	MinRating *float64
}

// Client is the shoprank SDK entry point.
type Client struct {
	store       db.Store
	catalogRepo *catalogrepo.Repo
	activity    *activityrepo.Repo
	validateSvc *validate.Service
	searchSvc   *searchuc.Service
	recSvc      *recommend.Service
}

// New creates a shoprank Client and connects to the store.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		dimensions: domain.DefaultDimensions,
	}
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("shoprank: store address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("shoprank: create store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("shoprank: store not ready: %w", err)
	}

	return wireClient(store, cfg)
}

func wireClient(store db.Store, cfg *clientConfig) (*Client, error) {
	logger := zap.NewNop()

	embedder, err := buildEmbedder(cfg, store, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	catalogRepo := catalogrepo.New(store)
	embeddingRepo := embeddingrepo.New(store)
	activityRepo := activityrepo.New(store)

	validateSvc := validate.New(catalogRepo, validate.NewFuzzySpeller())
	scoringSvc := scoring.New(embedder)
	searchSvc := searchuc.New(validateSvc, catalogRepo, embeddingRepo, scoringSvc)
	recSvc := recommend.New(embeddingRepo, catalogRepo, activityRepo, recommend.Config{
		WindowDays:        cfg.windowDays,
		MinUserSimilarity: cfg.minUserSimilarity,
		MaxSimilarUsers:   cfg.maxSimilarUsers,
	})

	return &Client{
		store:       store,
		catalogRepo: catalogRepo,
		activity:    activityRepo,
		validateSvc: validateSvc,
		searchSvc:   searchSvc,
		recSvc:      recSvc,
	}, nil
}

func buildEmbedder(cfg *clientConfig, store db.Store, logger *zap.Logger) (domain.DimEmbedder, error) {
	var base interface {
		domain.Embedder
		domain.DimEmbedder
	}
	if cfg.embedder != nil {
		base = &embedderAdapter{inner: cfg.embedder}
	} else {
		h, err := hashEmb.New(cfg.dimensions)
		if err != nil {
			return nil, fmt.Errorf("shoprank: create vectorizer: %w", err)
		}
		base = h
	}

	if cfg.cacheQuery {
		return embcache.New(base, store, metrics.EmbeddingCacheTotal, logger), nil
	}
	return base, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks store connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Search runs the full pipeline: validation, catalog filtering, scoring and
// ranking. Returns at most 15 results, best first.
func (c *Client) Search(ctx context.Context, query string, opts *SearchOptions) ([]Result, error) {
	if opts == nil {
		opts = &SearchOptions{}
	}

	class := term.General
	if opts.Class != "" {
		class = term.Class(opts.Class)
		if !class.IsValid() {
			return nil, fmt.Errorf("search: unknown input class %q", opts.Class)
		}
	}

	results, err := c.searchSvc.Search(ctx, query, class, domsearch.Filters{
		MinPrice:  opts.MinPrice,
		MaxPrice:  opts.MaxPrice,
		Brand:     opts.Brand,
		MinRating: opts.MinRating,
	})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return fromResults(results), nil
}

// Product fetches one catalog record by id.
func (c *Client) Product(ctx context.Context, id string) (Product, error) {
	item, err := c.catalogRepo.GetByID(ctx, id)
	if err != nil {
		return Product{}, fmt.Errorf("product: %w", err)
	}
	return Product{
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
	}, nil
}

// Recommend returns up to 5 items related to the seed. A non-empty userID
// blends in the collaborative signal from recent activity.
func (c *Client) Recommend(ctx context.Context, seedID, userID string) ([]Result, error) {
	results, err := c.recSvc.Recommend(ctx, seedID, userID)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	return fromResults(results), nil
}

// Validate screens raw input into usable terms for the given class
// ("general", "clothing", "media", "restricted"; empty means general).
func (c *Client) Validate(ctx context.Context, text, class string) (int, []Term, error) {
	cl := term.General
	if class != "" {
		cl = term.Class(class)
		if !cl.IsValid() {
			return 0, nil, fmt.Errorf("validate: unknown input class %q", class)
		}
	}

	count, terms, err := c.validateSvc.Validate(ctx, text, cl)
	if err != nil {
		return 0, nil, fmt.Errorf("validate: %w", err)
	}
	return count, fromTerms(terms), nil
}

// RecordActivity appends one activity event
// ("searched", "viewed", "added_to_cart", "purchased").
func (c *Client) RecordActivity(ctx context.Context, userID, itemID, action string) error {
	a, err := domact.ParseAction(action)
	if err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	ev, err := domact.NewEvent(userID, itemID, a, time.Time{})
	if err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	if err := c.activity.Append(ctx, ev); err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

func fromResults(in []domsearch.Result) []Result {
	out := make([]Result, len(in))
	for i, r := range in {
		out[i] = Result{
			ID:       r.ID,
			Title:    r.Title,
			Category: r.Category,
			Price:    r.Price,
			WasPrice: r.WasPrice,
			Discount: r.Discount,
			Score:    r.Score,
		}
	}
	return out
}

func fromTerms(in []term.Term) []Term {
	out := make([]Term, len(in))
	for i, t := range in {
		out[i] = Term{Term: t.Canonical(), Original: t.Original(), Status: string(t.Status())}
	}
	return out
}

// embedderAdapter wraps the public Embedder to satisfy the internal
// contracts. Explicit-dimension requests verify the produced length.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

func (a *embedderAdapter) EmbedDim(ctx context.Context, text string, dim int) (domain.EmbeddingResult, error) {
	r, err := a.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	if len(r.Embedding) != dim {
		return domain.EmbeddingResult{}, fmt.Errorf(
			"embed: provider returned %d dimensions, want %d: %w",
			len(r.Embedding), dim, domain.ErrDimensionMismatch)
	}
	return r, nil
}
