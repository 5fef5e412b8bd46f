package chi

import (
	"context"

	domact "github.com/DominicD213/shoprank/internal/domain/activity"
	domcat "github.com/DominicD213/shoprank/internal/domain/catalog"
	domsearch "github.com/DominicD213/shoprank/internal/domain/search"
	"github.com/DominicD213/shoprank/internal/domain/term"
	healthuc "github.com/DominicD213/shoprank/internal/usecase/health"
)

// Searcher runs the search pipeline.
type Searcher interface {
	Search(ctx context.Context, query string, class term.Class, filters domsearch.Filters) ([]domsearch.Result, error)
}

// Recommender produces related items for a seed.
type Recommender interface {
	Recommend(ctx context.Context, seedID, userID string) ([]domsearch.Result, error)
}

// Validator exposes both validation modes.
type Validator interface {
	Validate(ctx context.Context, raw string, class term.Class) (int, []term.Term, error)
	ValidateSimple(raw string) (int, []term.Term)
}

// CatalogReader fetches single items for the product endpoint.
type CatalogReader interface {
	GetByID(ctx context.Context, id string) (domcat.Item, error)
}

// ActivityWriter appends activity events from the transport.
type ActivityWriter interface {
	Append(ctx context.Context, ev domact.Event) error
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
