// Package ingest handles the write path: importing catalog and activity CSV
// exports and generating embeddings for items that lack one.
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/DominicD213/shoprank/internal/domain"
	domact "github.com/DominicD213/shoprank/internal/domain/activity"
	domcat "github.com/DominicD213/shoprank/internal/domain/catalog"
)

// Stats summarizes one import run.
type Stats struct {
	Imported int
	Skipped  int
}

// Service runs ingest jobs.
type Service struct {
	catalog  CatalogStore
	vectors  EmbeddingStore
	activity ActivityWriter
	embed    Embedder
	logger   *zap.Logger
}

// New creates an ingest service.
func New(catalog CatalogStore, vectors EmbeddingStore, activity ActivityWriter, embed Embedder, logger *zap.Logger) *Service {
	return &Service{catalog: catalog, vectors: vectors, activity: activity, embed: embed, logger: logger}
}

// ImportProducts reads a product CSV and stores the catalog items. Rows
// missing title, description or category are skipped and counted, not fatal.
// Prices may carry "$" and thousands separators. A product_id column is used
// as the item id when present; otherwise ids are assigned from the row number.
func (s *Service) ImportProducts(ctx context.Context, r io.Reader) (Stats, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return Stats{}, fmt.Errorf("read csv header: %w", err)
	}
	cols := columnIndex(header)

	var (
		stats Stats
		items []domcat.Item
		row   int
	)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Stats{}, fmt.Errorf("read csv row: %w", err)
		}
		row++

		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		title := field("product_name")
		description := field("description")
		category := field("category")
		if title == "" || description == "" || category == "" {
			stats.Skipped++
			continue
		}

		id := field("product_id")
		if id == "" {
			id = strconv.Itoa(row)
		}

		popularity, _ := strconv.Atoi(field("popularity_score"))
		rating, _ := strconv.ParseFloat(field("rating"), 64)
		discount, _ := strconv.ParseFloat(field("discount"), 64)

		item, err := domcat.New(
			id, title, cleanTags(field("tags")), category, description,
			field("brand/manufacturer"),
			popularity, rating,
			cleanPrice(field("price")), cleanPrice(field("was_price")), discount,
		)
		if err != nil {
			s.logger.Warn("Skipping invalid product row", zap.Int("row", row), zap.Error(err))
			stats.Skipped++
			continue
		}
		items = append(items, item)
		stats.Imported++
	}

	if len(items) > 0 {
		if err := s.catalog.PutMulti(ctx, items); err != nil {
			return Stats{}, fmt.Errorf("store items: %w", err)
		}
	}
	return stats, nil
}

// EnsureEmbeddings embeds every catalog item that has no stored vector and
// returns how many vectors were created.
func (s *Service) EnsureEmbeddings(ctx context.Context) (int, error) {
	items, err := s.catalog.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("list items: %w", err)
	}
	existing, err := s.vectors.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("list embeddings: %w", err)
	}

	var created []domain.Embedding
	for i := range items {
		if _, ok := existing[items[i].ID()]; ok {
			continue
		}
		result, err := s.embed.Embed(ctx, items[i].EmbeddingText())
		if err != nil {
			return len(created), fmt.Errorf("embed item %s: %w", items[i].ID(), err)
		}
		created = append(created, domain.NewEmbedding(items[i].ID(), result.Embedding))
	}

	if len(created) > 0 {
		if err := s.vectors.PutMulti(ctx, created); err != nil {
			return 0, fmt.Errorf("store embeddings: %w", err)
		}
	}
	return len(created), nil
}

// ImportActivities reads an activity CSV (user_id and action required,
// product_id and timestamp optional) and appends the events. Invalid rows are
// skipped and counted.
func (s *Service) ImportActivities(ctx context.Context, r io.Reader) (Stats, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return Stats{}, fmt.Errorf("read csv header: %w", err)
	}
	cols := columnIndex(header)
	if _, ok := cols["user_id"]; !ok {
		return Stats{}, fmt.Errorf("missing required column user_id")
	}
	if _, ok := cols["action"]; !ok {
		return Stats{}, fmt.Errorf("missing required column action")
	}

	var (
		stats Stats
		row   int
	)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Stats{}, fmt.Errorf("read csv row: %w", err)
		}
		row++

		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		var ts time.Time
		if raw := field("timestamp"); raw != "" {
			ts, err = time.Parse(time.RFC3339, raw)
			if err != nil {
				s.logger.Warn("Skipping activity row with bad timestamp", zap.Int("row", row), zap.String("timestamp", raw))
				stats.Skipped++
				continue
			}
		}

		action, err := domact.ParseAction(field("action"))
		if err != nil {
			s.logger.Warn("Skipping activity row with unknown action", zap.Int("row", row), zap.String("action", field("action")))
			stats.Skipped++
			continue
		}

		ev, err := domact.NewEvent(field("user_id"), field("product_id"), action, ts)
		if err != nil {
			s.logger.Warn("Skipping invalid activity row", zap.Int("row", row), zap.Error(err))
			stats.Skipped++
			continue
		}
		if err := s.activity.Append(ctx, ev); err != nil {
			return stats, fmt.Errorf("append event: %w", err)
		}
		stats.Imported++
	}
	return stats, nil
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

// cleanPrice strips currency formatting ("$1,299.00" -> 1299).
func cleanPrice(raw string) float64 {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(raw))
	v, _ := strconv.ParseFloat(cleaned, 64)
	return v
}

// cleanTags strips the list formatting some exports carry ("['a', 'b']").
func cleanTags(raw string) string {
	return strings.NewReplacer("['", "", "']", "", "'", "").Replace(raw)
}
