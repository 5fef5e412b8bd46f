// Package recommend produces related-item lists for a seed item, blending
// embedding similarity with lightweight collaborative filtering over the
// activity log.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/DominicD213/shoprank/internal/domain"
	domsearch "github.com/DominicD213/shoprank/internal/domain/search"
	"github.com/DominicD213/shoprank/internal/metrics"
)

// Blend weights for the user-aware path.
const (
	contentWeight       = 0.6
	collaborativeWeight = 0.4
)

// Config holds the collaborative-filtering tunables. Zero fields fall back
// to the defaults: a 30 day window, 0.2 minimum similarity, 5 users.
type Config struct {
	WindowDays        int
	MinUserSimilarity float64
	MaxSimilarUsers   int
}

func (c Config) withDefaults() Config {
	if c.WindowDays <= 0 {
		c.WindowDays = 30
	}
	if c.MinUserSimilarity <= 0 {
		c.MinUserSimilarity = 0.2
	}
	if c.MaxSimilarUsers <= 0 {
		c.MaxSimilarUsers = 5
	}
	return c
}

// Service is the recommendation engine. Every call recomputes fresh from the
// stores; nothing is cached across calls.
type Service struct {
	vectors  EmbeddingReader
	catalog  CatalogReader
	activity ActivityReader
	cfg      Config
	now      func() time.Time
}

// New creates a recommendation service.
func New(vectors EmbeddingReader, catalog CatalogReader, activity ActivityReader, cfg Config) *Service {
	return &Service{
		vectors:  vectors,
		catalog:  catalog,
		activity: activity,
		cfg:      cfg.withDefaults(),
		now:      time.Now,
	}
}

// Recommend returns up to MaxRecommendations items related to the seed,
// sorted by descending score. A seed without a stored vector yields an empty
// list, not an error. With a user id the content ranking is blended with a
// collaborative score derived from similar users' recent activity.
func (s *Service) Recommend(ctx context.Context, seedID, userID string) ([]domsearch.Result, error) {
	seed, err := s.vectors.Get(ctx, seedID)
	if err != nil {
		if errors.Is(err, domain.ErrMissingEmbedding) {
			metrics.RecommendationsTotal.WithLabelValues("empty").Inc()
			return nil, nil
		}
		return nil, fmt.Errorf("get seed embedding: %w", err)
	}

	content, err := s.contentScores(ctx, seed)
	if err != nil {
		return nil, err
	}

	final := content
	strategy := "content"

	if userID != "" {
		collab, err := s.collaborative(ctx, userID)
		if err != nil {
			return nil, err
		}
		final = blendScores(content, collab, seedID)
		strategy = "blended"
	}

	results, err := s.shapeResults(ctx, final, seedID)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		strategy = "empty"
	}
	metrics.RecommendationsTotal.WithLabelValues(strategy).Inc()
	return results, nil
}

// contentScores computes cosine similarity between the seed vector and every
// other stored vector of the same dimension. Vectors of other sizes are
// excluded outright.
func (s *Service) contentScores(ctx context.Context, seed domain.Embedding) (map[string]float64, error) {
	all, err := s.vectors.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list embeddings: %w", err)
	}

	scores := make(map[string]float64)
	for id, emb := range all {
		if id == seed.ItemID() || emb.Dim() != seed.Dim() {
			continue
		}
		scores[id] = domain.Cosine(seed.Vector(), emb.Vector())
	}
	return scores, nil
}

// collaborative builds the per-item collaborative score for the user from
// similar users' activity within the trailing window.
func (s *Service) collaborative(ctx context.Context, userID string) (map[string]float64, error) {
	now := s.now()
	since := now.Add(-time.Duration(s.cfg.WindowDays) * 24 * time.Hour)

	events, err := s.activity.EventsByUserSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("read user activity: %w", err)
	}
	target := activityVector(events, now)
	if len(target) == 0 {
		return nil, nil
	}

	users, err := s.activity.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	others := make(map[string]map[string]float64)
	for _, other := range users {
		if other == userID {
			continue
		}
		otherEvents, err := s.activity.EventsByUserSince(ctx, other, since)
		if err != nil {
			return nil, fmt.Errorf("read user activity: %w", err)
		}
		if vec := activityVector(otherEvents, now); len(vec) > 0 {
			others[other] = vec
		}
	}

	similar := rankSimilarUsers(target, others, s.cfg.MinUserSimilarity)
	return collaborativeScores(similar, s.cfg.MaxSimilarUsers), nil
}

// blendScores merges the two signals over the union of candidate items; a
// missing signal contributes zero. The seed never scores.
func blendScores(content, collab map[string]float64, seedID string) map[string]float64 {
	final := make(map[string]float64, len(content))
	for id, c := range content {
		final[id] = contentWeight * c
	}
	for id, c := range collab {
		if id == seedID {
			continue
		}
		final[id] += collaborativeWeight * c
	}
	return final
}

// shapeResults sorts the scored candidates, keeps the top entries that still
// exist in the catalog, and rounds scores for output.
func (s *Service) shapeResults(ctx context.Context, scores map[string]float64, seedID string) ([]domsearch.Result, error) {
	type scoredID struct {
		id    string
		score float64
	}
	ranked := make([]scoredID, 0, len(scores))
	for id, score := range scores {
		if id == seedID {
			continue
		}
		ranked = append(ranked, scoredID{id: id, score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].id < ranked[j].id
	})
	if len(ranked) > domsearch.MaxRecommendations {
		ranked = ranked[:domsearch.MaxRecommendations]
	}
	if len(ranked) == 0 {
		return nil, nil
	}

	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.id
	}
	items, err := s.catalog.GetMulti(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch items: %w", err)
	}
	byID := make(map[string]int, len(items))
	for i := range items {
		byID[items[i].ID()] = i
	}

	results := make([]domsearch.Result, 0, len(ranked))
	for _, r := range ranked {
		i, ok := byID[r.id]
		if !ok {
			continue
		}
		results = append(results, domsearch.Result{
			ID:       items[i].ID(),
			Title:    items[i].Title(),
			Category: items[i].Category(),
			Price:    items[i].Price(),
			WasPrice: items[i].WasPrice(),
			Discount: items[i].Discount(),
			Score:    domsearch.RoundScore(r.score),
		})
	}
	return results, nil
}
