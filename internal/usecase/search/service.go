// Package search orchestrates the query pipeline: validation, catalog
// filtering, substring matching, vector scoring and top-K shaping.
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/DominicD213/shoprank/internal/domain"
	domcat "github.com/DominicD213/shoprank/internal/domain/catalog"
	domsearch "github.com/DominicD213/shoprank/internal/domain/search"
	"github.com/DominicD213/shoprank/internal/domain/term"
	"github.com/DominicD213/shoprank/internal/metrics"
	"github.com/DominicD213/shoprank/internal/usecase/scoring"
)

// degradedScore is assigned to every result on the no-embeddings path.
const degradedScore = 1.0

// Service is the search pipeline.
type Service struct {
	validator Validator
	catalog   CatalogReader
	vectors   EmbeddingReader
	scorer    Scorer
}

// New creates a search service.
func New(validator Validator, catalog CatalogReader, vectors EmbeddingReader, scorer Scorer) *Service {
	return &Service{validator: validator, catalog: catalog, vectors: vectors, scorer: scorer}
}

// Search runs the full pipeline and returns at most MaxResults hits sorted by
// descending score. Empty input, fully-flagged queries and no-match queries
// all yield an empty list, never an error.
func (s *Service) Search(
	ctx context.Context, query string, class term.Class, filters domsearch.Filters,
) ([]domsearch.Result, error) {
	if strings.TrimSpace(query) == "" {
		metrics.SearchesTotal.WithLabelValues("empty").Inc()
		return nil, nil
	}

	_, terms, err := s.validator.Validate(ctx, query, class)
	if err != nil {
		return nil, fmt.Errorf("validate query: %w", err)
	}

	usable := usableTerms(terms)
	if len(usable) == 0 {
		if len(terms) > 0 {
			metrics.SearchesTotal.WithLabelValues("flagged").Inc()
		} else {
			metrics.SearchesTotal.WithLabelValues("empty").Inc()
		}
		return nil, nil
	}

	items, err := s.catalog.Filter(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("filter catalog: %w", err)
	}

	matched := matchTerms(items, usable)
	if len(matched) == 0 {
		metrics.SearchesTotal.WithLabelValues("empty").Inc()
		return nil, nil
	}

	ids := make([]string, len(matched))
	for i, it := range matched {
		ids[i] = it.ID()
	}
	vectors, err := s.vectors.GetMulti(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch embeddings: %w", err)
	}

	if len(vectors) == 0 {
		metrics.SearchesTotal.WithLabelValues("degraded").Inc()
		return degradedResults(matched), nil
	}

	scored, err := s.scoreByDimension(ctx, query, matched, vectors)
	if err != nil {
		return nil, err
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Item.ID() < scored[j].Item.ID()
	})
	if len(scored) > domsearch.MaxResults {
		scored = scored[:domsearch.MaxResults]
	}

	results := make([]domsearch.Result, len(scored))
	for i, sc := range scored {
		results[i] = toResult(sc.Item, sc.Score)
	}
	metrics.SearchesTotal.WithLabelValues("ranked").Inc()
	return results, nil
}

// scoreByDimension groups candidates by stored vector length and scores each
// group independently. Scores from different dimensions merge only after each
// group's own cosine computation; vectors are never compared across sizes.
// Matched items without a stored vector are left out of the ranked set.
func (s *Service) scoreByDimension(
	ctx context.Context, query string, matched []domcat.Item, vectors map[string]domain.Embedding,
) ([]scoring.Scored, error) {
	groups := make(map[int][]scoring.Candidate)
	for _, it := range matched {
		emb, ok := vectors[it.ID()]
		if !ok {
			continue
		}
		dim := emb.Dim()
		groups[dim] = append(groups[dim], scoring.Candidate{Item: it, Vector: emb.Vector()})
	}

	dims := make([]int, 0, len(groups))
	for dim := range groups {
		dims = append(dims, dim)
	}
	sort.Ints(dims)

	var scored []scoring.Scored
	for _, dim := range dims {
		group, err := s.scorer.ScoreGroup(ctx, query, dim, groups[dim])
		if err != nil {
			return nil, fmt.Errorf("score dim %d: %w", dim, err)
		}
		scored = append(scored, group...)
	}
	return scored, nil
}

func usableTerms(terms []term.Term) []term.Term {
	var usable []term.Term
	for _, t := range terms {
		if t.Usable() {
			usable = append(usable, t)
		}
	}
	return usable
}

// matchTerms keeps items whose combined searchable text contains at least one
// validated term as a case-insensitive substring. Both the canonical and the
// raw form of each term count as a match.
func matchTerms(items []domcat.Item, terms []term.Term) []domcat.Item {
	var matched []domcat.Item
	for i := range items {
		text := items[i].SearchText()
		for _, t := range terms {
			if containsTerm(text, t) {
				matched = append(matched, items[i])
				break
			}
		}
	}
	return matched
}

func containsTerm(text string, t term.Term) bool {
	if match := strings.ToLower(t.MatchText()); match != "" && strings.Contains(text, match) {
		return true
	}
	if original := strings.ToLower(t.Original()); original != "" && strings.Contains(text, original) {
		return true
	}
	return false
}

// degradedResults shapes the unranked fallback: fetch order, default score,
// capped at the usual result limit.
func degradedResults(matched []domcat.Item) []domsearch.Result {
	if len(matched) > domsearch.MaxResults {
		matched = matched[:domsearch.MaxResults]
	}
	results := make([]domsearch.Result, len(matched))
	for i := range matched {
		results[i] = toResult(matched[i], degradedScore)
	}
	return results
}

func toResult(it domcat.Item, score float64) domsearch.Result {
	return domsearch.Result{
		ID:       it.ID(),
		Title:    it.Title(),
		Category: it.Category(),
		Price:    it.Price(),
		WasPrice: it.WasPrice(),
		Discount: it.Discount(),
		Score:    domsearch.RoundScore(score),
	}
}
