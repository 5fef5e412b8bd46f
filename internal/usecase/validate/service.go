// Package validate turns raw user text into clean, safe search terms. Input
// is tokenized per the input class, spell-corrected, screened against the
// prohibited-keyword set, and resolved to canonical catalog categories.
package validate

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/DominicD213/shoprank/internal/domain/term"
)

var generalSplitRe = regexp.MustCompile(`\band\b|,|\bwith\b`)

// Service is the query validator.
type Service struct {
	catalog CatalogReader
	speller Speller
}

// New creates a validator service.
func New(catalog CatalogReader, speller Speller) *Service {
	return &Service{catalog: catalog, speller: speller}
}

// Validate tokenizes raw input per the given class and validates each term.
// It returns the distinct term count and the validated terms. Empty or
// whitespace-only input yields (0, nil).
func (s *Service) Validate(ctx context.Context, raw string, class term.Class) (int, []term.Term, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil, nil
	}

	switch class {
	case term.General:
		return s.validateGeneral(ctx, raw)
	case term.Clothing:
		return s.validateClothing(raw)
	case term.Media:
		return 1, []term.Term{term.New(raw, raw, term.OK)}, nil
	case term.Restricted:
		return 1, []term.Term{term.New("", raw, term.Flagged)}, nil
	default:
		return 0, nil, fmt.Errorf("unknown input class %q", class)
	}
}

// ValidateSimple is the degraded mode for testing and offline contexts: only
// whitespace tokenization and prohibited-keyword screening, no spell
// correction or category resolution. The prohibited set is the same as full
// mode.
func (s *Service) ValidateSimple(raw string) (int, []term.Term) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, nil
	}

	if containsProhibited(strings.ToLower(raw)) {
		return 1, []term.Term{term.New("", raw, term.Flagged)}
	}

	tokens := strings.Fields(strings.ToLower(trimmed))
	terms := make([]term.Term, 0, len(tokens))
	for _, tok := range tokens {
		terms = append(terms, term.New(tok, tok, term.OK))
	}
	return len(terms), terms
}

// validateGeneral splits on natural joiners (and, commas, with) and resolves
// each candidate to a category.
func (s *Service) validateGeneral(ctx context.Context, raw string) (int, []term.Term, error) {
	var out []term.Term

	for _, candidate := range generalSplitRe.Split(strings.ToLower(raw), -1) {
		original := strings.TrimSpace(candidate)
		if original == "" {
			continue
		}

		corrected := s.correctPhrase(original)

		if containsProhibited(corrected) || containsProhibited(original) {
			out = append(out, term.New("", original, term.Flagged))
			continue
		}

		category, err := s.categoryFor(ctx, corrected)
		if err != nil {
			return 0, nil, fmt.Errorf("resolve category: %w", err)
		}
		if category == "" {
			out = append(out, term.New("", original, term.Unsupported))
			continue
		}

		status := term.OK
		if corrected != original {
			status = term.Corrected
		}
		out = append(out, term.New(strings.ToLower(category), original, status))
	}

	return len(out), out, nil
}

// validateClothing tokenizes on whitespace and maps colloquial garment names
// onto the base terms of the clothing catalog, producing a single corrected
// query term.
func (s *Service) validateClothing(raw string) (int, []term.Term, error) {
	var corrected []string

	for _, word := range strings.Fields(raw) {
		if base := clothingBaseTerm(strings.ToLower(word)); base != "" {
			corrected = append(corrected, base)
			continue
		}
		corrected = append(corrected, s.speller.Correct(strings.ToLower(word)))
	}

	joined := strings.Join(corrected, " ")
	status := term.OK
	if !strings.EqualFold(joined, raw) {
		status = term.Corrected
	}
	if containsProhibited(strings.ToLower(joined)) {
		return 1, []term.Term{term.New("", raw, term.Flagged)}, nil
	}
	return 1, []term.Term{term.New(joined, raw, status)}, nil
}

func (s *Service) correctPhrase(phrase string) string {
	words := strings.Fields(phrase)
	for i, w := range words {
		words[i] = s.speller.Correct(w)
	}
	return strings.Join(words, " ")
}

// categoryFor resolves a category from the catalog tags first, then the
// synonym table.
func (s *Service) categoryFor(ctx context.Context, t string) (string, error) {
	category, err := s.catalog.CategoryForTag(ctx, t)
	if err != nil {
		return "", err
	}
	if category != "" {
		return category, nil
	}
	return synonymCategory(t), nil
}

func synonymCategory(t string) string {
	for category, synonyms := range synonymMap {
		for _, syn := range synonyms {
			if t == syn {
				return category
			}
		}
	}
	return ""
}

func clothingBaseTerm(word string) string {
	for base, synonyms := range clothingCorrections {
		for _, syn := range synonyms {
			if word == syn {
				return base
			}
		}
	}
	return ""
}

func containsProhibited(t string) bool {
	for _, keyword := range prohibitedKeywords {
		if strings.Contains(t, keyword) {
			return true
		}
	}
	return false
}
