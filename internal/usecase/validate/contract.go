package validate

import "context"

// CatalogReader resolves a search term to a category via the item tags.
type CatalogReader interface {
	CategoryForTag(ctx context.Context, tag string) (string, error)
}

// Speller corrects a single word against a trained dictionary. Correct
// returns the word unchanged when no better suggestion exists.
type Speller interface {
	Correct(word string) string
}
