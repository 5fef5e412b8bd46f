package catalog

import (
	"fmt"
	"strings"
)

// MaxPopularity is the upper bound of the catalog popularity score.
const MaxPopularity = 1000

// MaxRating is the upper bound of the catalog rating.
const MaxRating = 5.0

// Item is a catalog product (immutable value object). Owned by the catalog
// store; the search and recommendation core only reads it.
type Item struct {
	id          string
	title       string
	tags        string
	category    string
	description string
	brand       string
	popularity  int
	rating      float64
	price       float64
	wasPrice    float64
	discount    float64
}

// New validates and creates an Item.
func New(
	id, title, tags, category, description, brand string,
	popularity int, rating, price, wasPrice, discount float64,
) (Item, error) {
	if id == "" {
		return Item{}, fmt.Errorf("item ID is required")
	}
	if title == "" {
		return Item{}, fmt.Errorf("item title is required")
	}
	if popularity < 0 || popularity > MaxPopularity {
		return Item{}, fmt.Errorf("popularity must be between 0 and %d, got %d", MaxPopularity, popularity)
	}
	if rating < 0 || rating > MaxRating {
		return Item{}, fmt.Errorf("rating must be between 0 and %.1f, got %.2f", MaxRating, rating)
	}
	return Item{
		id: id, title: title, tags: tags, category: category,
		description: description, brand: brand,
		popularity: popularity, rating: rating,
		price: price, wasPrice: wasPrice, discount: discount,
	}, nil
}

// Reconstruct creates an Item without validation (storage hydration).
func Reconstruct(
	id, title, tags, category, description, brand string,
	popularity int, rating, price, wasPrice, discount float64,
) Item {
	return Item{
		id: id, title: title, tags: tags, category: category,
		description: description, brand: brand,
		popularity: popularity, rating: rating,
		price: price, wasPrice: wasPrice, discount: discount,
	}
}

// ID returns the item identifier.
func (i *Item) ID() string { return i.id }

// Title returns the item title.
func (i *Item) Title() string { return i.title }

// Tags returns the free-text tags.
func (i *Item) Tags() string { return i.tags }

// Category returns the canonical category.
func (i *Item) Category() string { return i.category }

// Description returns the item description.
func (i *Item) Description() string { return i.description }

// Brand returns the item brand.
func (i *Item) Brand() string { return i.brand }

// Popularity returns the popularity score (0-1000).
func (i *Item) Popularity() int { return i.popularity }

// Rating returns the rating (0.0-5.0).
func (i *Item) Rating() float64 { return i.rating }

// Price returns the current price.
func (i *Item) Price() float64 { return i.price }

// WasPrice returns the pre-discount price.
func (i *Item) WasPrice() float64 { return i.wasPrice }

// Discount returns the discount percentage.
func (i *Item) Discount() float64 { return i.discount }

// SearchText returns the lowercased text blob used for substring matching:
// title, tags, category and description.
func (i *Item) SearchText() string {
	return strings.ToLower(i.title + " " + i.tags + " " + i.category + " " + i.description)
}

// EmbeddingText returns the text embedded when indexing the item.
func (i *Item) EmbeddingText() string {
	return i.title + " " + i.tags + " " + i.category + " " + i.description + " " + i.brand
}
