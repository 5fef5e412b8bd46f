package catalog

import (
	"strconv"

	domcat "github.com/DominicD213/shoprank/internal/domain/catalog"
)

// buildHashFields converts a domain Item into a flat map[string]string for HSET.
func buildHashFields(it *domcat.Item) map[string]string {
	return map[string]string{
		"title":       it.Title(),
		"tags":        it.Tags(),
		"category":    it.Category(),
		"description": it.Description(),
		"brand":       it.Brand(),
		"popularity":  strconv.Itoa(it.Popularity()),
		"rating":      formatFloat(it.Rating()),
		"price":       formatFloat(it.Price()),
		"was_price":   formatFloat(it.WasPrice()),
		"discount":    formatFloat(it.Discount()),
	}
}

// parseHashFields converts a flat hash map back into a domain Item.
func parseHashFields(id string, m map[string]string) domcat.Item {
	popularity, _ := strconv.Atoi(m["popularity"])
	rating := parseFloat(m["rating"])
	price := parseFloat(m["price"])
	wasPrice := parseFloat(m["was_price"])
	discount := parseFloat(m["discount"])

	return domcat.Reconstruct(
		id, m["title"], m["tags"], m["category"], m["description"], m["brand"],
		popularity, rating, price, wasPrice, discount,
	)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
