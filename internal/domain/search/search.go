// Package search holds the search request filters and result shape shared
// between the pipeline, the recommendation engine and the transport.
package search

import "math"

// MaxResults is the result cap for one search call.
const MaxResults = 15

// MaxRecommendations is the result cap for one recommendation call.
const MaxRecommendations = 5

// Filters are the optional catalog pre-filters. Nil bounds are unset ranges;
// both price bounds are inclusive, the brand match is a case-insensitive
// substring, the rating bound is a floor.
type Filters struct {
	MinPrice  *float64
	MaxPrice  *float64
	Brand     string
	MinRating *float64
}

// IsEmpty reports whether no filter is set.
func (f Filters) IsEmpty() bool {
	return f.MinPrice == nil && f.MaxPrice == nil && f.Brand == "" && f.MinRating == nil
}

// Result is a single ranked hit returned to callers.
type Result struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	WasPrice float64 `json:"was_price"`
	Discount float64 `json:"discount"`
	Score    float64 `json:"score"`
}

// RoundScore rounds a combined score to 3 decimals for result shaping.
func RoundScore(s float64) float64 {
	return math.Round(s*1000) / 1000
}
