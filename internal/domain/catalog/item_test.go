package catalog

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	it, err := New("p1", "Red Shoes", "shoes, running", "Clothing", "Light running shoes", "Acme",
		500, 4.5, 59.99, 79.99, 25.0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if it.ID() != "p1" {
		t.Errorf("ID() = %q", it.ID())
	}
	if it.Popularity() != 500 {
		t.Errorf("Popularity() = %d", it.Popularity())
	}
	if it.WasPrice() != 79.99 {
		t.Errorf("WasPrice() = %f", it.WasPrice())
	}
}

func TestNew_Invalid(t *testing.T) {
	cases := []struct {
		name       string
		id, title  string
		popularity int
		rating     float64
	}{
		{"empty id", "", "t", 0, 0},
		{"empty title", "p1", "", 0, 0},
		{"popularity too high", "p1", "t", 1001, 0},
		{"negative popularity", "p1", "t", -1, 0},
		{"rating too high", "p1", "t", 0, 5.1},
		{"negative rating", "p1", "t", 0, -0.1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.id, tc.title, "", "", "", "", tc.popularity, tc.rating, 0, 0, 0)
			if err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSearchText_Lowercased(t *testing.T) {
	it := Reconstruct("p1", "Red Shoes", "Running", "Clothing", "LIGHT shoes", "Acme", 0, 0, 0, 0, 0)
	text := it.SearchText()
	if text != strings.ToLower(text) {
		t.Errorf("SearchText not lowercased: %q", text)
	}
	if !strings.Contains(text, "red shoes") {
		t.Errorf("SearchText missing title: %q", text)
	}
	if strings.Contains(text, "acme") {
		t.Errorf("SearchText should not include brand: %q", text)
	}
}

func TestEmbeddingText_IncludesBrand(t *testing.T) {
	it := Reconstruct("p1", "Red Shoes", "running", "Clothing", "light", "Acme", 0, 0, 0, 0, 0)
	if !strings.Contains(it.EmbeddingText(), "Acme") {
		t.Errorf("EmbeddingText missing brand: %q", it.EmbeddingText())
	}
}
