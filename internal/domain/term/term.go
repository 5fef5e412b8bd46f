// Package term holds the validated search term value objects produced by the
// query validator.
package term

// Status is the validation outcome for a single term.
type Status string

// Validation statuses.
const (
	// OK means the term is clean and resolved to a canonical category.
	OK Status = "ok"
	// Corrected means spell correction changed the term.
	Corrected Status = "corrected"
	// Flagged means the term matched the prohibited-keyword set and must not
	// reach scoring; the caller suppresses results for it entirely.
	Flagged Status = "flagged"
	// Unsupported means no category resolved; the raw term is still usable
	// for substring matching.
	Unsupported Status = "unsupported"
)

// Class is the input class the validator was called for.
type Class string

// Input classes.
const (
	// General is the default free-text search box.
	General Class = "general"
	// Clothing is the clothing-specific search surface, tokenized on
	// whitespace with a colloquial-to-garment correction table.
	Clothing Class = "clothing"
	// Media covers the book/movie search surfaces (terms pass through).
	Media Class = "media"
	// Restricted marks input surfaces that never accept queries.
	Restricted Class = "restricted"
)

// IsValid checks if the class is one of the supported values.
func (c Class) IsValid() bool {
	return c == General || c == Clothing || c == Media || c == Restricted
}

// Term is a validated search term.
type Term struct {
	canonical string
	original  string
	status    Status
}

// New creates a validated term.
func New(canonical, original string, status Status) Term {
	return Term{canonical: canonical, original: original, status: status}
}

// Canonical returns the resolved canonical term ("" when flagged or unresolved).
func (t Term) Canonical() string { return t.canonical }

// Original returns the raw user term.
func (t Term) Original() string { return t.original }

// Status returns the validation outcome.
func (t Term) Status() Status { return t.status }

// Usable reports whether the term may participate in matching and scoring.
func (t Term) Usable() bool { return t.status != Flagged }

// MatchText returns the text to use for substring matching: the canonical
// term when resolved, the original otherwise.
func (t Term) MatchText() string {
	if t.canonical != "" {
		return t.canonical
	}
	return t.original
}
