package validate

import (
	"strings"

	"github.com/sajari/fuzzy"
)

// FuzzySpeller is the default Speller backed by a fuzzy-match model trained
// on the validator vocabulary plus any extra corpus (typically catalog text).
type FuzzySpeller struct {
	model *fuzzy.Model
}

// NewFuzzySpeller trains a spell-correction model. Extra corpus entries are
// split on whitespace so whole titles can be passed in directly.
func NewFuzzySpeller(corpus ...string) *FuzzySpeller {
	model := fuzzy.NewModel()
	model.SetThreshold(1)
	model.SetDepth(2)

	var words []string
	for _, w := range VocabularyWords() {
		words = append(words, strings.Fields(strings.ToLower(w))...)
	}
	for _, c := range corpus {
		words = append(words, strings.Fields(strings.ToLower(c))...)
	}
	model.Train(words)

	return &FuzzySpeller{model: model}
}

// Correct returns the best suggestion for word, or word itself when the model
// has none.
func (s *FuzzySpeller) Correct(word string) string {
	if suggestion := s.model.SpellCheck(word); suggestion != "" {
		return suggestion
	}
	return word
}
