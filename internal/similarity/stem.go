package similarity

import (
	"strings"

	"github.com/surgebase/porter2"
)

// StemMeasure treats terms as similar when their porter2 stems agree word by word.
// Words shorter than minLength are compared unstemmed.
type StemMeasure struct {
	minLength int
}

// NewStemMeasure builds the measure, rejecting a negative minimum length
func NewStemMeasure(minLength int) (*StemMeasure, error) {
	if err := checkNonNegative("similarity.stem.min_length", minLength); err != nil {
		return nil, err
	}
	return &StemMeasure{minLength: minLength}, nil
}

func (m *StemMeasure) Name() string { return "stem" }

// Stem returns the stem of a single lowercased word
func (m *StemMeasure) Stem(word string) string {
	word = strings.ToLower(word)
	if len([]rune(word)) < m.minLength {
		return word
	}
	return porter2.Stem(word)
}

func (m *StemMeasure) stemAll(term string) string {
	words := strings.Fields(term)
	for i, w := range words {
		words[i] = m.Stem(w)
	}
	return strings.Join(words, " ")
}

func (m *StemMeasure) AreWordsSimilar(ctx ComparisonContext) bool {
	a, b := ctx.Lower()
	if !ctx.plainChars() {
		a, b = canonicalize(a), canonicalize(b)
	}
	return m.stemAll(a) == m.stemAll(b)
}

func (m *StemMeasure) Similarity(ctx ComparisonContext) float64 {
	if m.AreWordsSimilar(ctx) {
		return 1.0
	}
	return 0.0
}
