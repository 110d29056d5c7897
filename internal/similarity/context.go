package similarity

import (
	"strings"
	"unicode"
)

// CharMatchFunc decides whether two runes count as the same character.
// Both runes are already lowercased when a measure calls it.
type CharMatchFunc func(a, b rune) bool

// EqualChars is plain rune equality
func EqualChars(a, b rune) bool {
	return a == b
}

// EqualOrHomoglyph treats visually confusable Cyrillic and Greek letters as their Latin counterparts
func EqualOrHomoglyph(a, b rune) bool {
	return a == b || Canonical(a) == Canonical(b)
}

// homoglyphs maps lowercase look-alikes to the Latin letter they imitate
var homoglyphs = map[rune]rune{
	// Cyrillic
	'а': 'a', 'в': 'b', 'е': 'e', 'ё': 'e', 'к': 'k', 'м': 'm', 'н': 'h', 'о': 'o',
	'р': 'p', 'с': 'c', 'т': 't', 'у': 'y', 'х': 'x', 'і': 'i', 'ї': 'i', 'ј': 'j',
	'ѕ': 's', 'ԁ': 'd', 'ԛ': 'q', 'ԝ': 'w', 'һ': 'h', 'ӏ': 'l',
	// Greek
	'α': 'a', 'β': 'b', 'ε': 'e', 'ζ': 'z', 'η': 'n', 'ι': 'i', 'κ': 'k', 'μ': 'm',
	'ν': 'v', 'ο': 'o', 'ρ': 'p', 'τ': 't', 'υ': 'u', 'χ': 'x',
}

// Canonical lowercases r and folds known homoglyphs to their Latin letter
func Canonical(r rune) rune {
	r = unicode.ToLower(r)
	if c, ok := homoglyphs[r]; ok {
		return c
	}
	return r
}

// ComparisonContext is the immutable input to a single measure evaluation:
// two terms and the character equivalence to apply while comparing them.
type ComparisonContext struct {
	First     string
	Second    string
	CharMatch CharMatchFunc
}

// NewContext creates a context comparing first and second with plain character equality
func NewContext(first, second string) ComparisonContext {
	return ComparisonContext{First: first, Second: second}
}

// WithCharMatch returns a copy of the context using fn for character comparison
func (c ComparisonContext) WithCharMatch(fn CharMatchFunc) ComparisonContext {
	c.CharMatch = fn
	return c
}

// Reversed swaps the two terms
func (c ComparisonContext) Reversed() ComparisonContext {
	c.First, c.Second = c.Second, c.First
	return c
}

// Lower returns both terms lowercased and trimmed
func (c ComparisonContext) Lower() (string, string) {
	return strings.ToLower(strings.TrimSpace(c.First)), strings.ToLower(strings.TrimSpace(c.Second))
}

// plainChars reports whether the context uses plain rune equality, which lets
// measures take library fast paths
func (c ComparisonContext) plainChars() bool {
	return c.CharMatch == nil
}

// match compares two runes under the context's character equivalence
func (c ComparisonContext) match(a, b rune) bool {
	if c.CharMatch == nil {
		return a == b
	}
	return c.CharMatch(a, b)
}

// equalRunes compares two rune slices element-wise under the context's equivalence
func (c ComparisonContext) equalRunes(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !c.match(a[i], b[i]) {
			return false
		}
	}
	return true
}

// containsRunes reports whether needle occurs in haystack under the context's equivalence
func (c ComparisonContext) containsRunes(haystack, needle []rune) bool {
	if len(needle) == 0 {
		return true
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if c.equalRunes(haystack[i:i+len(needle)], needle) {
			return true
		}
	}
	return false
}
