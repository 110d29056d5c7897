package similarity

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hbollon/go-edlib"

	tlerrors "github.com/standardbeagle/tracelink/internal/errors"
)

// Measure is one word similarity measure.
//
// Similarity returns a score in [0,1], or NaN when the score could not be
// computed (for example a vector lookup failed). Callers treat NaN as "no evidence".
type Measure interface {
	Name() string
	AreWordsSimilar(ctx ComparisonContext) bool
	Similarity(ctx ComparisonContext) float64
}

func checkUnit(field string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return tlerrors.NewConfigError(field, strconv.FormatFloat(v, 'f', -1, 64), errors.New("must be within [0,1]"))
	}
	return nil
}

func checkNonNegative(field string, v int) error {
	if v < 0 {
		return tlerrors.NewConfigError(field, strconv.Itoa(v), errors.New("cannot be negative"))
	}
	return nil
}

// EqualityMeasure matches terms that are equal ignoring case
type EqualityMeasure struct{}

func (EqualityMeasure) Name() string { return "equality" }

func (EqualityMeasure) AreWordsSimilar(ctx ComparisonContext) bool {
	a, b := ctx.Lower()
	if ctx.plainChars() {
		return a == b
	}
	return ctx.equalRunes([]rune(a), []rune(b))
}

func (m EqualityMeasure) Similarity(ctx ComparisonContext) float64 {
	if m.AreWordsSimilar(ctx) {
		return 1.0
	}
	return 0.0
}

// LevenshteinMeasure judges similarity by edit distance with three knobs:
// maxDistance caps the distance outright, terms shorter than minLength must
// additionally contain one another, and threshold scales the allowed distance
// by the shorter term's length.
type LevenshteinMeasure struct {
	minLength   int
	maxDistance int
	threshold   float64
}

// NewLevenshteinMeasure validates the knobs and builds the measure
func NewLevenshteinMeasure(minLength, maxDistance int, threshold float64) (*LevenshteinMeasure, error) {
	if err := checkNonNegative("similarity.levenshtein.min_length", minLength); err != nil {
		return nil, err
	}
	if err := checkNonNegative("similarity.levenshtein.max_distance", maxDistance); err != nil {
		return nil, err
	}
	if err := checkUnit("similarity.levenshtein.threshold", threshold); err != nil {
		return nil, err
	}
	return &LevenshteinMeasure{minLength: minLength, maxDistance: maxDistance, threshold: threshold}, nil
}

func (m *LevenshteinMeasure) Name() string { return "levenshtein" }

// Distance returns the edit distance between the lowercased terms
func (m *LevenshteinMeasure) Distance(ctx ComparisonContext) int {
	a, b := ctx.Lower()
	return levenshtein(ctx, []rune(a), []rune(b))
}

func (m *LevenshteinMeasure) AreWordsSimilar(ctx ComparisonContext) bool {
	a, b := ctx.Lower()
	ra, rb := []rune(a), []rune(b)
	distance := levenshtein(ctx, ra, rb)

	shorter := min(len(ra), len(rb))
	if shorter < m.minLength {
		contained := ctx.containsRunes(ra, rb) || ctx.containsRunes(rb, ra)
		return distance <= m.maxDistance && contained
	}

	allowed := math.Min(float64(m.maxDistance), m.threshold*float64(shorter))
	return float64(distance) <= allowed
}

func (m *LevenshteinMeasure) Similarity(ctx ComparisonContext) float64 {
	a, b := ctx.Lower()
	ra, rb := []rune(a), []rune(b)
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein(ctx, ra, rb))/float64(longest)
}

// levenshtein uses go-edlib for plain equality and a rune DP honouring the
// context's character equivalence otherwise
func levenshtein(ctx ComparisonContext, a, b []rune) int {
	if ctx.plainChars() {
		return edlib.LevenshteinDistance(string(a), string(b))
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if ctx.match(a[i-1], b[j-1]) {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// JaroWinklerMeasure compares terms with Jaro-Winkler similarity
type JaroWinklerMeasure struct {
	threshold float64
}

// NewJaroWinklerMeasure builds the measure, rejecting thresholds outside [0,1]
func NewJaroWinklerMeasure(threshold float64) (*JaroWinklerMeasure, error) {
	if err := checkUnit("similarity.jaro_winkler.threshold", threshold); err != nil {
		return nil, err
	}
	return &JaroWinklerMeasure{threshold: threshold}, nil
}

func (m *JaroWinklerMeasure) Name() string { return "jaro_winkler" }

func (m *JaroWinklerMeasure) AreWordsSimilar(ctx ComparisonContext) bool {
	return m.Similarity(ctx) >= m.threshold
}

func (m *JaroWinklerMeasure) Similarity(ctx ComparisonContext) float64 {
	a, b := ctx.Lower()
	if !ctx.plainChars() {
		a, b = canonicalize(a), canonicalize(b)
	}
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	return float64(edlib.JaroWinklerSimilarity(a, b))
}

func canonicalize(s string) string {
	return strings.Map(Canonical, s)
}

// edlibAlgorithms maps config names to go-edlib algorithms usable through StringsSimilarity
var edlibAlgorithms = map[string]edlib.Algorithm{
	"levenshtein":         edlib.Levenshtein,
	"damerau_levenshtein": edlib.DamerauLevenshtein,
	"osa":                 edlib.OSADamerauLevenshtein,
	"lcs":                 edlib.Lcs,
	"jaro":                edlib.Jaro,
	"jaro_winkler":        edlib.JaroWinkler,
	"cosine":              edlib.Cosine,
	"jaccard":             edlib.Jaccard,
	"sorensen_dice":       edlib.SorensenDice,
	"qgram":               edlib.Qgram,
}

// EdlibMeasure exposes any go-edlib similarity algorithm as a measure
type EdlibMeasure struct {
	name      string
	algorithm edlib.Algorithm
	threshold float64
}

// NewEdlibMeasure resolves algorithm by name and validates the threshold
func NewEdlibMeasure(algorithm string, threshold float64) (*EdlibMeasure, error) {
	algo, ok := edlibAlgorithms[strings.ToLower(algorithm)]
	if !ok {
		return nil, tlerrors.NewConfigError("similarity.edlib.algorithm", algorithm,
			fmt.Errorf("unknown algorithm (known: %s)", strings.Join(sortedKeys(edlibAlgorithms), ", ")))
	}
	if err := checkUnit("similarity.edlib.threshold", threshold); err != nil {
		return nil, err
	}
	return &EdlibMeasure{name: "edlib:" + strings.ToLower(algorithm), algorithm: algo, threshold: threshold}, nil
}

func (m *EdlibMeasure) Name() string { return m.name }

func (m *EdlibMeasure) AreWordsSimilar(ctx ComparisonContext) bool {
	return m.Similarity(ctx) >= m.threshold
}

// Similarity returns NaN when go-edlib refuses the input pair
func (m *EdlibMeasure) Similarity(ctx ComparisonContext) float64 {
	a, b := ctx.Lower()
	if !ctx.plainChars() {
		a, b = canonicalize(a), canonicalize(b)
	}
	if a == b {
		return 1.0
	}
	score, err := edlib.StringsSimilarity(a, b, m.algorithm)
	if err != nil {
		return math.NaN()
	}
	return float64(score)
}
