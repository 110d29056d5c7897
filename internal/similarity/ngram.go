package similarity

import (
	"errors"
	"strconv"
	"strings"

	tlerrors "github.com/standardbeagle/tracelink/internal/errors"
)

// NgramVariant selects the n-gram scoring algorithm
type NgramVariant string

const (
	// NgramLucene is the n-gram edit distance used by Lucene's spell checker
	// (Kondrak 2005, distance form with fractional substitution cost)
	NgramLucene NgramVariant = "lucene"
	// NgramPositional is Kondrak's positional n-gram similarity, normalized by the longer term
	NgramPositional NgramVariant = "positional"
)

// padRune fills the n-1 leading positions; it never occurs in real text
const padRune rune = 0

// NgramMeasure compares terms by n-gram overlap
type NgramMeasure struct {
	variant   NgramVariant
	n         int
	threshold float64
}

// NewNgramMeasure validates variant, arity and threshold
func NewNgramMeasure(variant NgramVariant, n int, threshold float64) (*NgramMeasure, error) {
	switch NgramVariant(strings.ToLower(string(variant))) {
	case NgramLucene, NgramPositional:
		variant = NgramVariant(strings.ToLower(string(variant)))
	default:
		return nil, tlerrors.NewConfigError("similarity.ngram.variant", string(variant), errors.New("must be lucene or positional"))
	}
	if n < 1 {
		return nil, tlerrors.NewConfigError("similarity.ngram.n", strconv.Itoa(n), errors.New("must be at least 1"))
	}
	if err := checkUnit("similarity.ngram.threshold", threshold); err != nil {
		return nil, err
	}
	return &NgramMeasure{variant: variant, n: n, threshold: threshold}, nil
}

func (m *NgramMeasure) Name() string { return "ngram:" + string(m.variant) }

func (m *NgramMeasure) AreWordsSimilar(ctx ComparisonContext) bool {
	return m.Similarity(ctx) >= m.threshold
}

func (m *NgramMeasure) Similarity(ctx ComparisonContext) float64 {
	a, b := ctx.Lower()
	ra, rb := []rune(a), []rune(b)
	if m.variant == NgramPositional {
		return positionalNgram(ctx, ra, rb, m.n)
	}
	return luceneNgram(ctx, ra, rb, m.n)
}

// padded prefixes s with n-1 pad runes
func padded(s []rune, n int) []rune {
	out := make([]rune, 0, len(s)+n-1)
	for i := 0; i < n-1; i++ {
		out = append(out, padRune)
	}
	return append(out, s...)
}

// luceneNgram returns 1 - distance/max(len), where substituting n-gram pairs
// costs the fraction of their non-pad positions that differ
func luceneNgram(ctx ComparisonContext, source, target []rune, n int) float64 {
	sl, tl := len(source), len(target)
	if sl == 0 || tl == 0 {
		if sl == tl {
			return 1.0
		}
		return 0.0
	}

	if sl < n || tl < n {
		matching := 0
		for i := 0; i < min(sl, tl); i++ {
			if ctx.match(source[i], target[i]) {
				matching++
			}
		}
		return float64(matching) / float64(max(sl, tl))
	}

	sa := padded(source, n)
	ta := padded(target, n)

	p := make([]float64, sl+1)
	d := make([]float64, sl+1)
	for i := 0; i <= sl; i++ {
		p[i] = float64(i)
	}

	for j := 1; j <= tl; j++ {
		tj := ta[j-1 : j-1+n]
		d[0] = float64(j)
		for i := 1; i <= sl; i++ {
			cost, tn := 0, n
			for k := 0; k < n; k++ {
				sc := sa[i-1+k]
				switch {
				case sc != tj[k] && !(sc != padRune && tj[k] != padRune && ctx.match(sc, tj[k])):
					cost++
				case sc == padRune:
					tn--
				}
			}
			ec := float64(cost) / float64(tn)
			d[i] = min(d[i-1]+1, p[i]+1, p[i-1]+ec)
		}
		p, d = d, p
	}

	return 1.0 - p[sl]/float64(max(sl, tl))
}

// positionalNgram computes Kondrak's positional n-gram similarity: an alignment
// maximizing the summed per-position agreement of aligned n-grams
func positionalNgram(ctx ComparisonContext, source, target []rune, n int) float64 {
	sl, tl := len(source), len(target)
	if sl == 0 || tl == 0 {
		if sl == tl {
			return 1.0
		}
		return 0.0
	}

	sa := padded(source, n)
	ta := padded(target, n)

	prev := make([]float64, tl+1)
	curr := make([]float64, tl+1)
	for i := 1; i <= sl; i++ {
		curr[0] = 0
		for j := 1; j <= tl; j++ {
			agree := 0
			for k := 0; k < n; k++ {
				if ctx.match(sa[i-1+k], ta[j-1+k]) {
					agree++
				}
			}
			curr[j] = max(prev[j], curr[j-1], prev[j-1]+float64(agree)/float64(n))
		}
		prev, curr = curr, prev
	}

	return prev[tl] / float64(max(sl, tl))
}
