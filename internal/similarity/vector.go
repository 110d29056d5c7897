package similarity

import (
	"errors"
	"log/slog"
	"math"
	"strings"

	tlerrors "github.com/standardbeagle/tracelink/internal/errors"
)

// VectorSource provides precomputed embeddings by term.
// found=false means the term has no vector; err is reserved for lookup failures.
type VectorSource interface {
	Vector(term string) (vec []float32, found bool, err error)
}

// Cosine returns the cosine similarity of two vectors. A zero vector yields 0;
// vectors of different dimension yield NaN.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return math.NaN()
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// VectorMeasure compares terms by the cosine of their embeddings
type VectorMeasure struct {
	source    VectorSource
	cache     *VectorCache
	threshold float64
	logger    *slog.Logger
}

// NewVectorMeasure builds a vector measure over source with its own cache
func NewVectorMeasure(source VectorSource, cache *VectorCache, threshold float64, logger *slog.Logger) (*VectorMeasure, error) {
	if source == nil {
		return nil, tlerrors.NewConfigError("embedding.backend", "", errors.New("vector measure requires a vector source"))
	}
	if err := checkUnit("similarity.vector.threshold", threshold); err != nil {
		return nil, err
	}
	if cache == nil {
		cache = NewVectorCache(1, 1000)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &VectorMeasure{source: source, cache: cache, threshold: threshold, logger: logger}, nil
}

func (m *VectorMeasure) Name() string { return "vector" }

func (m *VectorMeasure) AreWordsSimilar(ctx ComparisonContext) bool {
	return m.Similarity(ctx) >= m.threshold
}

// Similarity is 0 when either term has no vector and NaN when a lookup failed
func (m *VectorMeasure) Similarity(ctx ComparisonContext) float64 {
	a, b := ctx.Lower()
	if a == b {
		return 1.0
	}
	va, okA, errA := m.lookup(a)
	vb, okB, errB := m.lookup(b)
	if err := errors.Join(errA, errB); err != nil {
		m.logger.Warn("vector lookup failed", "first", a, "second", b, "error", err)
		return math.NaN()
	}
	if !okA || !okB {
		return 0
	}
	// Opposite directions carry no similarity; scores stay within [0,1]
	sim := Cosine(va, vb)
	if sim < 0 {
		return 0
	}
	return sim
}

// lookup resolves a term through the cache. Multi-word terms without their own
// vector fall back to the mean of their word vectors.
func (m *VectorMeasure) lookup(term string) ([]float32, bool, error) {
	if vec, found, cached := m.cache.Get(term); cached {
		return vec, found, nil
	}

	vec, found, err := m.source.Vector(term)
	if err != nil {
		return nil, false, err
	}
	if !found && strings.Contains(term, " ") {
		vec, found, err = m.meanOfWords(strings.Fields(term))
		if err != nil {
			return nil, false, err
		}
	}

	m.cache.Put(term, vec, found)
	return vec, found, nil
}

func (m *VectorMeasure) meanOfWords(words []string) ([]float32, bool, error) {
	var sum []float32
	for _, w := range words {
		vec, found, err := m.lookup(w)
		if err != nil {
			return nil, false, err
		}
		if !found {
			return nil, false, nil
		}
		if sum == nil {
			sum = make([]float32, len(vec))
		}
		if len(vec) != len(sum) {
			return nil, false, nil
		}
		for i, x := range vec {
			sum[i] += x
		}
	}
	if sum == nil {
		return nil, false, nil
	}
	for i := range sum {
		sum[i] /= float32(len(words))
	}
	return sum, true, nil
}
