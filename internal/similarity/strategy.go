package similarity

import (
	"math"
	"sort"
)

// ComparisonStrategy combines the verdicts of several measures into one
type ComparisonStrategy interface {
	Name() string
	AreSimilar(ctx ComparisonContext, measures []Measure) bool
}

// ScoreStrategy combines the scores of several measures into one
type ScoreStrategy interface {
	Name() string
	Score(ctx ComparisonContext, measures []Measure) float64
}

// AtLeastOne is true iff any measure is true.
// Every measure is evaluated even after the first hit so that per-measure
// statistics cover the whole measure set on every comparison.
type AtLeastOne struct{}

func (AtLeastOne) Name() string { return "at_least_one" }

func (AtLeastOne) AreSimilar(ctx ComparisonContext, measures []Measure) bool {
	similar := false
	for _, m := range measures {
		if m.AreWordsSimilar(ctx) {
			similar = true
		}
	}
	return similar
}

// Majority is true iff more than half of the measures are true. All measures are evaluated.
type Majority struct{}

func (Majority) Name() string { return "majority" }

func (Majority) AreSimilar(ctx ComparisonContext, measures []Measure) bool {
	agree := 0
	for _, m := range measures {
		if m.AreWordsSimilar(ctx) {
			agree++
		}
	}
	return agree > len(measures)/2
}

// scores collects the non-NaN scores of all measures
func scores(ctx ComparisonContext, measures []Measure) []float64 {
	out := make([]float64, 0, len(measures))
	for _, m := range measures {
		if s := m.Similarity(ctx); !math.IsNaN(s) {
			out = append(out, s)
		}
	}
	return out
}

// Average is the mean of the non-NaN scores, 0 when there are none
type Average struct{}

func (Average) Name() string { return "average" }

func (Average) Score(ctx ComparisonContext, measures []Measure) float64 {
	values := scores(ctx, measures)
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Median is the median of the non-NaN scores, 0 when there are none
type Median struct{}

func (Median) Name() string { return "median" }

func (Median) Score(ctx ComparisonContext, measures []Measure) float64 {
	values := scores(ctx, measures)
	if len(values) == 0 {
		return 0
	}
	sort.Float64s(values)
	mid := len(values) / 2
	if len(values)%2 == 0 {
		return (values[mid-1] + values[mid]) / 2
	}
	return values[mid]
}

// Maximum is the largest non-NaN score, 0 when there are none
type Maximum struct{}

func (Maximum) Name() string { return "maximum" }

func (Maximum) Score(ctx ComparisonContext, measures []Measure) float64 {
	values := scores(ctx, measures)
	best := 0.0
	for _, v := range values {
		if v > best {
			best = v
		}
	}
	return best
}

// thresholdStrategy turns a score strategy into a verdict: similar iff score >= threshold
type thresholdStrategy struct {
	score     ScoreStrategy
	threshold float64
}

func (t thresholdStrategy) Name() string { return t.score.Name() }

func (t thresholdStrategy) AreSimilar(ctx ComparisonContext, measures []Measure) bool {
	return t.score.Score(ctx, measures) >= t.threshold
}
