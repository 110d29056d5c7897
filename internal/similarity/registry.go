package similarity

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/standardbeagle/tracelink/internal/config"
	tlerrors "github.com/standardbeagle/tracelink/internal/errors"
)

// Dependencies are the collaborators a measure factory may need
type Dependencies struct {
	Vectors VectorSource
	Logger  *slog.Logger
}

// MeasureFactory builds a measure from the similarity configuration
type MeasureFactory func(cfg config.Similarity, deps Dependencies) (Measure, error)

var measureFactories = map[string]MeasureFactory{
	config.MeasureEquality: func(config.Similarity, Dependencies) (Measure, error) {
		return EqualityMeasure{}, nil
	},
	config.MeasureLevenshtein: func(cfg config.Similarity, _ Dependencies) (Measure, error) {
		return NewLevenshteinMeasure(cfg.Levenshtein.MinLength, cfg.Levenshtein.MaxDistance, cfg.Levenshtein.Threshold)
	},
	config.MeasureJaroWinkler: func(cfg config.Similarity, _ Dependencies) (Measure, error) {
		return NewJaroWinklerMeasure(cfg.JaroWinkler.Threshold)
	},
	config.MeasureNgram: func(cfg config.Similarity, _ Dependencies) (Measure, error) {
		return NewNgramMeasure(NgramVariant(cfg.Ngram.Variant), cfg.Ngram.N, cfg.Ngram.Threshold)
	},
	config.MeasureStem: func(cfg config.Similarity, _ Dependencies) (Measure, error) {
		return NewStemMeasure(cfg.Stem.MinLength)
	},
	config.MeasureEdlib: func(cfg config.Similarity, _ Dependencies) (Measure, error) {
		return NewEdlibMeasure(cfg.Edlib.Algorithm, cfg.Edlib.Threshold)
	},
	config.MeasureVector: func(cfg config.Similarity, deps Dependencies) (Measure, error) {
		cache := NewVectorCache(cfg.Vector.Shards, cfg.Vector.CacheSize)
		return NewVectorMeasure(deps.Vectors, cache, cfg.Vector.Threshold, deps.Logger)
	},
}

var comparisonStrategies = map[string]func() ComparisonStrategy{
	"at_least_one": func() ComparisonStrategy { return AtLeastOne{} },
	"majority":     func() ComparisonStrategy { return Majority{} },
}

var scoreStrategies = map[string]func() ScoreStrategy{
	"average": func() ScoreStrategy { return Average{} },
	"median":  func() ScoreStrategy { return Median{} },
	"maximum": func() ScoreStrategy { return Maximum{} },
}

// RegisteredMeasures lists the measure keys accepted in similarity.measures
func RegisteredMeasures() []string {
	return sortedKeys(measureFactories)
}

// RegisteredStrategies lists the keys accepted in similarity.strategy
func RegisteredStrategies() []string {
	keys := append(sortedKeys(comparisonStrategies), sortedKeys(scoreStrategies)...)
	return keys
}

func normalizeKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
}

// NewMeasure resolves a registry key and builds the measure
func NewMeasure(name string, cfg config.Similarity, deps Dependencies) (Measure, error) {
	factory, ok := measureFactories[normalizeKey(name)]
	if !ok {
		return nil, tlerrors.NewConfigError("similarity.measures", name,
			fmt.Errorf("unknown measure (known: %s)", strings.Join(RegisteredMeasures(), ", ")))
	}
	return factory(cfg, deps)
}

// NewComparisonStrategy resolves similarity.strategy. Score strategies are
// accepted too and give a verdict by comparing their score with scoreThreshold.
func NewComparisonStrategy(name string, scoreThreshold float64) (ComparisonStrategy, error) {
	key := normalizeKey(name)
	if ctor, ok := comparisonStrategies[key]; ok {
		return ctor(), nil
	}
	if ctor, ok := scoreStrategies[key]; ok {
		if err := checkUnit("similarity.score_threshold", scoreThreshold); err != nil {
			return nil, err
		}
		return thresholdStrategy{score: ctor(), threshold: scoreThreshold}, nil
	}
	return nil, tlerrors.NewConfigError("similarity.strategy", name,
		fmt.Errorf("unknown strategy (known: %s)", strings.Join(RegisteredStrategies(), ", ")))
}

// NewScoreStrategy resolves similarity.score_strategy
func NewScoreStrategy(name string) (ScoreStrategy, error) {
	if ctor, ok := scoreStrategies[normalizeKey(name)]; ok {
		return ctor(), nil
	}
	return nil, tlerrors.NewConfigError("similarity.score_strategy", name,
		fmt.Errorf("unknown score strategy (known: %s)", strings.Join(sortedKeys(scoreStrategies), ", ")))
}
