package similarity

import (
	"errors"
	"log/slog"
	"math"

	"github.com/standardbeagle/tracelink/internal/config"
	tlerrors "github.com/standardbeagle/tracelink/internal/errors"
	"github.com/standardbeagle/tracelink/internal/logging"
)

// Engine bundles the configured measures with a comparison strategy and a score
// strategy. One Engine is built per run and shared by all stages; it is safe
// for concurrent use.
type Engine struct {
	measures   []Measure
	comparison ComparisonStrategy
	score      ScoreStrategy
	charMatch  CharMatchFunc
	splitter   *NameSplitter
	stats      *Stats
	logger     *slog.Logger
}

// Option customizes engine construction
type Option func(*engineOptions)

type engineOptions struct {
	vectors  VectorSource
	logger   *slog.Logger
	measures []Measure
}

// WithVectorSource supplies the embedding store used by the vector measure
func WithVectorSource(src VectorSource) Option {
	return func(o *engineOptions) { o.vectors = src }
}

// WithLogger sets the engine logger
func WithLogger(l *slog.Logger) Option {
	return func(o *engineOptions) { o.logger = l }
}

// WithMeasures replaces the registry-built measure list
func WithMeasures(measures ...Measure) Option {
	return func(o *engineOptions) { o.measures = measures }
}

// NewEngine resolves every configured measure and strategy, failing fast on
// unknown keys or invalid parameters
func NewEngine(cfg config.Similarity, opts ...Option) (*Engine, error) {
	o := engineOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.New("similarity")
	}

	measures := o.measures
	if measures == nil {
		deps := Dependencies{Vectors: o.vectors, Logger: o.logger}
		for _, name := range cfg.Measures {
			m, err := NewMeasure(name, cfg, deps)
			if err != nil {
				return nil, err
			}
			measures = append(measures, m)
		}
	}
	if len(measures) == 0 {
		return nil, tlerrors.NewConfigError("similarity.measures", "", errors.New("at least one measure is required"))
	}

	comparison, err := NewComparisonStrategy(cfg.Strategy, cfg.ScoreThreshold)
	if err != nil {
		return nil, err
	}
	scoreName := cfg.ScoreStrategy
	if scoreName == "" {
		scoreName = "maximum"
	}
	score, err := NewScoreStrategy(scoreName)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		comparison: comparison,
		score:      score,
		splitter:   NewNameSplitter(),
		stats:      newStats(),
		logger:     o.logger,
	}
	if cfg.Homoglyphs {
		e.charMatch = EqualOrHomoglyph
	}
	for _, m := range measures {
		e.measures = append(e.measures, countingMeasure{Measure: m, counters: e.stats.register(m.Name())})
	}

	e.logger.Debug("similarity engine ready",
		"measures", len(e.measures),
		"strategy", comparison.Name(),
		"score_strategy", score.Name(),
		"homoglyphs", cfg.Homoglyphs)
	return e, nil
}

// Context creates a comparison context using the engine's character equivalence
func (e *Engine) Context(first, second string) ComparisonContext {
	return NewContext(first, second).WithCharMatch(e.charMatch)
}

// AreSimilar applies the comparison strategy to ctx
func (e *Engine) AreSimilar(ctx ComparisonContext) bool {
	return e.comparison.AreSimilar(ctx, e.measures)
}

// Score applies the score strategy to ctx
func (e *Engine) Score(ctx ComparisonContext) float64 {
	return e.score.Score(ctx, e.measures)
}

// AreWordsSimilar compares two terms with the comparison strategy
func (e *Engine) AreWordsSimilar(first, second string) bool {
	return e.AreSimilar(e.Context(first, second))
}

// Similarity scores two terms with the score strategy
func (e *Engine) Similarity(first, second string) float64 {
	return e.Score(e.Context(first, second))
}

// AreNamesSimilar compares compound names: directly, then with separators and
// case boundaries removed ("WebUI" vs "web ui"), then word by word when both
// split into the same number of words
func (e *Engine) AreNamesSimilar(first, second string) bool {
	if e.AreWordsSimilar(first, second) {
		return true
	}
	wordsA, wordsB := e.splitter.Split(first), e.splitter.Split(second)
	if len(wordsA) <= 1 && len(wordsB) <= 1 {
		return false
	}
	if e.AreWordsSimilar(e.splitter.Joined(first), e.splitter.Joined(second)) {
		return true
	}
	if len(wordsA) != len(wordsB) {
		return false
	}
	for i := range wordsA {
		if !e.AreWordsSimilar(wordsA[i], wordsB[i]) {
			return false
		}
	}
	return true
}

// NameSimilarity is the score counterpart of AreNamesSimilar: the best of the
// direct score, the joined-words score and the mean word-by-word score
func (e *Engine) NameSimilarity(first, second string) float64 {
	best := e.Similarity(first, second)
	wordsA, wordsB := e.splitter.Split(first), e.splitter.Split(second)
	if len(wordsA) <= 1 && len(wordsB) <= 1 {
		return best
	}
	best = math.Max(best, e.Similarity(e.splitter.Joined(first), e.splitter.Joined(second)))
	if len(wordsA) == len(wordsB) {
		sum := 0.0
		for i := range wordsA {
			sum += e.Similarity(wordsA[i], wordsB[i])
		}
		best = math.Max(best, sum/float64(len(wordsA)))
	}
	return best
}

// Split exposes the engine's name splitter
func (e *Engine) Split(name string) []string {
	return e.splitter.Split(name)
}

// Measures returns the names of the configured measures in evaluation order
func (e *Engine) Measures() []string {
	names := make([]string, len(e.measures))
	for i, m := range e.measures {
		names[i] = m.Name()
	}
	return names
}

// Stats returns a snapshot of per-measure evaluation counters
func (e *Engine) Stats() []MeasureStats {
	return e.stats.Snapshot()
}
