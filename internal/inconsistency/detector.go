package inconsistency

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/standardbeagle/tracelink/internal/config"
	"github.com/standardbeagle/tracelink/internal/connect"
	"github.com/standardbeagle/tracelink/internal/logging"
	"github.com/standardbeagle/tracelink/internal/recommend"
	"github.com/standardbeagle/tracelink/internal/types"
)

// Detector runs the inconsistency pipeline in a fixed order:
// seed, probability, occasion, unwanted words, missing elements, undocumented elements.
type Detector struct {
	stages []Stage
	logger *slog.Logger
}

// Option customizes a Detector
type Option func(*detectorOptions)

type detectorOptions struct {
	logger    *slog.Logger
	predicate ContextPredicate
}

// WithLogger sets the detector logger
func WithLogger(l *slog.Logger) Option {
	return func(o *detectorOptions) { o.logger = l }
}

// WithContextPredicate replaces the occasion filter's default MinOccurrences check
func WithContextPredicate(p ContextPredicate) Option {
	return func(o *detectorOptions) { o.predicate = p }
}

// NewDetector builds the pipeline from configuration. Invalid stoplist or
// whitelist patterns fail here.
func NewDetector(cfg config.Inconsistency, opts ...Option) (*Detector, error) {
	o := detectorOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.New("inconsistency")
	}
	if o.predicate == nil {
		o.predicate = MinOccurrences(cfg.MinOccurrences)
	}

	stoplist, err := NewPatternSet("inconsistency.stoplist", cfg.Stoplist, true)
	if err != nil {
		return nil, err
	}
	whitelist, err := NewPatternSet("inconsistency.whitelist", cfg.Whitelist, false)
	if err != nil {
		return nil, err
	}
	categories := make(map[types.Category]bool, len(cfg.DocumentCategories))
	for _, c := range cfg.DocumentCategories {
		categories[types.ParseCategory(c)] = true
	}

	return &Detector{
		stages: []Stage{
			Seed{},
			ProbabilityFilter{Threshold: cfg.ProbabilityThreshold},
			OccasionFilter{Predicate: o.predicate},
			UnwantedWordsFilter{Stoplist: stoplist},
			MissingModelElementRule{},
			UndocumentedModelElementRule{Categories: categories, Whitelist: whitelist},
		},
		logger: o.logger,
	}, nil
}

// Stages returns the pipeline stage names in execution order
func (d *Detector) Stages() []string {
	names := make([]string, len(d.stages))
	for i, s := range d.stages {
		names[i] = s.Name()
	}
	return names
}

// Detect runs every stage. An error aborts the remaining stages.
func (d *Detector) Detect(ctx context.Context, candidates []*recommend.Candidate, links *connect.LinkSet, entities []types.ModelEntity) (*State, error) {
	s := &State{Candidates: candidates, Links: links, Entities: entities}
	for _, stage := range d.stages {
		before, findings := len(s.Working), len(s.Findings)
		if err := stage.Apply(ctx, s); err != nil {
			return nil, fmt.Errorf("inconsistency stage %s: %w", stage.Name(), err)
		}
		d.logger.Debug("stage finished",
			"stage", stage.Name(),
			"working_before", before,
			"working_after", len(s.Working),
			"new_findings", len(s.Findings)-findings)
	}
	return s, nil
}
