// Package analysis runs the recommendation, connection and inconsistency
// stages over one set of inputs.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/standardbeagle/tracelink/internal/config"
	"github.com/standardbeagle/tracelink/internal/confidence"
	"github.com/standardbeagle/tracelink/internal/connect"
	"github.com/standardbeagle/tracelink/internal/embedding"
	tlerrors "github.com/standardbeagle/tracelink/internal/errors"
	"github.com/standardbeagle/tracelink/internal/inconsistency"
	"github.com/standardbeagle/tracelink/internal/logging"
	"github.com/standardbeagle/tracelink/internal/recommend"
	"github.com/standardbeagle/tracelink/internal/similarity"
	"github.com/standardbeagle/tracelink/internal/types"
)

// Inputs are the artifacts of one run; Diagrams is optional
type Inputs struct {
	Document *types.Document
	Entities []types.ModelEntity
	Diagrams []types.DiagramElement
}

// State is everything a run produced. It is created by Run and never shared
// between runs.
type State struct {
	RunID    uuid.UUID
	Inputs   Inputs
	Started  time.Time
	Finished time.Time

	Vocabulary   []string
	Candidates   []*recommend.Candidate
	Links        *connect.LinkSet
	DiagramLinks []*connect.DiagramLink
	Detection    *inconsistency.State
	MeasureStats []similarity.MeasureStats
}

// Findings returns the inconsistencies of the run
func (s *State) Findings() []inconsistency.Inconsistency {
	if s.Detection == nil {
		return nil
	}
	return s.Detection.Findings
}

// Analyzer owns the engines built from one configuration
type Analyzer struct {
	cfg         *config.Config
	engine      *similarity.Engine
	recommender *recommend.Recommender
	connector   *connect.Connector
	detector    *inconsistency.Detector
	store       embedding.Store
	ownsStore   bool
	logger      *slog.Logger
}

// Option customizes an Analyzer
type Option func(*analyzerOptions)

type analyzerOptions struct {
	logger    *slog.Logger
	store     embedding.Store
	predicate inconsistency.ContextPredicate
}

// WithLogger sets the logger handed to every engine
func WithLogger(l *slog.Logger) Option {
	return func(o *analyzerOptions) { o.logger = l }
}

// WithEmbeddingStore supplies an already open store instead of opening the configured backend.
// The caller keeps ownership and closes it.
func WithEmbeddingStore(s embedding.Store) Option {
	return func(o *analyzerOptions) { o.store = s }
}

// WithContextPredicate replaces the occasion filter's default check
func WithContextPredicate(p inconsistency.ContextPredicate) Option {
	return func(o *analyzerOptions) { o.predicate = p }
}

// New validates cfg and builds every engine. Configuration problems fail here,
// before any input is read.
func New(cfg *config.Config, opts ...Option) (*Analyzer, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	o := analyzerOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.New("analysis")
	}

	agg, err := confidence.Parse(cfg.Confidence.Aggregator)
	if err != nil {
		return nil, err
	}

	a := &Analyzer{cfg: cfg, store: o.store, logger: o.logger}
	if a.store == nil {
		a.store, err = embedding.Open(cfg.Embedding, o.logger)
		if err != nil {
			return nil, err
		}
		a.ownsStore = a.store != nil
	}

	simOpts := []similarity.Option{similarity.WithLogger(o.logger)}
	if a.store != nil {
		simOpts = append(simOpts, similarity.WithVectorSource(a.store))
	}
	if a.engine, err = similarity.NewEngine(cfg.Similarity, simOpts...); err != nil {
		return nil, a.closeOnError(err)
	}
	if a.recommender, err = recommend.New(a.engine, cfg.Recommendation, agg, recommend.WithLogger(o.logger)); err != nil {
		return nil, a.closeOnError(err)
	}
	if a.connector, err = connect.New(a.engine, cfg.Connection, agg, connect.WithLogger(o.logger)); err != nil {
		return nil, a.closeOnError(err)
	}
	detOpts := []inconsistency.Option{inconsistency.WithLogger(o.logger)}
	if o.predicate != nil {
		detOpts = append(detOpts, inconsistency.WithContextPredicate(o.predicate))
	}
	if a.detector, err = inconsistency.NewDetector(cfg.Inconsistency, detOpts...); err != nil {
		return nil, a.closeOnError(err)
	}
	return a, nil
}

func (a *Analyzer) closeOnError(err error) error {
	if cerr := a.Close(); cerr != nil {
		return errors.Join(err, cerr)
	}
	return err
}

// Engine returns the similarity engine shared by all stages
func (a *Analyzer) Engine() *similarity.Engine {
	return a.engine
}

// Close releases the embedding store when the analyzer opened it
func (a *Analyzer) Close() error {
	if a.ownsStore && a.store != nil {
		a.ownsStore = false
		return a.store.Close()
	}
	return nil
}

// Run executes recommendation, connection, diagram linking and inconsistency
// detection. Missing inputs fail before any stage runs.
func (a *Analyzer) Run(ctx context.Context, in Inputs) (*State, error) {
	if in.Document.IsEmpty() {
		return nil, tlerrors.NewInputError("document", nil)
	}
	if len(in.Entities) == 0 {
		return nil, tlerrors.NewInputError("model", nil)
	}

	state := &State{RunID: uuid.New(), Inputs: in, Started: time.Now()}
	logger := a.logger.With("run_id", state.RunID.String())
	logger.Info("analysis started",
		"sentences", len(in.Document.Sentences),
		"entities", len(in.Entities),
		"diagram_elements", len(in.Diagrams))

	state.Vocabulary = types.TypeVocabulary(in.Entities)
	collection, err := a.recommender.Recommend(ctx, in.Document, state.Vocabulary)
	if err != nil {
		return nil, err
	}
	state.Candidates = collection.Candidates()

	if state.Links, err = a.connector.Connect(ctx, state.Candidates, in.Entities); err != nil {
		return nil, err
	}
	if len(in.Diagrams) > 0 {
		if state.DiagramLinks, err = a.connector.LinkDiagrams(ctx, in.Diagrams, in.Entities); err != nil {
			return nil, err
		}
	}
	if state.Detection, err = a.detector.Detect(ctx, state.Candidates, state.Links, in.Entities); err != nil {
		return nil, fmt.Errorf("inconsistency detection: %w", err)
	}

	state.MeasureStats = a.engine.Stats()
	state.Finished = time.Now()
	logger.Info("analysis finished",
		"candidates", len(state.Candidates),
		"links", state.Links.Len(),
		"diagram_links", len(state.DiagramLinks),
		"findings", len(state.Findings()),
		"duration", state.Finished.Sub(state.Started))
	return state, nil
}
