package connect

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/tracelink/internal/config"
	"github.com/standardbeagle/tracelink/internal/confidence"
	"github.com/standardbeagle/tracelink/internal/logging"
	"github.com/standardbeagle/tracelink/internal/recommend"
	"github.com/standardbeagle/tracelink/internal/types"
)

// Claimants contributed by the connection rules
const (
	ClaimantNameType     confidence.Claimant = "name-type"
	ClaimantCompoundName confidence.Claimant = "compound-name"
	ClaimantDiagramName  confidence.Claimant = "diagram-name"
)

// Matcher is the slice of the similarity engine the connector uses
type Matcher interface {
	recommend.TypeMatcher
	AreNamesSimilar(first, second string) bool
}

// Connector matches candidates against model entities
type Connector struct {
	matcher    Matcher
	cfg        config.Connection
	aggregator confidence.Aggregator
	logger     *slog.Logger
}

// Option customizes a Connector
type Option func(*Connector)

// WithLogger sets the connector logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Connector) { c.logger = l }
}

// New creates a connector, rejecting thresholds outside [0,1]
func New(matcher Matcher, cfg config.Connection, agg confidence.Aggregator, opts ...Option) (*Connector, error) {
	if err := config.CheckUnit("connection.name_threshold", cfg.NameThreshold); err != nil {
		return nil, err
	}
	if err := config.CheckUnit("connection.type_threshold", cfg.TypeThreshold); err != nil {
		return nil, err
	}
	c := &Connector{matcher: matcher, cfg: cfg, aggregator: agg}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.New("connect")
	}
	return c, nil
}

type proposal struct {
	entity   types.ModelEntity
	claimant confidence.Claimant
	score    float64
}

// Connect evaluates every (candidate, entity) pair and returns the link set.
// A candidate matching several entities keeps all of its links.
func (c *Connector) Connect(ctx context.Context, candidates []*recommend.Candidate, entities []types.ModelEntity) (*LinkSet, error) {
	results := make([][]proposal, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Workers(c.cfg.Workers))
	for i, cand := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = c.evaluate(cand, entities)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("connection: %w", err)
	}

	links := NewLinkSet(c.aggregator)
	for i, batch := range results {
		for _, p := range batch {
			links.Add(candidates[i], p.entity, p.claimant, p.score)
		}
	}

	c.logger.Debug("connection finished",
		"candidates", len(candidates),
		"entities", len(entities),
		"links", links.Len())
	return links, nil
}

// evaluate applies both rules to one candidate against all entities
func (c *Connector) evaluate(cand *recommend.Candidate, entities []types.ModelEntity) []proposal {
	var out []proposal
	for _, entity := range entities {
		typeScore := c.typeScore(cand, entity)
		if typeScore < c.cfg.TypeThreshold {
			continue
		}

		if nameScore := c.bestName(cand, entity, c.matcher.Similarity); nameScore >= c.cfg.NameThreshold {
			out = append(out, proposal{entity: entity, claimant: ClaimantNameType, score: min(nameScore, typeScore)})
		}
		if !c.compound(cand, entity) {
			continue
		}
		if !c.namesAgree(cand, entity) {
			continue
		}
		// The verdict alone is not enough: the score must clear the name threshold too
		if nameScore := c.bestName(cand, entity, c.matcher.NameSimilarity); nameScore >= c.cfg.NameThreshold {
			out = append(out, proposal{entity: entity, claimant: ClaimantCompoundName, score: min(nameScore, typeScore)})
		}
	}
	return out
}

// bestName is the highest score over all candidate/entity name variant pairs
func (c *Connector) bestName(cand *recommend.Candidate, entity types.ModelEntity, score func(a, b string) float64) float64 {
	best := 0.0
	for _, cn := range cand.Names() {
		for _, en := range entity.Names {
			best = max(best, score(cn, en))
		}
	}
	return best
}

// namesAgree asks the comparison strategy whether any pair of name variants
// is similar word by word
func (c *Connector) namesAgree(cand *recommend.Candidate, entity types.ModelEntity) bool {
	for _, cn := range cand.Names() {
		for _, en := range entity.Names {
			if c.matcher.AreNamesSimilar(cn, en) {
				return true
			}
		}
	}
	return false
}

// compound reports whether any name variant on either side splits into several words
func (c *Connector) compound(cand *recommend.Candidate, entity types.ModelEntity) bool {
	for _, names := range [][]string{cand.Names(), entity.Names} {
		for _, n := range names {
			if len(c.matcher.Split(n)) > 1 {
				return true
			}
		}
	}
	return false
}

// typeScore compares the candidate's type variants (and their head words) with
// the entity's types and category
func (c *Connector) typeScore(cand *recommend.Candidate, entity types.ModelEntity) float64 {
	best := 0.0
	for _, ct := range cand.Types() {
		words := c.matcher.Split(ct)
		for _, et := range entity.TypeVariants() {
			best = max(best, recommend.TypeSimilarity(c.matcher, ct, et))
			if len(words) > 1 {
				best = max(best, recommend.TypeSimilarity(c.matcher, words[len(words)-1], et))
			}
		}
	}
	return best
}
