package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/surgebase/porter2"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/tracelink/internal/config"
	"github.com/standardbeagle/tracelink/internal/confidence"
	tlerrors "github.com/standardbeagle/tracelink/internal/errors"
	"github.com/standardbeagle/tracelink/internal/logging"
	"github.com/standardbeagle/tracelink/internal/types"
)

// Claimants contributed by the recommendation rules
const (
	ClaimantNameType     confidence.Claimant = "name-type"
	ClaimantEmbeddedType confidence.Claimant = "embedded-type"
)

// TypeMatcher scores a text type word against a model type string
type TypeMatcher interface {
	Matcher
	Split(name string) []string
}

// Recommender creates candidate instances from paired name/type phrases
type Recommender struct {
	matcher    TypeMatcher
	cfg        config.Recommendation
	aggregator confidence.Aggregator
	logger     *slog.Logger
}

// Option customizes a Recommender
type Option func(*Recommender)

// WithLogger sets the recommender logger
func WithLogger(l *slog.Logger) Option {
	return func(r *Recommender) { r.logger = l }
}

// New creates a recommender. Thresholds outside [0,1] are rejected.
func New(matcher TypeMatcher, cfg config.Recommendation, agg confidence.Aggregator, opts ...Option) (*Recommender, error) {
	for field, v := range map[string]float64{
		"recommendation.type_threshold":  cfg.TypeThreshold,
		"recommendation.merge_threshold": cfg.MergeThreshold,
	} {
		if err := config.CheckUnit(field, v); err != nil {
			return nil, err
		}
	}
	r := &Recommender{matcher: matcher, cfg: cfg, aggregator: agg}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.New("recommend")
	}
	return r, nil
}

// typeMatch is the best vocabulary match for a text type word
type typeMatch struct {
	vocab string
	score float64
}

// matchType scores word against every vocabulary entry and returns the best one
// at or above the type threshold, so "component" matches "basic component"
func (r *Recommender) matchType(word string, vocabulary []string) (typeMatch, bool) {
	best := typeMatch{}
	found := false
	for _, v := range vocabulary {
		score := TypeSimilarity(r.matcher, word, v)
		if score >= r.cfg.TypeThreshold && (!found || score > best.score) {
			best = typeMatch{vocab: v, score: score}
			found = true
		}
	}
	return best, found
}

// TypeSimilarity scores a text type word against a model type string.
// Lexically equal words (ignoring case and inflection) score 1.0, and
// multi-word model types are also compared by their head word.
func TypeSimilarity(m TypeMatcher, word, vocab string) float64 {
	if lexicallyEqual(word, vocab) {
		return 1.0
	}
	score := m.Similarity(word, vocab)
	if words := m.Split(vocab); len(words) > 1 {
		head := words[len(words)-1]
		if lexicallyEqual(word, head) {
			return 1.0
		}
		score = max(score, m.Similarity(word, head))
	}
	return score
}

// lexicallyEqual compares case-insensitively after porter2 stemming
func lexicallyEqual(a, b string) bool {
	a, b = strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return true
	}
	if strings.ContainsRune(a, ' ') || strings.ContainsRune(b, ' ') {
		return false
	}
	return porter2.Stem(a) == porter2.Stem(b)
}

// Recommend runs every recommendation rule over doc and returns the
// consolidated candidate collection. Similarity is computed in parallel;
// proposals are inserted afterwards in document order.
func (r *Recommender) Recommend(ctx context.Context, doc *types.Document, vocabulary []string) (*Collection, error) {
	if doc == nil {
		return nil, tlerrors.NewInputError("document", nil)
	}
	if err := doc.Validate(); err != nil {
		return nil, tlerrors.NewInputError("document", err)
	}

	names, typePhrases := doc.Index()
	pairings := doc.Pairings
	results := make([][]Proposal, len(pairings)+len(doc.NamePhrases))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Workers(r.cfg.Workers))
	for i, pr := range pairings {
		name, typ := names[pr.Name], typePhrases[pr.Type]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.nameTypeRule(name, typ, vocabulary)
			return nil
		})
	}
	for i, np := range doc.NamePhrases {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[len(pairings)+i] = r.embeddedTypeRule(np, vocabulary)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("recommendation: %w", err)
	}

	collection := NewCollection(r.aggregator)
	proposals := 0
	for _, batch := range results {
		for _, p := range batch {
			collection.Add(p)
			proposals++
		}
	}
	created := collection.Len()
	merges := collection.Consolidate(r.matcher, r.cfg.MergeThreshold)

	r.logger.Debug("recommendation finished",
		"pairings", len(pairings),
		"proposals", proposals,
		"created", created,
		"merged", merges,
		"candidates", collection.Len())
	return collection, nil
}

// nameTypeRule proposes (name phrase, type phrase) when the type phrase's head
// matches the model type vocabulary
func (r *Recommender) nameTypeRule(name, typ types.Phrase, vocabulary []string) []Proposal {
	head := typ.Head()
	if head == "" || len(name.Words) == 0 {
		return nil
	}
	m, ok := r.matchType(head, vocabulary)
	if !ok {
		return nil
	}
	return []Proposal{{
		Name:     name.Text(),
		Type:     typ.Text(),
		Claimant: ClaimantNameType,
		Score:    m.score,
		Evidence: Evidence{Sentence: name.Sentence, NamePhrase: name.ID, TypePhrase: typ.ID},
	}}
}

// embeddedTypeRule splits a name phrase like "logging component" into name
// "logging" and type "component" when its last word is a model type
func (r *Recommender) embeddedTypeRule(name types.Phrase, vocabulary []string) []Proposal {
	if len(name.Words) < 2 {
		return nil
	}
	m, ok := r.matchType(name.Head(), vocabulary)
	if !ok {
		return nil
	}
	return []Proposal{{
		Name:     strings.Join(name.Words[:len(name.Words)-1], " "),
		Type:     name.Head(),
		Claimant: ClaimantEmbeddedType,
		Score:    m.score,
		Evidence: Evidence{Sentence: name.Sentence, NamePhrase: name.ID, TypePhrase: NoPhrase},
	}}
}
