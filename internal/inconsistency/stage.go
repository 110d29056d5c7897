package inconsistency

import (
	"context"
	"errors"

	"github.com/standardbeagle/tracelink/internal/connect"
	"github.com/standardbeagle/tracelink/internal/recommend"
	"github.com/standardbeagle/tracelink/internal/types"
)

var errNoLinks = errors.New("no link set")

// State is the working data passed through the pipeline. Inputs are read-only;
// stages narrow Working, append to Dropped and append to Findings.
type State struct {
	Candidates []*recommend.Candidate
	Links      *connect.LinkSet
	Entities   []types.ModelEntity

	Working  []*recommend.Candidate
	Dropped  []Dropped
	Findings []Inconsistency
}

// Dropped records which stage removed a candidate from the working set
type Dropped struct {
	Candidate *recommend.Candidate
	Stage     string
}

// Stage is one filter or rule of the pipeline
type Stage interface {
	Name() string
	Apply(ctx context.Context, s *State) error
}

// retain keeps the working candidates for which keep is true and records the rest
func (s *State) retain(stage string, keep func(*recommend.Candidate) bool) {
	kept := s.Working[:0:0]
	for _, c := range s.Working {
		if keep(c) {
			kept = append(kept, c)
		} else {
			s.Dropped = append(s.Dropped, Dropped{Candidate: c, Stage: stage})
		}
	}
	s.Working = kept
}

// Seed copies every candidate into the working set
type Seed struct{}

func (Seed) Name() string { return "seed" }

func (Seed) Apply(_ context.Context, s *State) error {
	s.Working = append([]*recommend.Candidate(nil), s.Candidates...)
	return nil
}

// ProbabilityFilter drops candidates whose aggregated confidence is below Threshold
type ProbabilityFilter struct {
	Threshold float64
}

func (ProbabilityFilter) Name() string { return "probability" }

func (f ProbabilityFilter) Apply(_ context.Context, s *State) error {
	s.retain(f.Name(), func(c *recommend.Candidate) bool {
		return c.Confidence() >= f.Threshold
	})
	return nil
}

// ContextPredicate judges whether a candidate's supporting evidence is plausible
type ContextPredicate func(c *recommend.Candidate) bool

// MinOccurrences accepts candidates mentioned in at least n distinct sentences
func MinOccurrences(n int) ContextPredicate {
	return func(c *recommend.Candidate) bool {
		return len(c.Sentences()) >= n
	}
}

// OccasionFilter drops candidates failing Predicate
type OccasionFilter struct {
	Predicate ContextPredicate
}

func (OccasionFilter) Name() string { return "occasion" }

func (f OccasionFilter) Apply(_ context.Context, s *State) error {
	if f.Predicate == nil {
		return nil
	}
	s.retain(f.Name(), f.Predicate)
	return nil
}

// UnwantedWordsFilter drops candidates whose name matches the stoplist
type UnwantedWordsFilter struct {
	Stoplist *PatternSet
}

func (UnwantedWordsFilter) Name() string { return "unwanted-words" }

func (f UnwantedWordsFilter) Apply(_ context.Context, s *State) error {
	s.retain(f.Name(), func(c *recommend.Candidate) bool {
		return !f.Stoplist.MatchAny(c.Names())
	})
	return nil
}

// MissingModelElementRule reports surviving candidates that have no link
type MissingModelElementRule struct{}

func (MissingModelElementRule) Name() string { return "missing-model-element" }

func (MissingModelElementRule) Apply(ctx context.Context, s *State) error {
	if s.Links == nil {
		return errNoLinks
	}
	for _, c := range s.Working {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(s.Links.ForCandidate(c.ID)) == 0 {
			s.Findings = append(s.Findings, MissingModelElement{Candidate: c})
		}
	}
	return nil
}

// UndocumentedModelElementRule reports entities of a documented category that no
// surviving candidate links to, unless whitelisted by name
type UndocumentedModelElementRule struct {
	Categories map[types.Category]bool
	Whitelist  *PatternSet
}

func (UndocumentedModelElementRule) Name() string { return "undocumented-model-element" }

func (r UndocumentedModelElementRule) Apply(ctx context.Context, s *State) error {
	if s.Links == nil {
		return errNoLinks
	}
	surviving := make(map[recommend.CandidateID]bool, len(s.Working))
	for _, c := range s.Working {
		surviving[c.ID] = true
	}

	for _, e := range r.Candidates(s.Entities) {
		if err := ctx.Err(); err != nil {
			return err
		}
		documented := false
		for _, l := range s.Links.ForEntity(e.ID) {
			if surviving[l.Candidate.ID] {
				documented = true
				break
			}
		}
		if !documented {
			s.Findings = append(s.Findings, UndocumentedModelElement{Entity: e})
		}
	}
	return nil
}

// Candidates returns the entities this rule checks: a documented category and
// no whitelisted name
func (r UndocumentedModelElementRule) Candidates(entities []types.ModelEntity) []types.ModelEntity {
	var out []types.ModelEntity
	for _, e := range entities {
		if !r.Categories[e.Category] {
			continue
		}
		if r.Whitelist.MatchAny(e.Names) {
			continue
		}
		out = append(out, e)
	}
	return out
}
