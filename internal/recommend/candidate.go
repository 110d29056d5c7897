// Package recommend turns text evidence into candidate model-entity matches.
package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/standardbeagle/tracelink/internal/confidence"
	"github.com/standardbeagle/tracelink/internal/types"
)

// CandidateID identifies a candidate within one run
type CandidateID int

// NoPhrase marks evidence without a separate type phrase (embedded types)
const NoPhrase types.PhraseID = -1

// Evidence is one text fragment supporting a candidate
type Evidence struct {
	Sentence   int            `json:"sentence"`
	NamePhrase types.PhraseID `json:"name_phrase"`
	TypePhrase types.PhraseID `json:"type_phrase"`
}

// Candidate is a text-derived hypothesis that a name/type pair refers to a
// model entity. Evidence and claims are only ever added.
type Candidate struct {
	ID   CandidateID
	Name string
	Type string

	names      []string
	types      []string
	confidence *confidence.Confidence
	evidence   map[Evidence]struct{}
}

// NewCandidate creates a candidate with no claims
func NewCandidate(id CandidateID, name, typ string, agg confidence.Aggregator) *Candidate {
	c := &Candidate{
		ID:         id,
		Name:       name,
		Type:       typ,
		confidence: confidence.New(agg),
		evidence:   make(map[Evidence]struct{}),
	}
	c.names = appendVariant(c.names, name)
	c.types = appendVariant(c.types, typ)
	return c
}

// Fact is the key used in duplicate-evidence errors
func (c *Candidate) Fact() string {
	return fmt.Sprintf("candidate %d (%s/%s)", c.ID, c.Name, c.Type)
}

// AddClaim records a claimant's score, failing on a second score from the same claimant
func (c *Candidate) AddClaim(claimant confidence.Claimant, score float64) error {
	return c.confidence.AddClaim(c.Fact(), claimant, score)
}

// Extend attaches more evidence from a claimant that may already have scored
// this candidate; the higher score is kept
func (c *Candidate) Extend(claimant confidence.Claimant, score float64, ev Evidence) {
	c.confidence.Upsert(claimant, score)
	c.evidence[ev] = struct{}{}
}

// AddEvidence attaches a supporting text fragment
func (c *Candidate) AddEvidence(ev Evidence) {
	c.evidence[ev] = struct{}{}
}

// Absorb merges other into c: name and type variants, evidence and claims are
// unioned, and a claimant present on both keeps its higher score
func (c *Candidate) Absorb(other *Candidate) {
	for _, n := range other.names {
		c.names = appendVariant(c.names, n)
	}
	for _, t := range other.types {
		c.types = appendVariant(c.types, t)
	}
	if c.Type == "" {
		c.Type = other.Type
	}
	for ev := range other.evidence {
		c.evidence[ev] = struct{}{}
	}
	c.confidence.Merge(other.confidence)
}

// Confidence returns the aggregated confidence
func (c *Candidate) Confidence() float64 {
	return c.confidence.Value()
}

// Claims returns the claimant breakdown
func (c *Candidate) Claims() []confidence.Claim {
	return c.confidence.Claims()
}

// Claimants returns the contributing claimants
func (c *Candidate) Claimants() []confidence.Claimant {
	return c.confidence.Claimants()
}

// Names returns every name variant merged into this candidate, primary first
func (c *Candidate) Names() []string {
	return append([]string(nil), c.names...)
}

// Types returns every type variant merged into this candidate, primary first
func (c *Candidate) Types() []string {
	return append([]string(nil), c.types...)
}

// Evidence returns the supporting fragments ordered by sentence, then phrase
func (c *Candidate) Evidence() []Evidence {
	out := make([]Evidence, 0, len(c.evidence))
	for ev := range c.evidence {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sentence != out[j].Sentence {
			return out[i].Sentence < out[j].Sentence
		}
		if out[i].NamePhrase != out[j].NamePhrase {
			return out[i].NamePhrase < out[j].NamePhrase
		}
		return out[i].TypePhrase < out[j].TypePhrase
	})
	return out
}

// Sentences returns the distinct sentence numbers in ascending order
func (c *Candidate) Sentences() []int {
	seen := make(map[int]bool)
	var out []int
	for ev := range c.evidence {
		if !seen[ev.Sentence] {
			seen[ev.Sentence] = true
			out = append(out, ev.Sentence)
		}
	}
	sort.Ints(out)
	return out
}

func (c *Candidate) String() string {
	return fmt.Sprintf("%d:%s/%s(%.2f)", c.ID, c.Name, c.Type, c.Confidence())
}

func appendVariant(list []string, v string) []string {
	if v == "" {
		return list
	}
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
