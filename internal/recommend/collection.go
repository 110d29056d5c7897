package recommend

import (
	"sort"
	"sync"

	"github.com/standardbeagle/tracelink/internal/confidence"
)

// Matcher is the slice of the similarity engine used for merging
type Matcher interface {
	NameSimilarity(first, second string) float64
	Similarity(first, second string) float64
}

// Proposal is one rule's suggestion for a candidate
type Proposal struct {
	Name     string
	Type     string
	Claimant confidence.Claimant
	Score    float64
	Evidence Evidence
}

type candidateKey struct {
	name string
	typ  string
}

// Collection is the run's candidate set. Mutations are serialized by an
// internal lock; readers receive snapshots ordered by candidate id.
type Collection struct {
	mu         sync.Mutex
	aggregator confidence.Aggregator
	candidates map[CandidateID]*Candidate
	byKey      map[candidateKey]CandidateID
	nextID     CandidateID
}

// NewCollection creates an empty collection whose candidates aggregate with agg
func NewCollection(agg confidence.Aggregator) *Collection {
	return &Collection{
		aggregator: agg,
		candidates: make(map[CandidateID]*Candidate),
		byKey:      make(map[candidateKey]CandidateID),
	}
}

// Add creates the candidate for the proposal's exact name/type pair, or extends
// the existing one with the proposal's claim and evidence
func (c *Collection) Add(p Proposal) *Candidate {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := candidateKey{name: normalize(p.Name), typ: normalize(p.Type)}
	if id, ok := c.byKey[key]; ok {
		cand := c.candidates[id]
		cand.Extend(p.Claimant, p.Score, p.Evidence)
		return cand
	}

	c.nextID++
	cand := NewCandidate(c.nextID, key.name, key.typ, c.aggregator)
	cand.Extend(p.Claimant, p.Score, p.Evidence)
	c.candidates[cand.ID] = cand
	c.byKey[key] = cand.ID
	return cand
}

// Mergeable reports whether two candidates denote the same entity: their names
// are similar at threshold. Types do not block a merge; the survivor keeps the
// type variants of both.
func Mergeable(m Matcher, a, b *Candidate, threshold float64) bool {
	return m.NameSimilarity(a.Name, b.Name) >= threshold
}

// Consolidate merges mergeable candidates in one ordered pass. Each survivor is
// compared with every later candidate still alive, so a candidate is absorbed by
// the lowest-id candidate it is mergeable with. Returns the number of merges.
func (c *Collection) Consolidate(m Matcher, threshold float64) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	ordered := c.orderedLocked()
	survivor := make(map[CandidateID]CandidateID)
	for i, a := range ordered {
		if _, gone := survivor[a.ID]; gone {
			continue
		}
		for _, b := range ordered[i+1:] {
			if _, gone := survivor[b.ID]; gone {
				continue
			}
			if !Mergeable(m, a, b, threshold) {
				continue
			}
			a.Absorb(b)
			delete(c.candidates, b.ID)
			survivor[b.ID] = a.ID
		}
	}

	if len(survivor) > 0 {
		for key, id := range c.byKey {
			if to, ok := survivor[id]; ok {
				c.byKey[key] = to
			}
		}
	}
	return len(survivor)
}

// Get returns a candidate by id
func (c *Collection) Get(id CandidateID) (*Candidate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cand, ok := c.candidates[id]
	return cand, ok
}

// Candidates returns all candidates ordered by id
func (c *Collection) Candidates() []*Candidate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orderedLocked()
}

// Len returns the number of candidates
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.candidates)
}

func (c *Collection) orderedLocked() []*Candidate {
	out := make([]*Candidate, 0, len(c.candidates))
	for _, cand := range c.candidates {
		out = append(out, cand)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
