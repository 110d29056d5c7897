// Package connect links candidate instances and diagram elements to model entities.
package connect

import (
	"fmt"
	"sort"
	"sync"

	"github.com/standardbeagle/tracelink/internal/confidence"
	tlerrors "github.com/standardbeagle/tracelink/internal/errors"
	"github.com/standardbeagle/tracelink/internal/recommend"
	"github.com/standardbeagle/tracelink/internal/types"
)

// LinkKey is the identity of a link: one candidate, one model entity
type LinkKey struct {
	Candidate recommend.CandidateID
	Entity    types.EntityID
}

func (k LinkKey) String() string {
	return fmt.Sprintf("link %d->%s", k.Candidate, k.Entity)
}

// Link is a trace link between a candidate instance and a model entity
type Link struct {
	Candidate  *recommend.Candidate
	Entity     types.ModelEntity
	confidence *confidence.Confidence
}

// Key returns the link identity
func (l *Link) Key() LinkKey {
	return LinkKey{Candidate: l.Candidate.ID, Entity: l.Entity.ID}
}

// Confidence aggregates the claimants that proposed this pair
func (l *Link) Confidence() float64 {
	return l.confidence.Value()
}

// Claims returns the claimant breakdown
func (l *Link) Claims() []confidence.Claim {
	return l.confidence.Claims()
}

// Claimants returns the rules that proposed this pair
func (l *Link) Claimants() []confidence.Claimant {
	return l.confidence.Claimants()
}

func (l *Link) String() string {
	return fmt.Sprintf("%s -> %s (%.2f)", l.Candidate.Name, l.Entity.ID, l.Confidence())
}

// LinkSet holds at most one link per (candidate, entity) pair. Safe for concurrent use.
type LinkSet struct {
	mu         sync.RWMutex
	aggregator confidence.Aggregator
	links      map[LinkKey]*Link
}

// NewLinkSet creates an empty set whose links aggregate with agg
func NewLinkSet(agg confidence.Aggregator) *LinkSet {
	return &LinkSet{aggregator: agg, links: make(map[LinkKey]*Link)}
}

// Add creates the link for (candidate, entity) or merges the claim into the
// existing one. A claimant scoring the same pair again keeps its higher score.
func (s *LinkSet) Add(cand *recommend.Candidate, entity types.ModelEntity, claimant confidence.Claimant, score float64) *Link {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := LinkKey{Candidate: cand.ID, Entity: entity.ID}
	link, ok := s.links[key]
	if !ok {
		link = &Link{Candidate: cand, Entity: entity, confidence: confidence.New(s.aggregator)}
		s.links[key] = link
	}
	link.confidence.Upsert(claimant, score)
	return link
}

// Insert creates a new link and fails with a DuplicateEvidenceError when the
// pair is already linked. Callers that may revisit a pair use Add.
func (s *LinkSet) Insert(cand *recommend.Candidate, entity types.ModelEntity, claimant confidence.Claimant, score float64) (*Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := LinkKey{Candidate: cand.ID, Entity: entity.ID}
	if _, ok := s.links[key]; ok {
		return nil, tlerrors.NewDuplicateEvidenceError(key.String(), string(claimant))
	}
	link := &Link{Candidate: cand, Entity: entity, confidence: confidence.New(s.aggregator)}
	if err := link.confidence.AddClaim(key.String(), claimant, score); err != nil {
		return nil, err
	}
	s.links[key] = link
	return link, nil
}

// Get returns the link for a pair
func (s *LinkSet) Get(cand recommend.CandidateID, entity types.EntityID) (*Link, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	link, ok := s.links[LinkKey{Candidate: cand, Entity: entity}]
	return link, ok
}

// Len returns the number of links
func (s *LinkSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.links)
}

// Links returns every link ordered by candidate id, then entity id
func (s *LinkSet) Links() []*Link {
	return s.filter(func(*Link) bool { return true })
}

// ForCandidate returns the links of one candidate
func (s *LinkSet) ForCandidate(id recommend.CandidateID) []*Link {
	return s.filter(func(l *Link) bool { return l.Candidate.ID == id })
}

// ForEntity returns the links pointing at one model entity
func (s *LinkSet) ForEntity(id types.EntityID) []*Link {
	return s.filter(func(l *Link) bool { return l.Entity.ID == id })
}

func (s *LinkSet) filter(keep func(*Link) bool) []*Link {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Link, 0, len(s.links))
	for _, l := range s.links {
		if keep(l) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Key(), out[j].Key()
		if a.Candidate != b.Candidate {
			return a.Candidate < b.Candidate
		}
		return a.Entity < b.Entity
	})
	return out
}
