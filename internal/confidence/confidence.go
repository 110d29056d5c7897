package confidence

import (
	"errors"
	"fmt"
	"math"
	"sort"

	tlerrors "github.com/standardbeagle/tracelink/internal/errors"
)

var errScoreRange = errors.New("score must be within [0,1]")

// Claimant names the algorithmic rule that contributed a score
type Claimant string

// Claim is one claimant's score for a fact
type Claim struct {
	Claimant Claimant `json:"claimant"`
	Score    float64  `json:"score"`
}

// Confidence holds at most one score per claimant for a single fact (a
// candidate instance or a link) and aggregates them on demand.
//
// Not safe for concurrent use; the owner of the fact serializes mutation.
type Confidence struct {
	aggregator Aggregator
	scores     map[Claimant]float64
}

// New creates an empty confidence using agg. A nil agg falls back to Max.
func New(agg Aggregator) *Confidence {
	if agg == nil {
		agg = Max
	}
	return &Confidence{aggregator: agg, scores: make(map[Claimant]float64)}
}

// AddClaim records a claimant's score. A second score from the same claimant
// returns a DuplicateEvidenceError naming fact; the stored score is unchanged.
func (c *Confidence) AddClaim(fact string, claimant Claimant, score float64) error {
	if err := checkScore(score); err != nil {
		return fmt.Errorf("claim from %s on %s: %w", claimant, fact, err)
	}
	if _, exists := c.scores[claimant]; exists {
		return tlerrors.NewDuplicateEvidenceError(fact, string(claimant))
	}
	c.scores[claimant] = score
	return nil
}

// Upsert records a score, keeping the higher value when the claimant already scored this fact
func (c *Confidence) Upsert(claimant Claimant, score float64) {
	if math.IsNaN(score) {
		return
	}
	score = clamp(score)
	if prev, exists := c.scores[claimant]; !exists || score > prev {
		c.scores[claimant] = score
	}
}

// Merge unions other into c. Shared claimants keep the higher score, so no
// claimant ever appears twice.
func (c *Confidence) Merge(other *Confidence) {
	if other == nil {
		return
	}
	for claimant, score := range other.scores {
		c.Upsert(claimant, score)
	}
}

// Has reports whether claimant already scored this fact
func (c *Confidence) Has(claimant Claimant) bool {
	_, ok := c.scores[claimant]
	return ok
}

// Score returns the claimant's score and whether it exists
func (c *Confidence) Score(claimant Claimant) (float64, bool) {
	s, ok := c.scores[claimant]
	return s, ok
}

// Value aggregates all claimant scores; 0 when there are none
func (c *Confidence) Value() float64 {
	values := make([]float64, 0, len(c.scores))
	for _, claimant := range c.sortedClaimants() {
		values = append(values, c.scores[claimant])
	}
	return c.aggregator.Aggregate(values)
}

// Len returns the number of claimants
func (c *Confidence) Len() int {
	return len(c.scores)
}

// Claimants returns the contributing claimants in name order
func (c *Confidence) Claimants() []Claimant {
	return c.sortedClaimants()
}

// Claims returns the claimant breakdown in name order
func (c *Confidence) Claims() []Claim {
	claims := make([]Claim, 0, len(c.scores))
	for _, claimant := range c.sortedClaimants() {
		claims = append(claims, Claim{Claimant: claimant, Score: c.scores[claimant]})
	}
	return claims
}

// Aggregator returns the aggregator in use
func (c *Confidence) Aggregator() Aggregator {
	return c.aggregator
}

// Clone returns an independent copy
func (c *Confidence) Clone() *Confidence {
	out := New(c.aggregator)
	for claimant, score := range c.scores {
		out.scores[claimant] = score
	}
	return out
}

func (c *Confidence) sortedClaimants() []Claimant {
	out := make([]Claimant, 0, len(c.scores))
	for claimant := range c.scores {
		out = append(out, claimant)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func checkScore(score float64) error {
	if math.IsNaN(score) || score < 0 || score > 1 {
		return fmt.Errorf("%w: %v", errScoreRange, score)
	}
	return nil
}

func clamp(score float64) float64 {
	return math.Max(0, math.Min(1, score))
}
