package similarity

import (
	"math"
	"sort"
	"sync/atomic"
)

// MeasureStats counts how a measure behaved during a run
type MeasureStats struct {
	Name     string `json:"name"`
	Verdicts int64  `json:"verdicts"` // AreWordsSimilar calls
	Positive int64  `json:"positive"` // AreWordsSimilar calls returning true
	Scores   int64  `json:"scores"`   // Similarity calls
	NaN      int64  `json:"nan"`      // Similarity calls returning NaN
}

type measureCounters struct {
	verdicts atomic.Int64
	positive atomic.Int64
	scores   atomic.Int64
	nan      atomic.Int64
}

// Stats holds per-measure counters. The set of measures is fixed at engine
// construction, so the map is read-only afterwards and only counters mutate.
type Stats struct {
	order    []string
	counters map[string]*measureCounters
}

func newStats() *Stats {
	return &Stats{counters: make(map[string]*measureCounters)}
}

func (s *Stats) register(name string) *measureCounters {
	if c, ok := s.counters[name]; ok {
		return c
	}
	c := &measureCounters{}
	s.counters[name] = c
	s.order = append(s.order, name)
	return c
}

// Snapshot returns the counters in measure registration order
func (s *Stats) Snapshot() []MeasureStats {
	out := make([]MeasureStats, 0, len(s.order))
	for _, name := range s.order {
		c := s.counters[name]
		out = append(out, MeasureStats{
			Name:     name,
			Verdicts: c.verdicts.Load(),
			Positive: c.positive.Load(),
			Scores:   c.scores.Load(),
			NaN:      c.nan.Load(),
		})
	}
	return out
}

// countingMeasure records every evaluation of the wrapped measure
type countingMeasure struct {
	Measure
	counters *measureCounters
}

func (c countingMeasure) AreWordsSimilar(ctx ComparisonContext) bool {
	similar := c.Measure.AreWordsSimilar(ctx)
	c.counters.verdicts.Add(1)
	if similar {
		c.counters.positive.Add(1)
	}
	return similar
}

func (c countingMeasure) Similarity(ctx ComparisonContext) float64 {
	score := c.Measure.Similarity(ctx)
	c.counters.scores.Add(1)
	if math.IsNaN(score) {
		c.counters.nan.Add(1)
	}
	return score
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
