package confidence

import (
	"fmt"
	"sort"
	"strings"

	tlerrors "github.com/standardbeagle/tracelink/internal/errors"
)

// Aggregator folds the scores of independent claimants into one value.
// Implementations must return 0 for an empty input.
type Aggregator interface {
	Name() string
	Aggregate(scores []float64) float64
}

// AggregatorFunc adapts a plain function to the Aggregator interface
type AggregatorFunc struct {
	name string
	fn   func([]float64) float64
}

func (a AggregatorFunc) Name() string { return a.name }

func (a AggregatorFunc) Aggregate(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	return a.fn(scores)
}

var (
	Median   Aggregator = AggregatorFunc{name: "median", fn: median}
	Harmonic Aggregator = AggregatorFunc{name: "harmonic", fn: harmonic}
	Average  Aggregator = AggregatorFunc{name: "average", fn: average}
	Max      Aggregator = AggregatorFunc{name: "max", fn: maximum}
	Min      Aggregator = AggregatorFunc{name: "min", fn: minimum}
)

var registry = map[string]Aggregator{
	Median.Name():   Median,
	Harmonic.Name(): Harmonic,
	Average.Name():  Average,
	Max.Name():      Max,
	Min.Name():      Min,
}

// Names lists the registered aggregator keys
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parse resolves confidence.aggregator. Lookup is case-insensitive.
func Parse(name string) (Aggregator, error) {
	if agg, ok := registry[strings.ToLower(strings.TrimSpace(name))]; ok {
		return agg, nil
	}
	return nil, tlerrors.NewConfigError("confidence.aggregator", name,
		fmt.Errorf("unknown aggregator (known: %s)", strings.Join(Names(), ", ")))
}

func median(scores []float64) float64 {
	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// harmonic is count / sum(1/score). A zero score drives the mean to 0.
func harmonic(scores []float64) float64 {
	sum := 0.0
	for _, s := range scores {
		if s == 0 {
			return 0
		}
		sum += 1 / s
	}
	return float64(len(scores)) / sum
}

func average(scores []float64) float64 {
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

func maximum(scores []float64) float64 {
	best := scores[0]
	for _, s := range scores[1:] {
		best = max(best, s)
	}
	return best
}

func minimum(scores []float64) float64 {
	worst := scores[0]
	for _, s := range scores[1:] {
		worst = min(worst, s)
	}
	return worst
}
