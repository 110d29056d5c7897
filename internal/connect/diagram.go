package connect

import (
	"context"
	"fmt"
	"sort"

	"github.com/standardbeagle/tracelink/internal/confidence"
	"github.com/standardbeagle/tracelink/internal/types"
)

// DiagramLink connects a diagram element to a model entity
type DiagramLink struct {
	Element    types.DiagramElement
	Entity     types.ModelEntity
	confidence *confidence.Confidence
}

// Confidence aggregates the claimants that proposed this pair
func (d *DiagramLink) Confidence() float64 {
	return d.confidence.Value()
}

// Claims returns the claimant breakdown
func (d *DiagramLink) Claims() []confidence.Claim {
	return d.confidence.Claims()
}

func (d *DiagramLink) String() string {
	return fmt.Sprintf("%s/%s -> %s (%.2f)", d.Element.Diagram, d.Element.ID, d.Entity.ID, d.Confidence())
}

type diagramKey struct {
	diagram string
	element string
	entity  types.EntityID
}

// LinkDiagrams links each diagram element to every entity whose name is similar
// to one of the element's labels. Links are ordered by diagram, element and entity.
func (c *Connector) LinkDiagrams(ctx context.Context, elements []types.DiagramElement, entities []types.ModelEntity) ([]*DiagramLink, error) {
	links := make(map[diagramKey]*DiagramLink)
	for _, el := range elements {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("diagram linking: %w", err)
		}
		for _, entity := range entities {
			score := 0.0
			for _, label := range el.Labels() {
				for _, name := range entity.Names {
					score = max(score, c.matcher.NameSimilarity(label, name))
				}
			}
			if score < c.cfg.NameThreshold {
				continue
			}
			key := diagramKey{diagram: el.Diagram, element: el.ID, entity: entity.ID}
			link, ok := links[key]
			if !ok {
				link = &DiagramLink{Element: el, Entity: entity, confidence: confidence.New(c.aggregator)}
				links[key] = link
			}
			link.confidence.Upsert(ClaimantDiagramName, score)
		}
	}

	out := make([]*DiagramLink, 0, len(links))
	for _, l := range links {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Element.Diagram != b.Element.Diagram {
			return a.Element.Diagram < b.Element.Diagram
		}
		if a.Element.ID != b.Element.ID {
			return a.Element.ID < b.Element.ID
		}
		return a.Entity.ID < b.Entity.ID
	})

	c.logger.Debug("diagram linking finished", "elements", len(elements), "links", len(out))
	return out, nil
}
