package analysis

import (
	"github.com/standardbeagle/tracelink/internal/confidence"
	"github.com/standardbeagle/tracelink/internal/similarity"
)

// Report is the serializable view of a State
type Report struct {
	RunID        string                    `json:"run_id"`
	Candidates   []CandidateReport         `json:"candidates"`
	Links        []LinkReport              `json:"links"`
	DiagramLinks []DiagramLinkReport       `json:"diagram_links,omitempty"`
	Findings     []FindingReport           `json:"findings"`
	Measures     []similarity.MeasureStats `json:"measures"`
}

type CandidateReport struct {
	ID         int                `json:"id"`
	Name       string             `json:"name"`
	Type       string             `json:"type"`
	Names      []string           `json:"names"`
	Confidence float64            `json:"confidence"`
	Claims     []confidence.Claim `json:"claims"`
	Sentences  []int              `json:"sentences"`
}

type LinkReport struct {
	Candidate  int                `json:"candidate"`
	Entity     string             `json:"entity"`
	EntityName string             `json:"entity_name"`
	Confidence float64            `json:"confidence"`
	Claims     []confidence.Claim `json:"claims"`
}

type DiagramLinkReport struct {
	Diagram    string  `json:"diagram"`
	Element    string  `json:"element"`
	Entity     string  `json:"entity"`
	Confidence float64 `json:"confidence"`
}

type FindingReport struct {
	Kind   string   `json:"kind"`
	Reason string   `json:"reason"`
	Output []string `json:"output"`
}

// Report converts the state into plain values
func (s *State) Report() Report {
	r := Report{
		RunID:      s.RunID.String(),
		Candidates: make([]CandidateReport, 0, len(s.Candidates)),
		Findings:   make([]FindingReport, 0, len(s.Findings())),
		Measures:   s.MeasureStats,
	}
	for _, c := range s.Candidates {
		r.Candidates = append(r.Candidates, CandidateReport{
			ID:         int(c.ID),
			Name:       c.Name,
			Type:       c.Type,
			Names:      c.Names(),
			Confidence: c.Confidence(),
			Claims:     c.Claims(),
			Sentences:  c.Sentences(),
		})
	}
	if s.Links != nil {
		links := s.Links.Links()
		r.Links = make([]LinkReport, 0, len(links))
		for _, l := range links {
			r.Links = append(r.Links, LinkReport{
				Candidate:  int(l.Candidate.ID),
				Entity:     string(l.Entity.ID),
				EntityName: l.Entity.Name(),
				Confidence: l.Confidence(),
				Claims:     l.Claims(),
			})
		}
	}
	for _, d := range s.DiagramLinks {
		r.DiagramLinks = append(r.DiagramLinks, DiagramLinkReport{
			Diagram:    d.Element.Diagram,
			Element:    d.Element.ID,
			Entity:     string(d.Entity.ID),
			Confidence: d.Confidence(),
		})
	}
	for _, f := range s.Findings() {
		r.Findings = append(r.Findings, FindingReport{
			Kind:   string(f.Kind()),
			Reason: f.Reason(),
			Output: f.FileOutput(),
		})
	}
	return r
}
