package types

// DiagramElement is a recognized box or label from an architecture diagram,
// with the text fragments found inside or next to it.
type DiagramElement struct {
	ID      string   `yaml:"id" json:"id"`
	Diagram string   `yaml:"diagram" json:"diagram"`
	Name    string   `yaml:"name" json:"name"`
	Texts   []string `yaml:"texts" json:"texts"`
}

// Labels returns the element name followed by its text fragments, skipping empties
func (d DiagramElement) Labels() []string {
	out := make([]string, 0, 1+len(d.Texts))
	if d.Name != "" {
		out = append(out, d.Name)
	}
	for _, t := range d.Texts {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
