// Package inconsistency diffs the text-derived candidates against the model and
// reports what one side has and the other lacks.
package inconsistency

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/standardbeagle/tracelink/internal/recommend"
	"github.com/standardbeagle/tracelink/internal/types"
)

// Kind tags an inconsistency variant
type Kind string

const (
	KindMissingModelElement      Kind = "MissingModelElement"
	KindUndocumentedModelElement Kind = "UndocumentedModelElement"
)

// Inconsistency is one finding. FileOutput is a stable tuple for report writers;
// its first field is always the kind.
type Inconsistency interface {
	Kind() Kind
	Reason() string
	FileOutput() []string
}

// MissingModelElement: the text describes something the model does not contain
type MissingModelElement struct {
	Candidate *recommend.Candidate
}

func (m MissingModelElement) Kind() Kind { return KindMissingModelElement }

func (m MissingModelElement) Reason() string {
	return fmt.Sprintf("Text mentions %q as %q in sentences %s, but no model element matches (confidence %.2f)",
		m.Candidate.Name, m.Candidate.Type, joinInts(m.Candidate.Sentences(), ", "), m.Candidate.Confidence())
}

// FileOutput is (kind, name, type, space-separated sentences, confidence)
func (m MissingModelElement) FileOutput() []string {
	return []string{
		string(KindMissingModelElement),
		m.Candidate.Name,
		m.Candidate.Type,
		joinInts(m.Candidate.Sentences(), " "),
		strconv.FormatFloat(m.Candidate.Confidence(), 'f', 2, 64),
	}
}

// UndocumentedModelElement: the model contains an element no text evidence covers
type UndocumentedModelElement struct {
	Entity types.ModelEntity
}

func (u UndocumentedModelElement) Kind() Kind { return KindUndocumentedModelElement }

func (u UndocumentedModelElement) Reason() string {
	return fmt.Sprintf("Model element %q (%s, id %s) is not documented in the text",
		u.Entity.Name(), u.Entity.Category, u.Entity.ID)
}

// FileOutput is (kind, id, name, category)
func (u UndocumentedModelElement) FileOutput() []string {
	return []string{
		string(KindUndocumentedModelElement),
		string(u.Entity.ID),
		u.Entity.Name(),
		string(u.Entity.Category),
	}
}

func joinInts(values []int, sep string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, sep)
}
