package types

import (
	"fmt"
	"strings"
)

// PhraseID identifies a phrase within a Document
type PhraseID int

// PhraseKind tells whether a phrase was classified as naming something or typing it
type PhraseKind uint8

const (
	PhraseName PhraseKind = iota
	PhraseType
)

func (k PhraseKind) String() string {
	switch k {
	case PhraseName:
		return "name"
	case PhraseType:
		return "type"
	default:
		return fmt.Sprintf("PhraseKind(%d)", uint8(k))
	}
}

// Phrase is a group of words classified upstream as a name-phrase or a type-phrase
type Phrase struct {
	ID       PhraseID   `yaml:"id" json:"id"`
	Sentence int        `yaml:"sentence" json:"sentence"`
	Kind     PhraseKind `yaml:"-" json:"-"`
	Words    []string   `yaml:"words" json:"words"`
}

// Text joins the phrase words with single spaces
func (p Phrase) Text() string {
	return strings.Join(p.Words, " ")
}

// Head returns the syntactic head, taken as the last word of the phrase
func (p Phrase) Head() string {
	if len(p.Words) == 0 {
		return ""
	}
	return p.Words[len(p.Words)-1]
}

// Pairing is an upstream-computed candidate association between a name-phrase and a type-phrase
type Pairing struct {
	Name     PhraseID `yaml:"name" json:"name"`
	Type     PhraseID `yaml:"type" json:"type"`
	Relation string   `yaml:"relation" json:"relation"`
}

// Sentence is one sentence of the documentation
type Sentence struct {
	Number int    `yaml:"number" json:"number"`
	Text   string `yaml:"text" json:"text"`
}

// Document is the annotated documentation as delivered by the text evidence provider
type Document struct {
	Sentences   []Sentence `yaml:"sentences" json:"sentences"`
	NamePhrases []Phrase   `yaml:"name_phrases" json:"name_phrases"`
	TypePhrases []Phrase   `yaml:"type_phrases" json:"type_phrases"`
	Pairings    []Pairing  `yaml:"pairings" json:"pairings"`
}

// IsEmpty reports whether the document carries no usable evidence
func (d *Document) IsEmpty() bool {
	return d == nil || (len(d.Sentences) == 0 && len(d.NamePhrases) == 0)
}

// Index returns lookup tables from phrase id to phrase. Phrase kinds are fixed
// from the list each phrase came from.
func (d *Document) Index() (names map[PhraseID]Phrase, typesByID map[PhraseID]Phrase) {
	names = make(map[PhraseID]Phrase, len(d.NamePhrases))
	for _, p := range d.NamePhrases {
		p.Kind = PhraseName
		names[p.ID] = p
	}
	typesByID = make(map[PhraseID]Phrase, len(d.TypePhrases))
	for _, p := range d.TypePhrases {
		p.Kind = PhraseType
		typesByID[p.ID] = p
	}
	return names, typesByID
}

// Validate checks that every pairing references known phrases
func (d *Document) Validate() error {
	names, typePhrases := d.Index()
	for i, pr := range d.Pairings {
		if _, ok := names[pr.Name]; !ok {
			return fmt.Errorf("pairing %d references unknown name phrase %d", i, pr.Name)
		}
		if _, ok := typePhrases[pr.Type]; !ok {
			return fmt.Errorf("pairing %d references unknown type phrase %d", i, pr.Type)
		}
	}
	return nil
}
