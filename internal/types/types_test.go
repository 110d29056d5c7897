package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"BasicComponent", CategoryBasicComponent},
		{"basic-component", CategoryBasicComponent},
		{" Composite Component ", CategoryCompositeComponent},
		{"OperationInterface", CategoryInterface},
		{"OperationSignature", CategorySignature},
		{"", CategoryUnknown},
		{"Deployment", Category("deployment")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseCategory(tt.in), tt.in)
	}
}

func TestTypeVocabulary(t *testing.T) {
	entities := []ModelEntity{
		{ID: "1", Names: []string{"WebUI"}, Types: []string{"Component"}, Category: CategoryBasicComponent},
		{ID: "2", Names: []string{"Cache"}, Category: CategoryInterface},
		{ID: "3", Names: []string{"Logger"}, Types: []string{"component"}, Category: CategoryUnknown},
	}
	assert.Equal(t, []string{"Component", "basic component", "interface"}, TypeVocabulary(entities))
}

func TestModelEntityValidate(t *testing.T) {
	assert.NoError(t, ModelEntity{ID: "1", Names: []string{"Cache"}}.Validate())
	assert.Error(t, ModelEntity{Names: []string{"Cache"}}.Validate())
	assert.Error(t, ModelEntity{ID: "1", Names: []string{"  "}}.Validate())
	assert.Equal(t, "", ModelEntity{ID: "1"}.Name())
}

func TestPhraseTextAndHead(t *testing.T) {
	p := Phrase{Words: []string{"basic", "component"}}
	assert.Equal(t, "basic component", p.Text())
	assert.Equal(t, "component", p.Head())
	assert.Equal(t, "", Phrase{}.Head())
}

func TestDocumentValidate(t *testing.T) {
	doc := &Document{
		NamePhrases: []Phrase{{ID: 1, Words: []string{"Cache"}}},
		TypePhrases: []Phrase{{ID: 2, Words: []string{"interface"}}},
		Pairings:    []Pairing{{Name: 1, Type: 2}},
	}
	assert.NoError(t, doc.Validate())
	assert.False(t, doc.IsEmpty())

	doc.Pairings = append(doc.Pairings, Pairing{Name: 2, Type: 2})
	assert.Error(t, doc.Validate())

	var empty *Document
	assert.True(t, empty.IsEmpty())
}

func TestDiagramLabels(t *testing.T) {
	d := DiagramElement{Name: "Web UI", Texts: []string{"", "frontend"}}
	assert.Equal(t, []string{"Web UI", "frontend"}, d.Labels())
}
