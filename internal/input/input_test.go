package input

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tlerrors "github.com/standardbeagle/tracelink/internal/errors"
	"github.com/standardbeagle/tracelink/internal/types"
)

const documentYAML = `
sentences:
  - number: 1
    text: The WebUI component talks to the Cache interface.
name_phrases:
  - {id: 1, sentence: 1, words: [WebUI]}
  - {id: 2, sentence: 1, words: [Cache]}
type_phrases:
  - {id: 10, sentence: 1, words: [component]}
  - {id: 11, sentence: 1, words: [interface]}
pairings:
  - {name: 1, type: 10, relation: appos}
  - {name: 2, type: 11}
`

const modelYAML = `
entities:
  - id: "1"
    names: [" WebUI "]
    types: [component]
    category: BasicComponent
  - id: "2"
    names: [Cache]
    category: OperationInterface
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDocument(t *testing.T) {
	doc, err := LoadDocument(writeFile(t, "doc.yaml", documentYAML))
	require.NoError(t, err)

	require.Len(t, doc.Sentences, 1)
	require.Len(t, doc.NamePhrases, 2)
	assert.Equal(t, []string{"WebUI"}, doc.NamePhrases[0].Words)
	assert.Equal(t, types.Pairing{Name: 1, Type: 10, Relation: "appos"}, doc.Pairings[0])

	names, typePhrases := doc.Index()
	assert.Equal(t, types.PhraseName, names[1].Kind)
	assert.Equal(t, types.PhraseType, typePhrases[11].Kind)
}

func TestDecodeDocumentAcceptsJSON(t *testing.T) {
	doc, err := DecodeDocument(strings.NewReader(`{"sentences":[{"number":1,"text":"x"}],"name_phrases":[{"id":1,"sentence":1,"words":["Cache"]}]}`))
	require.NoError(t, err)
	assert.False(t, doc.IsEmpty())
}

func TestDecodeDocumentRejectsDanglingPairing(t *testing.T) {
	_, err := DecodeDocument(strings.NewReader("pairings:\n  - {name: 1, type: 2}\n"))
	var inputErr *tlerrors.InputError
	require.True(t, errors.As(err, &inputErr))
	assert.Equal(t, "document", inputErr.Input)
}

func TestDecodeDocumentRejectsUnknownFields(t *testing.T) {
	_, err := DecodeDocument(strings.NewReader("sentence: []\n"))
	assert.Error(t, err)
}

func TestLoadModel(t *testing.T) {
	entities, err := LoadModel(writeFile(t, "model.yaml", modelYAML))
	require.NoError(t, err)
	require.Len(t, entities, 2)

	assert.Equal(t, "WebUI", entities[0].Name())
	assert.Equal(t, types.CategoryBasicComponent, entities[0].Category)
	assert.Equal(t, types.CategoryInterface, entities[1].Category)
	assert.Equal(t, []string{"component", "basic component", "interface"}, types.TypeVocabulary(entities))
}

func TestDecodeModelRejectsInvalidEntities(t *testing.T) {
	_, err := DecodeModel(strings.NewReader("entities:\n  - {id: '1', names: [A]}\n  - {id: '1', names: [B]}\n"))
	assert.ErrorContains(t, err, "duplicate model entity id 1")

	_, err = DecodeModel(strings.NewReader("entities:\n  - {id: '1'}\n"))
	assert.ErrorContains(t, err, "has no name")
}

func TestLoadMissingFiles(t *testing.T) {
	_, err := LoadDocument(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.True(t, errors.Is(err, tlerrors.ErrMissingInput))

	_, err = LoadModel("")
	assert.True(t, errors.Is(err, tlerrors.ErrMissingInput))

	diagrams, err := LoadDiagrams("")
	require.NoError(t, err)
	assert.Nil(t, diagrams)
}

func TestLoadDiagrams(t *testing.T) {
	path := writeFile(t, "diagrams.yaml", `
elements:
  - {id: d1, diagram: overview, name: Web UI, texts: [frontend]}
`)
	elements, err := LoadDiagrams(path)
	require.NoError(t, err)
	require.Len(t, elements, 1)
	assert.Equal(t, []string{"Web UI", "frontend"}, elements[0].Labels())

	_, err = LoadDiagrams(writeFile(t, "bad.yaml", "elements:\n  - {name: x}\n"))
	assert.ErrorContains(t, err, "has no id")
}
