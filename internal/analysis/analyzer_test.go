package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/standardbeagle/tracelink/internal/config"
	"github.com/standardbeagle/tracelink/internal/embedding"
	tlerrors "github.com/standardbeagle/tracelink/internal/errors"
	"github.com/standardbeagle/tracelink/internal/logging"
	"github.com/standardbeagle/tracelink/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func phrase(id types.PhraseID, sentence int, words ...string) types.Phrase {
	return types.Phrase{ID: id, Sentence: sentence, Words: words}
}

func fixtureInputs() Inputs {
	return Inputs{
		Document: &types.Document{
			Sentences: []types.Sentence{
				{Number: 1, Text: "The WebUI component sends requests to the Cache interface."},
				{Number: 2, Text: "The Database component stores all records."},
				{Number: 3, Text: "The webui component renders pages."},
			},
			NamePhrases: []types.Phrase{
				phrase(1, 1, "WebUI"),
				phrase(2, 1, "Cache"),
				phrase(3, 2, "Database"),
				phrase(4, 3, "webui"),
			},
			TypePhrases: []types.Phrase{
				phrase(10, 1, "component"),
				phrase(11, 1, "interface"),
				phrase(12, 2, "component"),
				phrase(13, 3, "component"),
			},
			Pairings: []types.Pairing{
				{Name: 1, Type: 10},
				{Name: 2, Type: 11},
				{Name: 3, Type: 12},
				{Name: 4, Type: 13},
			},
		},
		Entities: []types.ModelEntity{
			{ID: "1", Names: []string{"WebUI"}, Category: types.CategoryBasicComponent},
			{ID: "2", Names: []string{"Cache"}, Category: types.CategoryInterface},
			{ID: "3", Names: []string{"Logger"}, Category: types.CategoryComponent},
		},
		Diagrams: []types.DiagramElement{
			{ID: "box-1", Diagram: "overview", Name: "Web UI"},
		},
	}
}

func newAnalyzer(t *testing.T, cfg *config.Config, opts ...Option) *Analyzer {
	t.Helper()
	a, err := New(cfg, append([]Option{WithLogger(logging.Discard())}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestRun(t *testing.T) {
	a := newAnalyzer(t, config.Default())

	state, err := a.Run(context.Background(), fixtureInputs())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, state.RunID)
	assert.False(t, state.Finished.Before(state.Started))

	var names []string
	for _, c := range state.Candidates {
		names = append(names, c.Name+"/"+c.Type)
	}
	assert.Equal(t, []string{"WebUI/component", "Cache/interface", "Database/component"}, names)
	assert.Equal(t, []string{"WebUI", "webui"}, state.Candidates[0].Names())

	var links []string
	for _, l := range state.Links.Links() {
		links = append(links, l.Candidate.Name+"->"+string(l.Entity.ID))
	}
	assert.Equal(t, []string{"WebUI->1", "Cache->2"}, links)

	require.Len(t, state.DiagramLinks, 1)
	assert.Equal(t, types.EntityID("1"), state.DiagramLinks[0].Entity.ID)

	var outputs [][]string
	for _, f := range state.Findings() {
		outputs = append(outputs, f.FileOutput())
	}
	want := [][]string{
		{"MissingModelElement", "Database", "component", "2", "1.00"},
		{"UndocumentedModelElement", "3", "Logger", "component"},
	}
	if diff := cmp.Diff(want, outputs); diff != "" {
		t.Errorf("findings mismatch (-want +got):\n%s", diff)
	}

	require.NotEmpty(t, state.MeasureStats)
	for _, s := range state.MeasureStats {
		assert.Positive(t, s.Scores, s.Name)
		assert.Positive(t, s.Verdicts, "%s: compound names consult the comparison strategy", s.Name)
	}
}

func TestRunWithVectorMeasure(t *testing.T) {
	store := embedding.NewMemoryStore()
	require.NoError(t, store.Put("datastore", []float32{1, 0.1}))
	require.NoError(t, store.Put("database", []float32{1, 0}))

	cfg := config.Default()
	cfg.Similarity.Measures = []string{config.MeasureEquality, config.MeasureVector}
	cfg.Embedding.Backend = embedding.BackendMemory
	a := newAnalyzer(t, cfg, WithEmbeddingStore(store))
	assert.Equal(t, []string{"equality", "vector"}, a.Engine().Measures())

	in := fixtureInputs()
	in.Document.NamePhrases[2].Words = []string{"datastore"}
	in.Entities = append(in.Entities, types.ModelEntity{ID: "4", Names: []string{"Database"}, Category: types.CategoryComponent})

	state, err := a.Run(context.Background(), in)
	require.NoError(t, err)

	var linked bool
	for _, l := range state.Links.ForEntity("4") {
		linked = linked || l.Candidate.Name == "datastore"
	}
	assert.True(t, linked, "embedding similarity links datastore to Database")
	for _, f := range state.Findings() {
		assert.NotEqual(t, "datastore", f.FileOutput()[1])
	}
}

func TestRunRequiresInputs(t *testing.T) {
	a := newAnalyzer(t, config.Default())

	_, err := a.Run(context.Background(), Inputs{Entities: fixtureInputs().Entities})
	assert.True(t, errors.Is(err, tlerrors.ErrMissingInput))

	_, err = a.Run(context.Background(), Inputs{Document: fixtureInputs().Document})
	var inputErr *tlerrors.InputError
	require.True(t, errors.As(err, &inputErr))
	assert.Equal(t, "model", inputErr.Input)
}

func TestNewFailsFastOnConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Confidence.Aggregator = "mode"
	_, err := New(cfg, WithLogger(logging.Discard()))
	assert.True(t, errors.Is(err, tlerrors.ErrInvalidConfig))

	cfg = config.Default()
	cfg.Similarity.Strategy = "unanimous"
	_, err = New(cfg, WithLogger(logging.Discard()))
	assert.True(t, errors.Is(err, tlerrors.ErrInvalidConfig))

	cfg = config.Default()
	cfg.Inconsistency.Whitelist = []string{"(["}
	_, err = New(cfg, WithLogger(logging.Discard()))
	assert.True(t, errors.Is(err, tlerrors.ErrInvalidConfig))
}

func TestReportSerializes(t *testing.T) {
	a := newAnalyzer(t, config.Default())
	state, err := a.Run(context.Background(), fixtureInputs())
	require.NoError(t, err)

	data, err := json.Marshal(state.Report())
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, state.RunID.String(), decoded.RunID)
	assert.Len(t, decoded.Candidates, 3)
	assert.Len(t, decoded.Links, 2)
	assert.Len(t, decoded.DiagramLinks, 1)
	require.Len(t, decoded.Findings, 2)
	assert.Equal(t, "MissingModelElement", decoded.Findings[0].Kind)
	assert.Equal(t, "name-type", string(decoded.Candidates[0].Claims[0].Claimant))
}
