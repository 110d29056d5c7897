package similarity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/tracelink/internal/config"
	tlerrors "github.com/standardbeagle/tracelink/internal/errors"
	"github.com/standardbeagle/tracelink/internal/logging"
)

func newTestEngine(t *testing.T, mutate func(*config.Similarity)) *Engine {
	t.Helper()
	cfg := config.Default().Similarity
	if mutate != nil {
		mutate(&cfg)
	}
	e, err := NewEngine(cfg, WithLogger(logging.Discard()))
	require.NoError(t, err)
	return e
}

func TestNewEngineFromDefaults(t *testing.T) {
	e := newTestEngine(t, nil)
	assert.Equal(t, []string{"equality", "levenshtein", "jaro_winkler"}, e.Measures())
	assert.True(t, e.AreWordsSimilar("Cache", "cache"))
	assert.False(t, e.AreWordsSimilar("Cache", "Interface"))
	assert.Equal(t, 1.0, e.Similarity("Cache", "cache"))
}

func TestNewEngineFailsFast(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Similarity)
	}{
		{"unknown measure", func(c *config.Similarity) { c.Measures = []string{"soundex"} }},
		{"unknown strategy", func(c *config.Similarity) { c.Strategy = "unanimous" }},
		{"unknown score strategy", func(c *config.Similarity) { c.ScoreStrategy = "mode" }},
		{"threshold out of range", func(c *config.Similarity) { c.Levenshtein.Threshold = 2 }},
		{"negative distance", func(c *config.Similarity) { c.Levenshtein.MaxDistance = -1 }},
		{"vector without source", func(c *config.Similarity) { c.Measures = []string{"vector"} }},
		{"no measures", func(c *config.Similarity) { c.Measures = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default().Similarity
			tt.mutate(&cfg)
			_, err := NewEngine(cfg, WithLogger(logging.Discard()))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tlerrors.ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestEngineStatsCoverEveryMeasure(t *testing.T) {
	e := newTestEngine(t, nil)

	// Equality alone decides, yet every measure must be counted
	require.True(t, e.AreWordsSimilar("Cache", "cache"))
	require.False(t, e.AreWordsSimilar("Cache", "Interface"))

	stats := e.Stats()
	require.Len(t, stats, 3)
	for _, s := range stats {
		assert.Equal(t, int64(2), s.Verdicts, s.Name)
	}
	assert.Equal(t, int64(1), stats[0].Positive, "equality")
}

func TestEngineHomoglyphs(t *testing.T) {
	plain := newTestEngine(t, func(c *config.Similarity) { c.Measures = []string{"equality"} })
	tolerant := newTestEngine(t, func(c *config.Similarity) {
		c.Measures = []string{"equality"}
		c.Homoglyphs = true
	})

	assert.False(t, plain.AreWordsSimilar("WebUI", "WеbUI"))
	assert.True(t, tolerant.AreWordsSimilar("WebUI", "WеbUI"))
}

func TestEngineNames(t *testing.T) {
	e := newTestEngine(t, nil)

	assert.True(t, e.AreNamesSimilar("WebUI", "web ui"))
	assert.True(t, e.AreNamesSimilar("ExpertRecommender", "expert recommender"))
	assert.True(t, e.AreNamesSimilar("user_database", "UserDatabase"))
	assert.False(t, e.AreNamesSimilar("WebUI", "web server"))
	assert.False(t, e.AreNamesSimilar("Cache", "Logger"))

	assert.Equal(t, 1.0, e.NameSimilarity("WebUI", "web ui"))
	assert.Less(t, e.NameSimilarity("WebUI", "web server"), 1.0)
}

func TestEngineWithCustomMeasures(t *testing.T) {
	cfg := config.Default().Similarity
	cfg.Strategy = "majority"
	e, err := NewEngine(cfg,
		WithLogger(logging.Discard()),
		WithMeasures(fixedMeasure{name: "yes", verdict: true, score: 1}, fixedMeasure{name: "no", score: 0}))
	require.NoError(t, err)

	assert.False(t, e.AreWordsSimilar("a", "b"), "one of two is not a majority")
	assert.Equal(t, []string{"yes", "no"}, e.Measures())
}

func TestRegisteredMeasures(t *testing.T) {
	assert.Equal(t, []string{"edlib", "equality", "jaro_winkler", "levenshtein", "ngram", "stem", "vector"}, RegisteredMeasures())
}
