package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tlerrors "github.com/standardbeagle/tracelink/internal/errors"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))
	assert.Equal(t, "at_least_one", cfg.Similarity.Strategy)
	assert.Equal(t, []string{MeasureEquality, MeasureLevenshtein, MeasureJaroWinkler}, cfg.Similarity.Measures)
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	cfg := Default()
	cfg.Similarity.Levenshtein.Threshold = 1.5
	cfg.Similarity.Levenshtein.MaxDistance = -1
	cfg.Recommendation.MergeThreshold = -0.1

	err := Validate(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, tlerrors.ErrInvalidConfig))

	var multi *tlerrors.MultiError
	require.True(t, errors.As(err, &multi))
	assert.Len(t, multi.Errors, 3)
}

func TestValidateRejectsNaNAndUnknownLevel(t *testing.T) {
	cfg, err := parseTOML([]byte(`
[connection]
name_threshold = nan

[logging]
level = "verbose"
`))
	require.NoError(t, err)

	err = Validate(cfg)
	require.Error(t, err)

	var multi *tlerrors.MultiError
	require.True(t, errors.As(err, &multi))
	require.Len(t, multi.Errors, 2)

	var fields []string
	for _, e := range multi.Errors {
		var cfgErr *tlerrors.ConfigError
		require.True(t, errors.As(e, &cfgErr))
		fields = append(fields, cfgErr.Field)
	}
	assert.Equal(t, []string{"connection.name_threshold", "logging.level"}, fields)
	assert.Error(t, CheckUnit("x", math.NaN()))
	assert.NoError(t, CheckUnit("x", 1))
}

func TestValidateRejectsBadWhitelistRegex(t *testing.T) {
	cfg := Default()
	cfg.Inconsistency.Whitelist = []string{"Cache", `\w*Recommender`, "(unclosed"}

	err := Validate(cfg)
	require.Error(t, err)

	var cfgErr *tlerrors.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "inconsistency.whitelist", cfgErr.Field)
	assert.Equal(t, "(unclosed", cfgErr.Value)
}

func TestValidateGlobPatterns(t *testing.T) {
	cfg := Default()
	cfg.Inconsistency.Stoplist = []string{"glob:*Helper", "glob:[bad"}

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "glob:[bad")
}

func TestValidateVectorNeedsBackend(t *testing.T) {
	cfg := Default()
	cfg.Similarity.Measures = append(cfg.Similarity.Measures, MeasureVector)
	assert.Error(t, Validate(cfg))

	cfg.Embedding.Backend = "badger"
	assert.Error(t, Validate(cfg), "badger without path must fail")

	cfg.Embedding.Path = "/tmp/vectors"
	assert.NoError(t, Validate(cfg))
}

func TestParseKDL(t *testing.T) {
	content := `
similarity {
    measures "equality" "ngram"
    strategy "majority"
    score_strategy "median"
    homoglyphs true
    levenshtein {
        min_length 3
        max_distance 2
        threshold 0.3
    }
    ngram {
        variant "positional"
        n 3
        threshold 0.6
    }
}
confidence {
    aggregator "harmonic"
}
recommendation {
    merge_threshold 0.95
    workers 2
}
inconsistency {
    probability_threshold 0.4
    min_occurrences 2
    whitelist "Cache" "Only Suffix"
    document_categories "component"
}
logging {
    level "debug"
    format "json"
}
`
	cfg, err := parseKDL(content)
	require.NoError(t, err)

	assert.Equal(t, []string{"equality", "ngram"}, cfg.Similarity.Measures)
	assert.Equal(t, "majority", cfg.Similarity.Strategy)
	assert.Equal(t, "median", cfg.Similarity.ScoreStrategy)
	assert.True(t, cfg.Similarity.Homoglyphs)
	assert.Equal(t, Levenshtein{MinLength: 3, MaxDistance: 2, Threshold: 0.3}, cfg.Similarity.Levenshtein)
	assert.Equal(t, Ngram{Variant: "positional", N: 3, Threshold: 0.6}, cfg.Similarity.Ngram)
	assert.Equal(t, "harmonic", cfg.Confidence.Aggregator)
	assert.Equal(t, 0.95, cfg.Recommendation.MergeThreshold)
	assert.Equal(t, 2, cfg.Recommendation.Workers)
	assert.Equal(t, 0.4, cfg.Inconsistency.ProbabilityThreshold)
	assert.Equal(t, 2, cfg.Inconsistency.MinOccurrences)
	assert.Equal(t, []string{"Cache", "Only Suffix"}, cfg.Inconsistency.Whitelist)
	assert.Equal(t, []string{"component"}, cfg.Inconsistency.DocumentCategories)
	assert.Equal(t, "json", cfg.Logging.Format)

	// Untouched sections keep defaults
	assert.Equal(t, 0.85, cfg.Connection.NameThreshold)
}

func TestParseTOML(t *testing.T) {
	data := []byte(`
[similarity]
measures = ["equality", "levenshtein"]
strategy = "average"

[similarity.levenshtein]
max_distance = 3

[inconsistency]
whitelist = ["Cache", '\w*Recommender']
`)
	cfg, err := parseTOML(data)
	require.NoError(t, err)
	assert.Equal(t, "average", cfg.Similarity.Strategy)
	assert.Equal(t, 3, cfg.Similarity.Levenshtein.MaxDistance)
	assert.Equal(t, 2, cfg.Similarity.Levenshtein.MinLength, "unspecified keys keep defaults")
	assert.Equal(t, []string{"Cache", `\w*Recommender`}, cfg.Inconsistency.Whitelist)
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()

	tomlPath := filepath.Join(dir, "tracelink.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("[confidence]\naggregator = \"min\"\n"), 0o644))
	cfg, err := Load(tomlPath)
	require.NoError(t, err)
	assert.Equal(t, "min", cfg.Confidence.Aggregator)

	kdlPath := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(kdlPath, []byte("confidence {\n    aggregator \"average\"\n}\n"), 0o644))
	cfg, err = Load(kdlPath)
	require.NoError(t, err)
	assert.Equal(t, "average", cfg.Confidence.Aggregator)

	cfg, err = Load(filepath.Join(dir, "missing.kdl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestWorkers(t *testing.T) {
	assert.Equal(t, 3, Workers(3))
	assert.GreaterOrEqual(t, Workers(0), 1)
}
