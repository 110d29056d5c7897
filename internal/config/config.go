package config

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// Default file name looked up next to the analyzed documentation
const DefaultFileName = ".tracelink.kdl"

// Similarity measure names understood by the measure registry
const (
	MeasureEquality    = "equality"
	MeasureLevenshtein = "levenshtein"
	MeasureJaroWinkler = "jaro_winkler"
	MeasureNgram       = "ngram"
	MeasureStem        = "stem"
	MeasureEdlib       = "edlib"
	MeasureVector      = "vector"
)

type Config struct {
	Version        int            `toml:"version"`
	Similarity     Similarity     `toml:"similarity"`
	Embedding      Embedding      `toml:"embedding"`
	Confidence     Confidence     `toml:"confidence"`
	Recommendation Recommendation `toml:"recommendation"`
	Connection     Connection     `toml:"connection"`
	Inconsistency  Inconsistency  `toml:"inconsistency"`
	Logging        Logging        `toml:"logging"`
}

type Similarity struct {
	Measures       []string `toml:"measures"`        // Registry keys, evaluated in order
	Strategy       string   `toml:"strategy"`        // at_least_one | majority | average | median | maximum
	ScoreStrategy  string   `toml:"score_strategy"`  // average | median | maximum
	ScoreThreshold float64  `toml:"score_threshold"` // Verdict cutoff for score-combining strategies
	Homoglyphs     bool     `toml:"homoglyphs"`      // Treat look-alike characters as equal

	Levenshtein Levenshtein `toml:"levenshtein"`
	JaroWinkler Threshold   `toml:"jaro_winkler"`
	Ngram       Ngram       `toml:"ngram"`
	Stem        Stem        `toml:"stem"`
	Edlib       Edlib       `toml:"edlib"`
	Vector      Vector      `toml:"vector"`
}

type Levenshtein struct {
	MinLength   int     `toml:"min_length"`   // Below this, containment is also required
	MaxDistance int     `toml:"max_distance"` // Hard cap on edit distance
	Threshold   float64 `toml:"threshold"`    // Fraction of the shorter word's length
}

type Threshold struct {
	Threshold float64 `toml:"threshold"`
}

type Ngram struct {
	Variant   string  `toml:"variant"` // lucene | positional
	N         int     `toml:"n"`
	Threshold float64 `toml:"threshold"`
}

type Stem struct {
	MinLength int `toml:"min_length"`
}

type Edlib struct {
	Algorithm string  `toml:"algorithm"` // jaro | sorensen_dice | jaccard | lcs | damerau_levenshtein | qgram | cosine
	Threshold float64 `toml:"threshold"`
}

type Vector struct {
	Threshold float64 `toml:"threshold"`
	CacheSize int     `toml:"cache_size"` // Entries per shard
	Shards    int     `toml:"shards"`
}

type Embedding struct {
	Backend string `toml:"backend"` // none | memory | badger | sqlite
	Path    string `toml:"path"`
}

type Confidence struct {
	Aggregator string `toml:"aggregator"` // median | harmonic | average | max | min
}

type Recommendation struct {
	TypeThreshold  float64 `toml:"type_threshold"`
	MergeThreshold float64 `toml:"merge_threshold"`
	Workers        int     `toml:"workers"` // 0 = NumCPU
}

type Connection struct {
	NameThreshold float64 `toml:"name_threshold"`
	TypeThreshold float64 `toml:"type_threshold"`
	Workers       int     `toml:"workers"` // 0 = NumCPU
}

type Inconsistency struct {
	ProbabilityThreshold float64  `toml:"probability_threshold"`
	MinOccurrences       int      `toml:"min_occurrences"`
	Stoplist             []string `toml:"stoplist"`
	Whitelist            []string `toml:"whitelist"`
	DocumentCategories   []string `toml:"document_categories"`
}

type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // text | json
}

// Default returns the configuration used when no file overrides it
func Default() *Config {
	return &Config{
		Version: 1,
		Similarity: Similarity{
			Measures:       []string{MeasureEquality, MeasureLevenshtein, MeasureJaroWinkler},
			Strategy:       "at_least_one",
			ScoreStrategy:  "maximum",
			ScoreThreshold: 0.8,
			Levenshtein: Levenshtein{
				MinLength:   2,
				MaxDistance: 1,
				Threshold:   0.2,
			},
			JaroWinkler: Threshold{Threshold: 0.9},
			Ngram: Ngram{
				Variant:   "lucene",
				N:         2,
				Threshold: 0.85,
			},
			Stem:  Stem{MinLength: 3},
			Edlib: Edlib{Algorithm: "sorensen_dice", Threshold: 0.8},
			Vector: Vector{
				Threshold: 0.8,
				CacheSize: 10000,
				Shards:    16,
			},
		},
		Embedding: Embedding{Backend: "none"},
		Confidence: Confidence{
			Aggregator: "max",
		},
		Recommendation: Recommendation{
			TypeThreshold:  0.85,
			MergeThreshold: 0.9,
		},
		Connection: Connection{
			NameThreshold: 0.85,
			TypeThreshold: 0.85,
		},
		Inconsistency: Inconsistency{
			ProbabilityThreshold: 0.5,
			MinOccurrences:       1,
			DocumentCategories:   []string{"component", "basic_component", "composite_component"},
		},
		Logging: Logging{Level: "info", Format: "text"},
	}
}

// Load reads a config file and overlays it on Default. The format is chosen
// from the extension: .toml uses TOML, everything else is parsed as KDL.
// A missing path returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	var (
		cfg *Config
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		cfg, err = LoadTOML(path)
	default:
		cfg, err = LoadKDL(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	if cfg == nil {
		cfg = Default()
	}
	return cfg, nil
}

// Workers resolves a worker count, where 0 means one per CPU
func Workers(n int) int {
	if n > 0 {
		return n
	}
	return max(1, runtime.NumCPU())
}
