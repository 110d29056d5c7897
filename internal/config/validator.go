package config

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	tlerrors "github.com/standardbeagle/tracelink/internal/errors"
	"github.com/standardbeagle/tracelink/internal/logging"
)

// GlobPrefix marks whitelist and stoplist entries matched as doublestar globs
const GlobPrefix = "glob:"

// Validate checks ranges and enumerations the config package owns. Registry keys
// (measures, strategies, aggregators) are resolved by the packages that own them.
// All problems are collected before returning.
func Validate(cfg *Config) error {
	if cfg == nil {
		return tlerrors.NewConfigError("config", "", errors.New("config is nil"))
	}

	var errs []error
	checkUnit := func(field string, v float64) {
		if err := CheckUnit(field, v); err != nil {
			errs = append(errs, err)
		}
	}
	checkNonNegative := func(field string, v int) {
		if v < 0 {
			errs = append(errs, tlerrors.NewConfigError(field, strconv.Itoa(v), errors.New("cannot be negative")))
		}
	}

	s := cfg.Similarity
	if len(s.Measures) == 0 {
		errs = append(errs, tlerrors.NewConfigError("similarity.measures", "", errors.New("at least one measure is required")))
	}
	checkUnit("similarity.score_threshold", s.ScoreThreshold)
	checkNonNegative("similarity.levenshtein.min_length", s.Levenshtein.MinLength)
	checkNonNegative("similarity.levenshtein.max_distance", s.Levenshtein.MaxDistance)
	checkUnit("similarity.levenshtein.threshold", s.Levenshtein.Threshold)
	checkUnit("similarity.jaro_winkler.threshold", s.JaroWinkler.Threshold)
	if s.Ngram.N < 1 {
		errs = append(errs, tlerrors.NewConfigError("similarity.ngram.n", strconv.Itoa(s.Ngram.N), errors.New("must be at least 1")))
	}
	checkUnit("similarity.ngram.threshold", s.Ngram.Threshold)
	checkNonNegative("similarity.stem.min_length", s.Stem.MinLength)
	checkUnit("similarity.edlib.threshold", s.Edlib.Threshold)
	checkUnit("similarity.vector.threshold", s.Vector.Threshold)
	checkNonNegative("similarity.vector.cache_size", s.Vector.CacheSize)
	checkNonNegative("similarity.vector.shards", s.Vector.Shards)

	switch cfg.Embedding.Backend {
	case "", "none", "memory":
	case "badger", "sqlite":
		if cfg.Embedding.Path == "" {
			errs = append(errs, tlerrors.NewConfigError("embedding.path", "", fmt.Errorf("required for backend %s", cfg.Embedding.Backend)))
		}
	default:
		errs = append(errs, tlerrors.NewConfigError("embedding.backend", cfg.Embedding.Backend, errors.New("must be none, memory, badger or sqlite")))
	}
	if containsFold(s.Measures, MeasureVector) && (cfg.Embedding.Backend == "" || cfg.Embedding.Backend == "none") {
		errs = append(errs, tlerrors.NewConfigError("embedding.backend", cfg.Embedding.Backend, errors.New("vector measure requires an embedding backend")))
	}

	checkUnit("recommendation.type_threshold", cfg.Recommendation.TypeThreshold)
	checkUnit("recommendation.merge_threshold", cfg.Recommendation.MergeThreshold)
	checkNonNegative("recommendation.workers", cfg.Recommendation.Workers)
	checkUnit("connection.name_threshold", cfg.Connection.NameThreshold)
	checkUnit("connection.type_threshold", cfg.Connection.TypeThreshold)
	checkNonNegative("connection.workers", cfg.Connection.Workers)

	checkUnit("inconsistency.probability_threshold", cfg.Inconsistency.ProbabilityThreshold)
	checkNonNegative("inconsistency.min_occurrences", cfg.Inconsistency.MinOccurrences)
	errs = append(errs, validatePatterns("inconsistency.whitelist", cfg.Inconsistency.Whitelist)...)
	errs = append(errs, validatePatterns("inconsistency.stoplist", cfg.Inconsistency.Stoplist)...)

	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		errs = append(errs, tlerrors.NewConfigError("logging.level", cfg.Logging.Level, errors.New("must be debug, info, warn or error")))
	}
	switch cfg.Logging.Format {
	case "", "text", "json":
	default:
		errs = append(errs, tlerrors.NewConfigError("logging.format", cfg.Logging.Format, errors.New("must be text or json")))
	}

	return tlerrors.NewMultiError(errs).ErrorOrNil()
}

// CheckUnit returns a ConfigError unless v lies within [0,1]. NaN is rejected.
func CheckUnit(field string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return tlerrors.NewConfigError(field, formatFloat(v), errors.New("must be within [0,1]"))
	}
	return nil
}

// validatePatterns compiles every entry as a regular expression, or as a glob
// when it carries the glob: prefix
func validatePatterns(field string, patterns []string) []error {
	var errs []error
	for _, p := range patterns {
		if glob, ok := strings.CutPrefix(p, GlobPrefix); ok {
			if !doublestar.ValidatePattern(glob) {
				errs = append(errs, tlerrors.NewConfigError(field, p, errors.New("invalid glob pattern")))
			}
			continue
		}
		if _, err := regexp.Compile(p); err != nil {
			errs = append(errs, tlerrors.NewConfigError(field, p, err))
		}
	}
	return errs
}

func containsFold(list []string, want string) bool {
	for _, s := range list {
		if strings.EqualFold(s, want) {
			return true
		}
	}
	return false
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
