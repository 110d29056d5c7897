package inconsistency

import (
	"errors"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/tracelink/internal/config"
	tlerrors "github.com/standardbeagle/tracelink/internal/errors"
)

// PatternSet matches names against configured entries. Each entry matches as an
// exact string or as a regular expression covering the whole name; entries
// prefixed with "glob:" match as doublestar globs instead.
type PatternSet struct {
	exact    []string
	regexes  []*regexp.Regexp
	globs    []string
	foldCase bool
}

// NewPatternSet compiles entries. field names the config key in errors.
// With foldCase, matching ignores case.
func NewPatternSet(field string, entries []string, foldCase bool) (*PatternSet, error) {
	ps := &PatternSet{foldCase: foldCase}
	for _, entry := range entries {
		if entry == "" {
			continue
		}
		if glob, ok := strings.CutPrefix(entry, config.GlobPrefix); ok {
			if foldCase {
				glob = strings.ToLower(glob)
			}
			if !doublestar.ValidatePattern(glob) {
				return nil, tlerrors.NewConfigError(field, entry, errors.New("invalid glob pattern"))
			}
			ps.globs = append(ps.globs, glob)
			continue
		}

		expr := "^(?:" + entry + ")$"
		if foldCase {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, tlerrors.NewConfigError(field, entry, err)
		}
		ps.exact = append(ps.exact, entry)
		ps.regexes = append(ps.regexes, re)
	}
	return ps, nil
}

// Match reports whether name matches any entry
func (ps *PatternSet) Match(name string) bool {
	if ps == nil {
		return false
	}
	for _, e := range ps.exact {
		if e == name || (ps.foldCase && strings.EqualFold(e, name)) {
			return true
		}
	}
	for _, re := range ps.regexes {
		if re.MatchString(name) {
			return true
		}
	}
	subject := name
	if ps.foldCase {
		subject = strings.ToLower(name)
	}
	for _, g := range ps.globs {
		if ok, _ := doublestar.Match(g, subject); ok {
			return true
		}
	}
	return false
}

// MatchAny reports whether any of names matches
func (ps *PatternSet) MatchAny(names []string) bool {
	for _, n := range names {
		if ps.Match(n) {
			return true
		}
	}
	return false
}

// Len returns the number of entries
func (ps *PatternSet) Len() int {
	if ps == nil {
		return 0
	}
	return len(ps.exact) + len(ps.globs)
}
