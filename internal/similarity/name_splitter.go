package similarity

import (
	"strings"
	"sync"
	"unicode"
)

// NameSplitter splits entity and phrase names into lowercase words.
// Supports camelCase, PascalCase with acronyms (WebUI, HTTPServer), snake_case,
// kebab-case, dotted names and plain whitespace.
//
// Thread-safe: results are cached in a sync.Map with FIFO eviction.
type NameSplitter struct {
	cache sync.Map

	cacheKeys []string
	maxSize   int
	mu        sync.Mutex
}

// DefaultSplitCacheSize bounds the number of cached split results
const DefaultSplitCacheSize = 1000

// NewNameSplitter creates a splitter with the default cache size
func NewNameSplitter() *NameSplitter {
	return NewNameSplitterWithSize(DefaultSplitCacheSize)
}

// NewNameSplitterWithSize creates a splitter with a custom cache size
func NewNameSplitterWithSize(cacheSize int) *NameSplitter {
	if cacheSize <= 0 {
		cacheSize = DefaultSplitCacheSize
	}
	return &NameSplitter{
		cacheKeys: make([]string, 0, cacheSize),
		maxSize:   cacheSize,
	}
}

func isSeparator(ch rune) bool {
	return ch == '_' || ch == '-' || ch == '.' || ch == '/' || unicode.IsSpace(ch)
}

// Split returns the words of name, lowercased
func (ns *NameSplitter) Split(name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return []string{}
	}

	if cached, ok := ns.cache.Load(name); ok {
		return cached.([]string)
	}

	runes := []rune(name)
	wordBuffer := make([]rune, 0, 32)
	words := make([]string, 0, 4)

	flush := func() {
		if len(wordBuffer) > 0 {
			words = append(words, strings.ToLower(string(wordBuffer)))
			wordBuffer = wordBuffer[:0]
		}
	}

	for i, ch := range runes {
		if isSeparator(ch) {
			flush()
			continue
		}

		if i > 0 {
			prev := runes[i-1]

			// camelCase boundary
			if unicode.IsLower(prev) && unicode.IsUpper(ch) {
				flush()
			}

			// End of an acronym: HTTPServer -> http server
			if i > 1 && unicode.IsUpper(prev) && unicode.IsLower(ch) && unicode.IsUpper(runes[i-2]) && len(wordBuffer) > 1 {
				last := wordBuffer[len(wordBuffer)-1]
				wordBuffer = wordBuffer[:len(wordBuffer)-1]
				flush()
				wordBuffer = append(wordBuffer, last)
			}

			// Letter/digit boundary
			if (unicode.IsLetter(prev) && unicode.IsDigit(ch)) || (unicode.IsDigit(prev) && unicode.IsLetter(ch)) {
				flush()
			}
		}

		wordBuffer = append(wordBuffer, ch)
	}
	flush()

	ns.store(name, words)
	return words
}

// Joined returns the split words concatenated without separators ("Web UI" -> "webui")
func (ns *NameSplitter) Joined(name string) string {
	return strings.Join(ns.Split(name), "")
}

func (ns *NameSplitter) store(name string, words []string) {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	if len(ns.cacheKeys) >= ns.maxSize && len(ns.cacheKeys) > 0 {
		oldestKey := ns.cacheKeys[0]
		ns.cache.Delete(oldestKey)
		ns.cacheKeys = ns.cacheKeys[1:]
	}

	ns.cache.Store(name, words)
	ns.cacheKeys = append(ns.cacheKeys, name)
}
