package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL loads configuration from a KDL file. A missing file yields (nil, nil)
// so callers fall back to defaults.
func LoadKDL(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return parseKDL(string(content))
}

// parseKDL overlays a KDL document on Default
func parseKDL(content string) (*Config, error) {
	cfg := Default()

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "version":
			if v, ok := firstIntArg(n); ok {
				cfg.Version = v
			}
		case "similarity":
			parseSimilarity(&cfg.Similarity, n)
		case "embedding":
			for _, cn := range n.Children {
				assignSimpleString(cn, "backend", func(v string) { cfg.Embedding.Backend = v })
				assignSimpleString(cn, "path", func(v string) { cfg.Embedding.Path = v })
			}
		case "confidence":
			for _, cn := range n.Children {
				assignSimpleString(cn, "aggregator", func(v string) { cfg.Confidence.Aggregator = v })
			}
		case "recommendation":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "type_threshold":
					assignFloat(cn, &cfg.Recommendation.TypeThreshold)
				case "merge_threshold":
					assignFloat(cn, &cfg.Recommendation.MergeThreshold)
				case "workers":
					assignInt(cn, &cfg.Recommendation.Workers)
				}
			}
		case "connection":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "name_threshold":
					assignFloat(cn, &cfg.Connection.NameThreshold)
				case "type_threshold":
					assignFloat(cn, &cfg.Connection.TypeThreshold)
				case "workers":
					assignInt(cn, &cfg.Connection.Workers)
				}
			}
		case "inconsistency":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "probability_threshold":
					assignFloat(cn, &cfg.Inconsistency.ProbabilityThreshold)
				case "min_occurrences":
					assignInt(cn, &cfg.Inconsistency.MinOccurrences)
				case "stoplist":
					cfg.Inconsistency.Stoplist = collectStringArgs(cn)
				case "whitelist":
					cfg.Inconsistency.Whitelist = collectStringArgs(cn)
				case "document_categories":
					cfg.Inconsistency.DocumentCategories = collectStringArgs(cn)
				}
			}
		case "logging":
			for _, cn := range n.Children {
				assignSimpleString(cn, "level", func(v string) { cfg.Logging.Level = v })
				assignSimpleString(cn, "format", func(v string) { cfg.Logging.Format = v })
			}
		}
	}

	return cfg, nil
}

func parseSimilarity(s *Similarity, n *document.Node) {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "measures":
			s.Measures = collectStringArgs(cn)
		case "strategy":
			assignSimpleString(cn, "strategy", func(v string) { s.Strategy = v })
		case "score_strategy":
			assignSimpleString(cn, "score_strategy", func(v string) { s.ScoreStrategy = v })
		case "score_threshold":
			assignFloat(cn, &s.ScoreThreshold)
		case "homoglyphs":
			if b, ok := firstBoolArg(cn); ok {
				s.Homoglyphs = b
			}
		case "levenshtein":
			for _, ln := range cn.Children {
				switch nodeName(ln) {
				case "min_length":
					assignInt(ln, &s.Levenshtein.MinLength)
				case "max_distance":
					assignInt(ln, &s.Levenshtein.MaxDistance)
				case "threshold":
					assignFloat(ln, &s.Levenshtein.Threshold)
				}
			}
		case "jaro_winkler":
			for _, jn := range cn.Children {
				if nodeName(jn) == "threshold" {
					assignFloat(jn, &s.JaroWinkler.Threshold)
				}
			}
		case "ngram":
			for _, gn := range cn.Children {
				switch nodeName(gn) {
				case "variant":
					assignSimpleString(gn, "variant", func(v string) { s.Ngram.Variant = v })
				case "n":
					assignInt(gn, &s.Ngram.N)
				case "threshold":
					assignFloat(gn, &s.Ngram.Threshold)
				}
			}
		case "stem":
			for _, sn := range cn.Children {
				if nodeName(sn) == "min_length" {
					assignInt(sn, &s.Stem.MinLength)
				}
			}
		case "edlib":
			for _, en := range cn.Children {
				switch nodeName(en) {
				case "algorithm":
					assignSimpleString(en, "algorithm", func(v string) { s.Edlib.Algorithm = v })
				case "threshold":
					assignFloat(en, &s.Edlib.Threshold)
				}
			}
		case "vector":
			for _, vn := range cn.Children {
				switch nodeName(vn) {
				case "threshold":
					assignFloat(vn, &s.Vector.Threshold)
				case "cache_size":
					assignInt(vn, &s.Vector.CacheSize)
				case "shards":
					assignInt(vn, &s.Vector.Shards)
				}
			}
		}
	}
}

// Helper functions over the kdl-go document model
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}
func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}
func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}
func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		slog.Warn("invalid float value in KDL config", "node", nodeName(n), "type", fmt.Sprintf("%T", n.Arguments[0].Value))
		return 0, false
	}
}
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	// Block format: whitelist { "Cache"; "WebUI" }
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}

	return out
}
func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}
func assignFloat(n *document.Node, dst *float64) {
	if v, ok := firstFloatArg(n); ok {
		*dst = v
	}
}
func assignInt(n *document.Node, dst *int) {
	if v, ok := firstIntArg(n); ok {
		*dst = v
	}
}
