package types

import (
	"fmt"
	"strings"
)

// EntityID is the stable identifier of an architecture model element
type EntityID string

// Category classifies a model entity (component, interface, method, ...)
type Category string

const (
	CategoryComponent          Category = "component"
	CategoryBasicComponent     Category = "basic_component"
	CategoryCompositeComponent Category = "composite_component"
	CategoryInterface          Category = "interface"
	CategoryMethod             Category = "method"
	CategorySignature          Category = "signature"
	CategoryUnknown            Category = "unknown"
)

// ParseCategory normalizes a category string as written in model files.
// "BasicComponent", "basic-component" and "basic_component" all map to CategoryBasicComponent.
func ParseCategory(s string) Category {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	switch normalized {
	case "component":
		return CategoryComponent
	case "basic_component", "basiccomponent":
		return CategoryBasicComponent
	case "composite_component", "compositecomponent":
		return CategoryCompositeComponent
	case "interface", "operation_interface", "operationinterface":
		return CategoryInterface
	case "method":
		return CategoryMethod
	case "signature", "operation_signature", "operationsignature":
		return CategorySignature
	case "":
		return CategoryUnknown
	default:
		return Category(normalized)
	}
}

// ModelEntity is one element of the architecture model. Entities are loaded once
// per run and treated as read-only afterwards.
type ModelEntity struct {
	ID       EntityID `yaml:"id" json:"id"`
	Names    []string `yaml:"names" json:"names"`
	Types    []string `yaml:"types" json:"types"`
	Category Category `yaml:"category" json:"category"`
}

// Name returns the primary name variant
func (e ModelEntity) Name() string {
	if len(e.Names) == 0 {
		return ""
	}
	return e.Names[0]
}

// TypeVariants returns the entity's type variants followed by its category,
// which is itself a usable type word ("component", "interface").
func (e ModelEntity) TypeVariants() []string {
	out := make([]string, 0, len(e.Types)+1)
	out = append(out, e.Types...)
	if e.Category != "" && e.Category != CategoryUnknown {
		out = append(out, strings.ReplaceAll(string(e.Category), "_", " "))
	}
	return out
}

func (e ModelEntity) String() string {
	return fmt.Sprintf("%s(%s/%s)", e.ID, e.Name(), e.Category)
}

// Validate checks that an entity carries an id and at least one name
func (e ModelEntity) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("model entity %q has no id", e.Name())
	}
	if len(e.Names) == 0 || strings.TrimSpace(e.Names[0]) == "" {
		return fmt.Errorf("model entity %s has no name", e.ID)
	}
	return nil
}

// TypeVocabulary collects the distinct type strings over all entities,
// preserving first-seen order.
func TypeVocabulary(entities []ModelEntity) []string {
	seen := make(map[string]bool)
	var vocab []string
	for _, e := range entities {
		for _, t := range e.TypeVariants() {
			key := strings.ToLower(t)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			vocab = append(vocab, t)
		}
	}
	return vocab
}
