// Package input loads documentation evidence, model entities and diagram
// elements from YAML (or JSON) files.
package input

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	tlerrors "github.com/standardbeagle/tracelink/internal/errors"
	"github.com/standardbeagle/tracelink/internal/types"
)

type modelFile struct {
	Entities []types.ModelEntity `yaml:"entities"`
}

type diagramFile struct {
	Elements []types.DiagramElement `yaml:"elements"`
}

// LoadDocument reads an annotated document file
func LoadDocument(path string) (*types.Document, error) {
	var doc types.Document
	if err := decodeFile("document", path, &doc); err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, tlerrors.NewInputError("document", fmt.Errorf("%s: %w", path, err))
	}
	return &doc, nil
}

// DecodeDocument reads an annotated document from r
func DecodeDocument(r io.Reader) (*types.Document, error) {
	var doc types.Document
	if err := decode(r, &doc); err != nil {
		return nil, tlerrors.NewInputError("document", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, tlerrors.NewInputError("document", err)
	}
	return &doc, nil
}

// LoadModel reads model entities, normalizing categories and rejecting
// entities without id or name as well as duplicate ids
func LoadModel(path string) ([]types.ModelEntity, error) {
	var mf modelFile
	if err := decodeFile("model", path, &mf); err != nil {
		return nil, err
	}
	entities, err := normalizeModel(mf.Entities)
	if err != nil {
		return nil, tlerrors.NewInputError("model", fmt.Errorf("%s: %w", path, err))
	}
	return entities, nil
}

// DecodeModel reads model entities from r
func DecodeModel(r io.Reader) ([]types.ModelEntity, error) {
	var mf modelFile
	if err := decode(r, &mf); err != nil {
		return nil, tlerrors.NewInputError("model", err)
	}
	entities, err := normalizeModel(mf.Entities)
	if err != nil {
		return nil, tlerrors.NewInputError("model", err)
	}
	return entities, nil
}

// LoadDiagrams reads diagram elements. An empty path means no diagrams.
func LoadDiagrams(path string) ([]types.DiagramElement, error) {
	if path == "" {
		return nil, nil
	}
	var df diagramFile
	if err := decodeFile("diagrams", path, &df); err != nil {
		return nil, err
	}
	for i, el := range df.Elements {
		if el.ID == "" {
			return nil, tlerrors.NewInputError("diagrams", fmt.Errorf("%s: element %d has no id", path, i))
		}
	}
	return df.Elements, nil
}

func normalizeModel(entities []types.ModelEntity) ([]types.ModelEntity, error) {
	seen := make(map[types.EntityID]bool, len(entities))
	for i := range entities {
		e := &entities[i]
		e.Category = types.ParseCategory(string(e.Category))
		for j, n := range e.Names {
			e.Names[j] = strings.TrimSpace(n)
		}
		if err := e.Validate(); err != nil {
			return nil, err
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("duplicate model entity id %s", e.ID)
		}
		seen[e.ID] = true
	}
	return entities, nil
}

func decodeFile(input, path string, out any) error {
	if path == "" {
		return tlerrors.NewInputError(input, nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return tlerrors.NewInputError(input, fmt.Errorf("%w: %s", tlerrors.ErrMissingInput, path))
		}
		return tlerrors.NewInputError(input, err)
	}
	if err := decode(bytes.NewReader(data), out); err != nil {
		return tlerrors.NewInputError(input, fmt.Errorf("%s: %w", path, err))
	}
	return nil
}

// decode parses YAML, which also accepts JSON, rejecting unknown fields.
// An empty stream leaves out at its zero value.
func decode(r io.Reader, out any) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse: %w", err)
	}
	return nil
}
