package projection

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"duck-projection/internal/domain"
)

// Format is the encoding of a projection document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the document format from a file extension. Anything
// that is not .json is read as YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// document is the on-disk shape. A Delta-style schema
// ({"type":"struct","fields":[...]}) is accepted as well.
type document struct {
	Name        string             `json:"name" yaml:"name"`
	Description string             `json:"description" yaml:"description"`
	Type        string             `json:"type" yaml:"type"`
	Fields      []domain.FieldSpec `json:"fields" yaml:"fields"`
}

// Parse decodes a projection document.
func Parse(data []byte, format Format) (*Descriptor, error) {
	var doc document
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, domain.ErrValidation("parse projection json: %v", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, domain.ErrValidation("parse projection yaml: %v", err)
		}
	default:
		return nil, domain.ErrValidation("unsupported projection format %q", format)
	}

	if doc.Type != "" && doc.Type != "struct" {
		return nil, domain.ErrValidation("projection document type must be \"struct\", got %q", doc.Type)
	}
	for i, f := range doc.Fields {
		if strings.TrimSpace(f.Name) == "" {
			return nil, domain.ErrValidation("field %d has no name", i)
		}
	}
	return &Descriptor{Name: doc.Name, Description: doc.Description, Fields: doc.Fields}, nil
}

// LoadFile reads and parses a projection document from disk.
func LoadFile(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		return nil, fmt.Errorf("read projection: %w", err)
	}
	d, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, err
	}
	if d.Name == "" {
		d.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return d, nil
}
