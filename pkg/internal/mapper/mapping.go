// Package mapper projects record snapshots into search documents and RDF triples according to a
// YAML mapping file.
package mapper

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

const rdfType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

// Mapping is the parsed mapping file.
type Mapping struct {
	BaseIRI  string                 `yaml:"baseIRI"`
	Required []string               `yaml:"required"`
	Types    map[string]TypeMapping `yaml:"types"`
}

// TypeMapping decides how one entity type is projected.
type TypeMapping struct {
	Index        string                  `yaml:"index"`
	Class        string                  `yaml:"class"`
	Fields       map[string]FieldMapping `yaml:"fields"`
	Relations    map[string]string       `yaml:"relations"`
	SkipDocument bool                    `yaml:"skipDocument"`
	SkipTriples  bool                    `yaml:"skipTriples"`
}

// FieldMapping maps one record field. In YAML it may be written as a bare predicate IRI.
type FieldMapping struct {
	Predicate string `yaml:"predicate"`
	As        string `yaml:"as"`
	Datatype  string `yaml:"datatype"`
	Lang      string `yaml:"lang"`
	Multi     bool   `yaml:"multi"`
}

func (f *FieldMapping) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		f.Predicate = value.Value
		return nil
	}
	type plain FieldMapping
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*f = FieldMapping(p)
	return nil
}

// documentField is the key used in the JSON document.
func (f FieldMapping) documentField(source string) string {
	if f.As != "" {
		return f.As
	}
	return source
}

// ParseMapping decodes a mapping document. Unknown keys are rejected.
func ParseMapping(data []byte) (Mapping, error) {
	var m Mapping
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return Mapping{}, fmt.Errorf("mapper: parse mapping: %w", err)
	}
	return m, nil
}

// LoadMapping reads and parses a mapping file.
func LoadMapping(path string) (Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Mapping{}, fmt.Errorf("mapper: read mapping: %w", err)
	}
	return ParseMapping(data)
}

// Validate reports every problem in the mapping, including required types without a mapping.
func (m Mapping) Validate() error {
	var errs *multierror.Error
	if m.BaseIRI == "" {
		errs = multierror.Append(errs, errors.New("baseIRI is required"))
	}
	if len(m.Types) == 0 {
		errs = multierror.Append(errs, errors.New("at least one type mapping is required"))
	}
	for _, t := range m.Required {
		if _, ok := m.Types[t]; !ok {
			errs = multierror.Append(errs, fmt.Errorf("no mapping for required type %q", t))
		}
	}

	names := make([]string, 0, len(m.Types))
	for name := range m.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		tm := m.Types[name]
		if tm.SkipDocument && tm.SkipTriples {
			errs = multierror.Append(errs, fmt.Errorf("type %q skips both documents and triples", name))
		}
		if !tm.SkipDocument && tm.Index == "" {
			errs = multierror.Append(errs, fmt.Errorf("type %q needs an index", name))
		}
		for field, fm := range tm.Fields {
			if !tm.SkipTriples && fm.Predicate == "" {
				errs = multierror.Append(errs, fmt.Errorf("type %q field %q needs a predicate", name, field))
			}
		}
		for rel, pred := range tm.Relations {
			if pred == "" {
				errs = multierror.Append(errs, fmt.Errorf("type %q relation %q needs a predicate", name, rel))
			}
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return fmt.Errorf("mapper: invalid mapping: %w", err)
	}
	return nil
}
