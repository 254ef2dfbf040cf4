package mapper

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

// ErrUnmappedType is returned by Project for a record whose type has no mapping.
var ErrUnmappedType = errors.New("mapper: no mapping for entity type")

// Mapper is the YAML-driven types.DocumentMapper. It is safe for concurrent use.
type Mapper struct {
	mapping Mapping
}

func NewMapper(m Mapping) *Mapper {
	if m.BaseIRI != "" && !strings.HasSuffix(m.BaseIRI, "/") && !strings.HasSuffix(m.BaseIRI, "#") {
		m.BaseIRI += "/"
	}
	return &Mapper{mapping: m}
}

// Validate implements types.Validator.
func (mp *Mapper) Validate() error { return mp.mapping.Validate() }

// Mapping returns the mapping in use.
func (mp *Mapper) Mapping() Mapping { return mp.mapping }

// SubjectIRI returns the IRI a record of entityType with id is published under.
func (mp *Mapper) SubjectIRI(entityType, id string) string {
	return mp.mapping.BaseIRI + strings.ToLower(entityType) + "/" + id
}

// Project implements types.DocumentMapper. It produces one payload per record that carries the
// search document and the triples, minus whichever the type mapping skips.
func (mp *Mapper) Project(s *types.RecordSnapshot) ([]types.Payload, error) {
	if s == nil {
		return nil, errors.New("mapper: nil snapshot")
	}
	tm, ok := mp.mapping.Types[s.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s (record %s)", ErrUnmappedType, s.Type, s.ID)
	}

	p := types.Payload{
		RecordID:   s.ID,
		EntityType: s.Type,
		DocumentID: s.ID,
		Index:      tm.Index,
	}
	if !tm.SkipDocument {
		doc, err := mp.document(s, tm)
		if err != nil {
			return nil, err
		}
		p.Document = doc
	}
	if !tm.SkipTriples {
		p.Triples = mp.triples(s, tm)
	}
	return []types.Payload{p}, nil
}

func (mp *Mapper) document(s *types.RecordSnapshot, tm TypeMapping) (json.RawMessage, error) {
	doc := map[string]interface{}{
		"id":   s.ID,
		"type": s.Type,
	}
	if s.Version != 0 {
		doc["version"] = s.Version
	}

	for field, fm := range tm.Fields {
		values := s.Fields[field]
		if len(values) == 0 {
			continue
		}
		if fm.Multi || len(values) > 1 {
			doc[fm.documentField(field)] = values
		} else {
			doc[fm.documentField(field)] = typedValue(values[0], fm.Datatype)
		}
	}

	related := make(map[string][]string)
	for _, r := range s.Relations {
		if _, ok := tm.Relations[r.Predicate]; ok {
			related[r.Predicate] = append(related[r.Predicate], r.TargetID)
		}
	}
	for name, ids := range related {
		doc[name] = ids
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("mapper: encode document %s: %w", s.ID, err)
	}
	return json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func (mp *Mapper) triples(s *types.RecordSnapshot, tm TypeMapping) []types.Triple {
	subject := mp.SubjectIRI(s.Type, s.ID)
	var out []types.Triple
	if tm.Class != "" {
		out = append(out, types.Triple{Subject: subject, Predicate: rdfType, Object: tm.Class})
	}

	fields := make([]string, 0, len(tm.Fields))
	for f := range tm.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fm := tm.Fields[field]
		for _, v := range s.Fields[field] {
			out = append(out, types.Triple{
				Subject:   subject,
				Predicate: fm.Predicate,
				Object:    v,
				Literal:   true,
				Datatype:  fm.Datatype,
				Lang:      fm.Lang,
			})
		}
	}

	for _, r := range s.Relations {
		pred, ok := tm.Relations[r.Predicate]
		if !ok {
			continue
		}
		targetType := r.TargetType
		if targetType == "" {
			targetType = s.Type
		}
		out = append(out, types.Triple{Subject: subject, Predicate: pred, Object: mp.SubjectIRI(targetType, r.TargetID)})
	}
	return out
}

// typedValue keeps numeric and boolean XSD values typed in the JSON document.
func typedValue(v, datatype string) interface{} {
	switch strings.TrimPrefix(datatype, "http://www.w3.org/2001/XMLSchema#") {
	case "integer", "int", "long":
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	case "decimal", "double", "float":
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	case "boolean":
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return v
}
