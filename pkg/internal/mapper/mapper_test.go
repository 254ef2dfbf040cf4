package mapper_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joeydtaylor/switchboard/pkg/internal/mapper"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

const mappingYAML = `
baseIRI: https://data.example.org/id
required: [Person]
types:
  Person:
    index: people
    class: https://schema.org/Person
    fields:
      name: https://schema.org/name
      age:
        predicate: https://schema.org/age
        datatype: http://www.w3.org/2001/XMLSchema#integer
      alias:
        predicate: https://schema.org/alternateName
        as: aliases
        multi: true
        lang: en
    relations:
      worksFor: https://schema.org/worksFor
  Organization:
    index: orgs
    skipTriples: true
`

func newMapper(t *testing.T) *mapper.Mapper {
	t.Helper()
	m, err := mapper.ParseMapping([]byte(mappingYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	mp := mapper.NewMapper(m)
	if err := mp.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	return mp
}

func TestMapper_ProjectsDocumentAndTriples(t *testing.T) {
	mp := newMapper(t)
	snapshot := &types.RecordSnapshot{
		ID:   "42",
		Type: "Person",
		Fields: map[string][]string{
			"name":  {"Ada Lovelace"},
			"age":   {"36"},
			"alias": {"Ada"},
			"notes": {"not mapped"},
		},
		Relations: []types.Relation{{Predicate: "worksFor", TargetID: "7", TargetType: "Organization"}},
		Version:   3,
	}

	payloads, err := mp.Project(snapshot)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if len(payloads) != 1 {
		t.Fatalf("expected one payload, got %d", len(payloads))
	}
	p := payloads[0]
	if p.Index != "people" || p.DocumentID != "42" || p.RecordID != "42" {
		t.Fatalf("unexpected payload header: %+v", p)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(p.Document, &doc); err != nil {
		t.Fatalf("document is not JSON: %v", err)
	}
	if doc["name"] != "Ada Lovelace" || doc["age"] != float64(36) {
		t.Fatalf("unexpected document fields: %v", doc)
	}
	if aliases, ok := doc["aliases"].([]interface{}); !ok || len(aliases) != 1 {
		t.Fatalf("expected multi field renamed to aliases: %v", doc)
	}
	if _, ok := doc["notes"]; ok {
		t.Fatalf("unmapped field leaked into the document")
	}
	if rel, ok := doc["worksFor"].([]interface{}); !ok || rel[0] != "7" {
		t.Fatalf("expected relation ids in document: %v", doc)
	}

	subject := "https://data.example.org/id/person/42"
	var sawType, sawRelation, sawLang bool
	for _, tr := range p.Triples {
		if tr.Subject != subject {
			t.Fatalf("unexpected subject %s", tr.Subject)
		}
		switch {
		case tr.Predicate == "http://www.w3.org/1999/02/22-rdf-syntax-ns#type":
			sawType = tr.Object == "https://schema.org/Person" && !tr.Literal
		case tr.Predicate == "https://schema.org/worksFor":
			sawRelation = tr.Object == "https://data.example.org/id/organization/7"
		case tr.Predicate == "https://schema.org/alternateName":
			sawLang = tr.Lang == "en" && tr.Literal
		}
	}
	if !sawType || !sawRelation || !sawLang {
		t.Fatalf("missing expected triples: %+v", p.Triples)
	}
}

func TestMapper_SkipTriples(t *testing.T) {
	payloads, err := newMapper(t).Project(&types.RecordSnapshot{ID: "7", Type: "Organization"})
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if payloads[0].HasTriples() || !payloads[0].HasDocument() {
		t.Fatalf("expected a document-only payload: %+v", payloads[0])
	}
}

func TestMapper_UnmappedTypeFailsTheRecord(t *testing.T) {
	_, err := newMapper(t).Project(&types.RecordSnapshot{ID: "1", Type: "Invoice"})
	if !errors.Is(err, mapper.ErrUnmappedType) {
		t.Fatalf("expected ErrUnmappedType, got %v", err)
	}
}

func TestMapping_ValidateReportsEveryProblem(t *testing.T) {
	m, err := mapper.ParseMapping([]byte(`
required: [Person, Invoice]
types:
  Person:
    fields:
      name: ""
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	err = m.Validate()
	if err == nil {
		t.Fatalf("expected validation failure")
	}
	for _, want := range []string{"baseIRI", `"Invoice"`, "needs an index", `field "name"`} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}

func TestParseMapping_RejectsUnknownKeys(t *testing.T) {
	if _, err := mapper.ParseMapping([]byte("baseIRI: x\ntypos: {}\n")); err == nil {
		t.Fatalf("expected unknown key to be rejected")
	}
}

func TestLoadMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.yaml")
	if err := os.WriteFile(path, []byte(mappingYAML), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	m, err := mapper.LoadMapping(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Types["Person"].Fields["name"].Predicate != "https://schema.org/name" {
		t.Fatalf("expected scalar field shorthand to set the predicate")
	}
	if _, err := mapper.LoadMapping(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected missing file error")
	}
}
