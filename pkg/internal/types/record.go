package types

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrSinkClosed is returned by sink clients used after Close.
var ErrSinkClosed = errors.New("sink client is closed")

// Relation is an outgoing edge from a record to another record.
type Relation struct {
	Predicate  string
	TargetID   string
	TargetType string
}

// RecordSnapshot is a consistent read of one record and the relations needed to project it.
type RecordSnapshot struct {
	ID        string
	Type      string
	Fields    map[string][]string
	Relations []Relation
	Version   int64
	LoadedAt  time.Time
}

// Triple is a single RDF statement. Object is an IRI unless Literal is set.
type Triple struct {
	Subject   string
	Predicate string
	Object    string
	Literal   bool
	Datatype  string
	Lang      string
}

// Payload is the unit the distributor replicates to every sink. A sink client uses the
// representation it understands and treats the rest as absent.
type Payload struct {
	RecordID   string          `json:"record_id"`
	EntityType string          `json:"entity_type"`
	DocumentID string          `json:"document_id,omitempty"`
	Index      string          `json:"index,omitempty"`
	Document   json.RawMessage `json:"document,omitempty"`
	Triples    []Triple        `json:"triples,omitempty"`
	Sequence   int             `json:"sequence"`
}

// HasDocument reports whether the payload carries a search document.
func (p Payload) HasDocument() bool { return len(p.Document) > 0 }

// HasTriples reports whether the payload carries RDF statements.
func (p Payload) HasTriples() bool { return len(p.Triples) > 0 }

// RecordLoader loads a record in an isolated read-committed unit of work.
type RecordLoader interface {
	LoadForIndexing(ctx context.Context, id string) (*RecordSnapshot, error)
}

// DocumentMapper projects a snapshot into the payloads written to the sinks.
type DocumentMapper interface {
	Project(snapshot *RecordSnapshot) ([]Payload, error)
}

// SinkClient writes batches of payloads to one external system.
type SinkClient interface {
	Name() string
	WriteBatch(ctx context.Context, batch []Payload) error
	Close() error
}

// Pinger is implemented by sink clients that can verify reachability before the pipeline starts.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Validator is implemented by collaborators whose configuration can be checked up front.
type Validator interface {
	Validate() error
}
