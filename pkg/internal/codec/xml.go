package codec

import (
	"encoding/xml"
	"io"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

// XMLEncoder writes the batch as a <payloads> document.
type XMLEncoder struct{}

func NewXMLEncoder() *XMLEncoder { return &XMLEncoder{} }

type xmlBatch struct {
	XMLName  xml.Name     `xml:"payloads"`
	Payloads []xmlPayload `xml:"payload"`
}

type xmlPayload struct {
	RecordID   string      `xml:"record_id,attr"`
	EntityType string      `xml:"entity_type,attr"`
	DocumentID string      `xml:"document_id,attr,omitempty"`
	Index      string      `xml:"index,attr,omitempty"`
	Sequence   int         `xml:"sequence,attr"`
	Document   string      `xml:"document,omitempty"`
	Triples    []xmlTriple `xml:"triple"`
}

type xmlTriple struct {
	Subject   string `xml:"subject,attr"`
	Predicate string `xml:"predicate,attr"`
	Object    string `xml:",chardata"`
	Literal   bool   `xml:"literal,attr,omitempty"`
	Datatype  string `xml:"datatype,attr,omitempty"`
	Lang      string `xml:"lang,attr,omitempty"`
}

func (e *XMLEncoder) Encode(w io.Writer, batch []types.Payload) error {
	doc := xmlBatch{Payloads: make([]xmlPayload, 0, len(batch))}
	for _, p := range batch {
		xp := xmlPayload{
			RecordID:   p.RecordID,
			EntityType: p.EntityType,
			DocumentID: p.DocumentID,
			Index:      p.Index,
			Sequence:   p.Sequence,
			Document:   string(p.Document),
		}
		for _, t := range p.Triples {
			xp.Triples = append(xp.Triples, xmlTriple(t))
		}
		doc.Payloads = append(doc.Payloads, xp)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Flush()
}

func (e *XMLEncoder) ContentType() string { return "application/xml" }
func (e *XMLEncoder) Extension() string   { return ".xml" }
