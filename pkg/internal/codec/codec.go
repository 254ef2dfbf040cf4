// Package codec serialises payload batches for file-oriented sinks and compresses the result.
package codec

import (
	"fmt"
	"io"
	"strings"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

const (
	FormatNDJSON   = "ndjson"
	FormatJSON     = "json"
	FormatNTriples = "ntriples"
	FormatXML      = "xml"
)

// BatchEncoder writes a batch of payloads in one format.
type BatchEncoder interface {
	Encode(w io.Writer, batch []types.Payload) error
	ContentType() string
	Extension() string
}

// NewBatchEncoder returns the encoder for format. An empty format selects NDJSON.
func NewBatchEncoder(format string) (BatchEncoder, error) {
	switch strings.ToLower(format) {
	case FormatNDJSON, "":
		return NewNDJSONEncoder(), nil
	case FormatJSON:
		return NewJSONEncoder(), nil
	case FormatNTriples, "nt":
		return NewNTriplesEncoder(), nil
	case FormatXML:
		return NewXMLEncoder(), nil
	default:
		return nil, fmt.Errorf("codec: unsupported format %q", format)
	}
}
