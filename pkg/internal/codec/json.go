package codec

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

// NDJSONEncoder writes one JSON object per payload per line.
type NDJSONEncoder struct{}

// JSONEncoder writes the batch as a single JSON array.
type JSONEncoder struct{}

func NewNDJSONEncoder() *NDJSONEncoder { return &NDJSONEncoder{} }

func NewJSONEncoder() *JSONEncoder { return &JSONEncoder{} }

func (e *NDJSONEncoder) Encode(w io.Writer, batch []types.Payload) error {
	enc := json.NewEncoder(w)
	for i := range batch {
		if err := enc.Encode(&batch[i]); err != nil {
			return err
		}
	}
	return nil
}

func (e *NDJSONEncoder) ContentType() string { return "application/x-ndjson" }
func (e *NDJSONEncoder) Extension() string   { return ".ndjson" }

func (e *JSONEncoder) Encode(w io.Writer, batch []types.Payload) error {
	if batch == nil {
		batch = []types.Payload{}
	}
	return json.NewEncoder(w).Encode(batch)
}

func (e *JSONEncoder) ContentType() string { return "application/json" }
func (e *JSONEncoder) Extension() string   { return ".json" }

// DecodeNDJSON reads payloads written by NDJSONEncoder.
func DecodeNDJSON(r io.Reader) ([]types.Payload, error) {
	var out []types.Payload
	dec := json.NewDecoder(bufio.NewReader(r))
	for dec.More() {
		var p types.Payload
		if err := dec.Decode(&p); err != nil {
			return out, err
		}
		out = append(out, p)
	}
	return out, nil
}
