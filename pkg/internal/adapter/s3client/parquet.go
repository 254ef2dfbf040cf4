package s3client

import (
	"bytes"
	"strings"

	parquet "github.com/parquet-go/parquet-go"

	"github.com/joeydtaylor/switchboard/pkg/internal/codec"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

// payloadRow is the Parquet schema of an uploaded batch. Triples are stored as N-Triples text.
type payloadRow struct {
	RecordID   string `parquet:"record_id"`
	EntityType string `parquet:"entity_type"`
	DocumentID string `parquet:"document_id"`
	Index      string `parquet:"index"`
	Document   string `parquet:"document"`
	Triples    string `parquet:"triples"`
	Sequence   int64  `parquet:"sequence"`
}

func toRow(p types.Payload) payloadRow {
	var nt strings.Builder
	for _, t := range p.Triples {
		nt.WriteString(codec.FormatTriple(t))
		nt.WriteByte('\n')
	}
	return payloadRow{
		RecordID:   p.RecordID,
		EntityType: p.EntityType,
		DocumentID: p.DocumentID,
		Index:      p.Index,
		Document:   string(p.Document),
		Triples:    nt.String(),
		Sequence:   int64(p.Sequence),
	}
}

// parquetCompression maps a codec compression name to the Parquet page codec. Snappy is the
// default for an unset name.
func parquetCompression(algorithm string) parquet.WriterOption {
	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case codec.CompressGzip:
		return parquet.Compression(&parquet.Gzip)
	case codec.CompressZstd:
		return parquet.Compression(&parquet.Zstd)
	case codec.CompressBrotli:
		return parquet.Compression(&parquet.Brotli)
	case codec.CompressLZ4:
		return parquet.Compression(&parquet.Lz4Raw)
	case codec.CompressNone:
		return parquet.Compression(&parquet.Uncompressed)
	default:
		return parquet.Compression(&parquet.Snappy)
	}
}

func encodeParquet(batch []types.Payload, compression string) ([]byte, error) {
	rows := make([]payloadRow, len(batch))
	for i, p := range batch {
		rows[i] = toRow(p)
	}

	var buf bytes.Buffer
	w := parquet.NewGenericWriter[payloadRow](&buf, parquetCompression(compression))
	if _, err := w.Write(rows); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
