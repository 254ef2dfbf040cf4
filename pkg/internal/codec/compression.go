package codec

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

const (
	CompressNone   = "none"
	CompressGzip   = "gzip"
	CompressZstd   = "zstd"
	CompressSnappy = "snappy"
	CompressBrotli = "brotli"
	CompressLZ4    = "lz4"
)

// ValidateCompression rejects unknown algorithm names. An empty name means no compression.
func ValidateCompression(algorithm string) error {
	switch normalizeAlgorithm(algorithm) {
	case CompressNone, CompressGzip, CompressZstd, CompressSnappy, CompressBrotli, CompressLZ4:
		return nil
	default:
		return fmt.Errorf("codec: unsupported compression %q", algorithm)
	}
}

func normalizeAlgorithm(algorithm string) string {
	a := strings.ToLower(strings.TrimSpace(algorithm))
	if a == "" {
		return CompressNone
	}
	return a
}

// CompressionExtension returns the file suffix for algorithm, or "" for none.
func CompressionExtension(algorithm string) string {
	switch normalizeAlgorithm(algorithm) {
	case CompressGzip:
		return ".gz"
	case CompressZstd:
		return ".zst"
	case CompressSnappy:
		return ".sz"
	case CompressBrotli:
		return ".br"
	case CompressLZ4:
		return ".lz4"
	default:
		return ""
	}
}

// ContentEncoding returns the HTTP Content-Encoding value for algorithm, or "".
func ContentEncoding(algorithm string) string {
	switch normalizeAlgorithm(algorithm) {
	case CompressGzip:
		return "gzip"
	case CompressZstd:
		return "zstd"
	case CompressBrotli:
		return "br"
	case CompressSnappy:
		return "x-snappy-framed"
	case CompressLZ4:
		return "x-lz4"
	default:
		return ""
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// NewCompressor wraps w. Closing the returned writer flushes the compressed stream but does not
// close w.
func NewCompressor(w io.Writer, algorithm string) (io.WriteCloser, error) {
	switch normalizeAlgorithm(algorithm) {
	case CompressNone:
		return nopWriteCloser{w}, nil
	case CompressGzip:
		return gzip.NewWriter(w), nil
	case CompressZstd:
		return zstd.NewWriter(w)
	case CompressSnappy:
		return snappy.NewBufferedWriter(w), nil
	case CompressBrotli:
		return brotli.NewWriterLevel(w, brotli.DefaultCompression), nil
	case CompressLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("codec: unsupported compression %q", algorithm)
	}
}

// NewDecompressor wraps r for reading a stream produced by NewCompressor.
func NewDecompressor(r io.Reader, algorithm string) (io.ReadCloser, error) {
	switch normalizeAlgorithm(algorithm) {
	case CompressNone:
		return io.NopCloser(r), nil
	case CompressGzip:
		return gzip.NewReader(r)
	case CompressZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	case CompressSnappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	case CompressBrotli:
		return io.NopCloser(brotli.NewReader(r)), nil
	case CompressLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("codec: unsupported compression %q", algorithm)
	}
}

// Compress returns data compressed with algorithm.
func Compress(data []byte, algorithm string) ([]byte, error) {
	var b bytes.Buffer
	w, err := NewCompressor(&b, algorithm)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Decompress reverses Compress.
func Decompress(data []byte, algorithm string) ([]byte, error) {
	r, err := NewDecompressor(bytes.NewReader(data), algorithm)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// EncodeBatch serialises batch with enc and compresses the result.
func EncodeBatch(enc BatchEncoder, batch []types.Payload, algorithm string) ([]byte, error) {
	var b bytes.Buffer
	w, err := NewCompressor(&b, algorithm)
	if err != nil {
		return nil, err
	}
	if err := enc.Encode(w, batch); err != nil {
		return nil, fmt.Errorf("codec: encode batch: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("codec: compress batch: %w", err)
	}
	return b.Bytes(), nil
}
