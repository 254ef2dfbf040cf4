package builder

import (
	"os"

	"github.com/joeydtaylor/switchboard/pkg/internal/adapter/fileclient"
	"github.com/joeydtaylor/switchboard/pkg/internal/codec"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

type FileClient = fileclient.Client

// Batch file formats and compression algorithms shared by the file and S3 sinks.
const (
	FormatNDJSON   = codec.FormatNDJSON
	FormatJSON     = codec.FormatJSON
	FormatNTriples = codec.FormatNTriples
	FormatXML      = codec.FormatXML

	CompressNone   = codec.CompressNone
	CompressGzip   = codec.CompressGzip
	CompressZstd   = codec.CompressZstd
	CompressSnappy = codec.CompressSnappy
	CompressBrotli = codec.CompressBrotli
	CompressLZ4    = codec.CompressLZ4
)

// NewFileClient creates a sink that writes each batch to its own file.
func NewFileClient(options ...types.Option[*FileClient]) (*FileClient, error) {
	return fileclient.NewClient(options...)
}

func FileWithDirectory(dir string) types.Option[*FileClient] {
	return fileclient.WithDirectory(dir)
}

func FileWithPrefix(prefix string) types.Option[*FileClient] {
	return fileclient.WithFilePrefix(prefix)
}

func FileWithFormat(format string) types.Option[*FileClient] {
	return fileclient.WithFormat(format)
}

func FileWithCompression(algorithm string) types.Option[*FileClient] {
	return fileclient.WithCompression(algorithm)
}

func FileWithMode(perm os.FileMode) types.Option[*FileClient] {
	return fileclient.WithFileMode(perm)
}

func FileWithLogger(l ...types.Logger) types.Option[*FileClient] {
	return fileclient.WithLogger(l...)
}

func FileWithComponentMetadata(name string, id string) types.Option[*FileClient] {
	return fileclient.WithComponentMetadata(name, id)
}
