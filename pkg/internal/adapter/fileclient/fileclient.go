// Package fileclient writes each batch to its own file in a local directory.
package fileclient

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeydtaylor/switchboard/pkg/internal/codec"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
	"github.com/joeydtaylor/switchboard/pkg/internal/utils"
	"github.com/joeydtaylor/switchboard/pkg/logschema"
)

// Client implements types.SinkClient. Files are named <prefix><ulid><ext>[<compression ext>] and
// appear atomically: a batch is written to a temporary file and renamed when complete.
type Client struct {
	componentMetadata types.ComponentMetadata
	loggers           []types.Logger
	configLock        sync.Mutex

	dir         string
	prefix      string
	format      string
	compression string
	perm        os.FileMode
	now         func() time.Time

	encoder codec.BatchEncoder

	files    int64
	lastFile atomic.Value
	closed   int32
}

func NewClient(options ...types.Option[*Client]) (*Client, error) {
	c := &Client{
		componentMetadata: types.ComponentMetadata{
			ID:   utils.GenerateUniqueHash(),
			Type: "FILE_CLIENT",
		},
		format:      codec.FormatNDJSON,
		compression: codec.CompressNone,
		perm:        0o644,
		now:         time.Now,
	}
	for _, opt := range options {
		opt(c)
	}

	if c.dir == "" {
		return nil, fmt.Errorf("fileclient: directory is required")
	}
	enc, err := codec.NewBatchEncoder(c.format)
	if err != nil {
		return nil, fmt.Errorf("fileclient: %w", err)
	}
	if err := codec.ValidateCompression(c.compression); err != nil {
		return nil, fmt.Errorf("fileclient: %w", err)
	}
	c.encoder = enc
	return c, nil
}

func (c *Client) Name() string { return "FILE_CLIENT" }

// Files returns how many batch files have been written.
func (c *Client) Files() int64 { return atomic.LoadInt64(&c.files) }

// LastFile returns the path of the most recently written file.
func (c *Client) LastFile() string {
	if v, ok := c.lastFile.Load().(string); ok {
		return v
	}
	return ""
}

// Ping creates the directory if needed and checks that it is writable.
func (c *Client) Ping(_ context.Context) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("fileclient: create directory: %w", err)
	}
	f, err := os.CreateTemp(c.dir, ".ping-*")
	if err != nil {
		return fmt.Errorf("fileclient: directory not writable: %w", err)
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

func (c *Client) WriteBatch(ctx context.Context, batch []types.Payload) error {
	if atomic.LoadInt32(&c.closed) == 1 {
		return types.ErrSinkClosed
	}
	if len(batch) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := c.writeFile(batch)
	if err != nil {
		c.NotifyLoggers(types.WarnLevel, "Batch file write failed",
			logschema.FieldComponent, c.GetComponentMetadata(),
			logschema.FieldEvent, "WriteBatch",
			logschema.FieldResult, logschema.ResultFailure,
			logschema.FieldBatchSize, len(batch),
			logschema.FieldError, err,
		)
		return err
	}

	atomic.AddInt64(&c.files, 1)
	c.lastFile.Store(path)
	c.NotifyLoggers(types.DebugLevel, "Batch file written",
		logschema.FieldComponent, c.GetComponentMetadata(),
		logschema.FieldEvent, "WriteBatch",
		logschema.FieldResult, logschema.ResultSuccess,
		logschema.FieldBatchSize, len(batch),
		"path", path,
	)
	return nil
}

func (c *Client) Close() error {
	atomic.StoreInt32(&c.closed, 1)
	return nil
}

func (c *Client) fileName() string {
	return c.prefix + utils.NewULID(c.now()) + c.encoder.Extension() + codec.CompressionExtension(c.compression)
}

func (c *Client) writeFile(batch []types.Payload) (path string, err error) {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("fileclient: create directory: %w", err)
	}
	tmp, err := os.CreateTemp(c.dir, ".batch-*.tmp")
	if err != nil {
		return "", fmt.Errorf("fileclient: create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w, err := codec.NewCompressor(tmp, c.compression)
	if err != nil {
		return "", fmt.Errorf("fileclient: %w", err)
	}
	if err = c.encoder.Encode(w, batch); err != nil {
		return "", fmt.Errorf("fileclient: encode batch: %w", err)
	}
	if err = w.Close(); err != nil {
		return "", fmt.Errorf("fileclient: compress batch: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return "", fmt.Errorf("fileclient: sync: %w", err)
	}
	if err = tmp.Chmod(c.perm); err != nil {
		return "", fmt.Errorf("fileclient: chmod: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("fileclient: close: %w", err)
	}

	path = filepath.Join(c.dir, c.fileName())
	if err = os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("fileclient: rename: %w", err)
	}
	return path, nil
}
