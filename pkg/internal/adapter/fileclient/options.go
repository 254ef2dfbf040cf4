package fileclient

import (
	"os"
	"time"

	"github.com/joeydtaylor/switchboard/pkg/internal/internallogger"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

func WithDirectory(dir string) types.Option[*Client] {
	return func(c *Client) {
		c.dir = dir
	}
}

func WithFilePrefix(prefix string) types.Option[*Client] {
	return func(c *Client) {
		c.prefix = prefix
	}
}

// WithFormat selects the batch encoding: ndjson (default), json, ntriples or xml.
func WithFormat(format string) types.Option[*Client] {
	return func(c *Client) {
		if format != "" {
			c.format = format
		}
	}
}

// WithCompression selects none, gzip, zstd, snappy, brotli or lz4.
func WithCompression(algorithm string) types.Option[*Client] {
	return func(c *Client) {
		if algorithm != "" {
			c.compression = algorithm
		}
	}
}

func WithFileMode(perm os.FileMode) types.Option[*Client] {
	return func(c *Client) {
		c.perm = perm
	}
}

func WithClock(now func() time.Time) types.Option[*Client] {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

func WithLogger(logger ...types.Logger) types.Option[*Client] {
	return func(c *Client) {
		c.ConnectLogger(logger...)
	}
}

func WithComponentMetadata(name string, id string) types.Option[*Client] {
	return func(c *Client) {
		c.SetComponentMetadata(name, id)
	}
}

func (c *Client) ConnectLogger(loggers ...types.Logger) {
	c.configLock.Lock()
	defer c.configLock.Unlock()
	for _, l := range loggers {
		if l != nil {
			c.loggers = append(c.loggers, l)
		}
	}
}

func (c *Client) NotifyLoggers(level types.LogLevel, msg string, keysAndValues ...interface{}) {
	c.configLock.Lock()
	loggers := append([]types.Logger(nil), c.loggers...)
	c.configLock.Unlock()
	internallogger.Notify(loggers, level, msg, keysAndValues...)
}

func (c *Client) GetComponentMetadata() types.ComponentMetadata {
	c.configLock.Lock()
	defer c.configLock.Unlock()
	return c.componentMetadata
}

func (c *Client) SetComponentMetadata(name string, id string) {
	c.configLock.Lock()
	defer c.configLock.Unlock()
	c.componentMetadata.Name = name
	if id != "" {
		c.componentMetadata.ID = id
	}
}
