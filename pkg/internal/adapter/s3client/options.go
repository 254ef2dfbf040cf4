package s3client

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/joeydtaylor/switchboard/pkg/internal/internallogger"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

func WithClientAndBucket(cli *s3.Client, bucket string) types.Option[*Client] {
	return func(c *Client) {
		c.cli = cli
		c.bucket = bucket
	}
}

// WithPrefixTemplate sets the key prefix, e.g. "index/{yyyy}/{MM}/{dd}/".
func WithPrefixTemplate(prefix string) types.Option[*Client] {
	return func(c *Client) {
		c.prefixTemplate = prefix
	}
}

// WithFileNameTemplate sets the object base name. A {ulid} is appended when the template lacks one.
func WithFileNameTemplate(tmpl string) types.Option[*Client] {
	return func(c *Client) {
		if tmpl != "" {
			c.fileNameTmpl = tmpl
		}
	}
}

// WithFormat selects ndjson (default), json, ntriples, xml or parquet.
func WithFormat(format string) types.Option[*Client] {
	return func(c *Client) {
		if format != "" {
			c.format = format
		}
	}
}

// WithCompression compresses the object body, or selects the page codec for parquet.
func WithCompression(algorithm string) types.Option[*Client] {
	return func(c *Client) {
		if algorithm != "" {
			c.compression = algorithm
		}
	}
}

// WithSSE enables server-side encryption: "AES256" or "aws:kms" with an optional key id.
func WithSSE(mode, kmsKey string) types.Option[*Client] {
	return func(c *Client) {
		c.sseMode = mode
		c.kmsKey = kmsKey
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
