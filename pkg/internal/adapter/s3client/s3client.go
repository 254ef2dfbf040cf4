// Package s3client writes each batch as one object to an S3 compatible bucket, encoded as a
// line or document format from codec or as a Parquet file.
package s3client

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/joeydtaylor/switchboard/pkg/internal/codec"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
	"github.com/joeydtaylor/switchboard/pkg/internal/utils"
	"github.com/joeydtaylor/switchboard/pkg/logschema"
)

// FormatParquet stores the batch as a Parquet file with one row per payload.
const FormatParquet = "parquet"

// Client implements types.SinkClient for S3.
type Client struct {
	componentMetadata types.ComponentMetadata
	loggers           []types.Logger
	configLock        sync.Mutex

	cli    *s3.Client
	bucket string

	prefixTemplate string
	fileNameTmpl   string
	format         string
	compression    string
	encoder        codec.BatchEncoder

	sseMode string
	kmsKey  string

	now func() time.Time

	objects int64
	lastKey atomic.Value
	closed  int32
}

// NewClient builds a client. WithClientAndBucket is required.
func NewClient(options ...types.Option[*Client]) (*Client, error) {
	c := &Client{
		componentMetadata: types.ComponentMetadata{
			ID:   utils.GenerateUniqueHash(),
			Type: "S3_CLIENT",
		},
		prefixTemplate: "{yyyy}/{MM}/{dd}/",
		fileNameTmpl:   "{ts}-{ulid}",
		format:         codec.FormatNDJSON,
		compression:    codec.CompressNone,
		now:            time.Now,
	}
	for _, opt := range options {
		opt(c)
	}

	if c.cli == nil || c.bucket == "" {
		return nil, fmt.Errorf("s3client: client and bucket are required")
	}
	if err := codec.ValidateCompression(c.compression); err != nil {
		return nil, fmt.Errorf("s3client: %w", err)
	}
	if !strings.EqualFold(c.format, FormatParquet) {
		enc, err := codec.NewBatchEncoder(c.format)
		if err != nil {
			return nil, fmt.Errorf("s3client: %w", err)
		}
		c.encoder = enc
	}
	switch strings.ToLower(c.sseMode) {
	case "", "aes256", "aws:kms":
	default:
		return nil, fmt.Errorf("s3client: unsupported server-side encryption %q", c.sseMode)
	}
	return c, nil
}

func (c *Client) Name() string { return "S3_CLIENT" }

// Objects returns how many objects have been uploaded.
func (c *Client) Objects() int64 { return atomic.LoadInt64(&c.objects) }

// LastKey returns the key of the most recent upload.
func (c *Client) LastKey() string {
	if v, ok := c.lastKey.Load().(string); ok {
		return v
	}
	return ""
}

// Ping checks that the bucket exists and is reachable with the configured credentials.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.cli.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)}); err != nil {
		return fmt.Errorf("s3client: head bucket %s: %w", c.bucket, err)
	}
	return nil
}

// WriteBatch uploads batch as a single object under a unique key.
func (c *Client) WriteBatch(ctx context.Context, batch []types.Payload) error {
	if atomic.LoadInt32(&c.closed) == 1 {
		return types.ErrSinkClosed
	}
	if len(batch) == 0 {
		return nil
	}

	body, contentType, contentEncoding, ext, err := c.encode(batch)
	if err != nil {
		return err
	}

	key := c.renderKey(c.now()) + ext
	put := &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	}
	if contentEncoding != "" {
		put.ContentEncoding = aws.String(contentEncoding)
	}
	c.applySSE(put)

	if _, err := c.cli.PutObject(ctx, put); err != nil {
		c.NotifyLoggers(types.WarnLevel, "Object upload failed",
			logschema.FieldComponent, c.GetComponentMetadata(),
			logschema.FieldEvent, "WriteBatch",
			logschema.FieldResult, logschema.ResultFailure,
			logschema.FieldBatchSize, len(batch),
			"key", key,
			logschema.FieldError, err,
		)
		return fmt.Errorf("s3client: put %s: %w", key, err)
	}

	atomic.AddInt64(&c.objects, 1)
	c.lastKey.Store(key)
	c.NotifyLoggers(types.DebugLevel, "Object uploaded",
		logschema.FieldComponent, c.GetComponentMetadata(),
		logschema.FieldEvent, "WriteBatch",
		logschema.FieldResult, logschema.ResultSuccess,
		logschema.FieldBatchSize, len(batch),
		"key", key,
		"bytes", len(body),
	)
	return nil
}

func (c *Client) Close() error {
	atomic.StoreInt32(&c.closed, 1)
	return nil
}

func (c *Client) encode(batch []types.Payload) (body []byte, contentType, contentEncoding, ext string, err error) {
	if c.encoder == nil {
		body, err = encodeParquet(batch, c.compression)
		if err != nil {
			return nil, "", "", "", fmt.Errorf("s3client: %w", err)
		}
		return body, "application/vnd.apache.parquet", "", ".parquet", nil
	}
	body, err = codec.EncodeBatch(c.encoder, batch, c.compression)
	if err != nil {
		return nil, "", "", "", fmt.Errorf("s3client: %w", err)
	}
	return body, c.encoder.ContentType(), codec.ContentEncoding(c.compression),
		c.encoder.Extension() + codec.CompressionExtension(c.compression), nil
}

func (c *Client) applySSE(put *s3.PutObjectInput) {
	switch strings.ToLower(c.sseMode) {
	case "aes256":
		put.ServerSideEncryption = s3types.ServerSideEncryptionAes256
	case "aws:kms":
		put.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
		if c.kmsKey != "" {
			put.SSEKMSKeyId = aws.String(c.kmsKey)
		}
	}
}
