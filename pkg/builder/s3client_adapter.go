package builder

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/joeydtaylor/switchboard/pkg/internal/adapter/s3client"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

type S3Client = s3client.Client

// S3Connection describes how to reach a bucket: region, endpoint, static keys or an assumed role.
type S3Connection = s3client.Connection

// FormatParquet is only supported by the S3 sink.
const FormatParquet = s3client.FormatParquet

// NewS3 builds an AWS SDK client, assuming conn.RoleARN through STS when set.
func NewS3(ctx context.Context, conn S3Connection) (*s3.Client, error) {
	return s3client.NewS3(ctx, conn)
}

// NewS3Client creates a sink that uploads each batch as one object.
func NewS3Client(options ...types.Option[*S3Client]) (*S3Client, error) {
	return s3client.NewClient(options...)
}

func S3WithClientAndBucket(cli *s3.Client, bucket string) types.Option[*S3Client] {
	return s3client.WithClientAndBucket(cli, bucket)
}

// S3WithPrefixTemplate sets the key prefix; {yyyy} {MM} {dd} {HH} {mm} are expanded.
func S3WithPrefixTemplate(prefix string) types.Option[*S3Client] {
	return s3client.WithPrefixTemplate(prefix)
}

func S3WithFileNameTemplate(tmpl string) types.Option[*S3Client] {
	return s3client.WithFileNameTemplate(tmpl)
}

func S3WithFormat(format string) types.Option[*S3Client] {
	return s3client.WithFormat(format)
}

func S3WithCompression(algorithm string) types.Option[*S3Client] {
	return s3client.WithCompression(algorithm)
}

// S3WithSSE sets server-side encryption: "AES256" or "aws:kms" with an optional key id.
func S3WithSSE(mode, kmsKey string) types.Option[*S3Client] {
	return s3client.WithSSE(mode, kmsKey)
}

func S3WithLogger(l ...types.Logger) types.Option[*S3Client] {
	return s3client.WithLogger(l...)
}

func S3WithComponentMetadata(name string, id string) types.Option[*S3Client] {
	return s3client.WithComponentMetadata(name, id)
}
