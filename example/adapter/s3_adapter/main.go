package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joeydtaylor/switchboard/pkg/builder"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

type memLoader struct{}

func (memLoader) LoadForIndexing(_ context.Context, id string) (*builder.RecordSnapshot, error) {
	return &builder.RecordSnapshot{
		ID:     id,
		Type:   "Order",
		Fields: map[string][]string{"total": {"42.50"}, "status": {"shipped"}},
	}, nil
}

// Writes Parquet batches to a local S3 compatible store, for example:
//
//	docker run -p 4566:4566 localstack/localstack
//	awslocal s3 mb s3://switchboard
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	logger := builder.NewLogger(builder.LoggerWithLevel("debug"))

	cli, err := builder.NewS3(ctx, builder.S3Connection{
		Region:          envOr("AWS_REGION", "us-east-1"),
		Endpoint:        envOr("S3_ENDPOINT", "http://localhost:4566"),
		ForcePathStyle:  true,
		AccessKeyID:     envOr("AWS_ACCESS_KEY_ID", "test"),
		SecretAccessKey: envOr("AWS_SECRET_ACCESS_KEY", "test"),
		RoleARN:         os.Getenv("S3_ROLE_ARN"),
	})
	if err != nil {
		panic(err)
	}

	sink, err := builder.NewS3Client(
		builder.S3WithClientAndBucket(cli, envOr("S3_BUCKET", "switchboard")),
		builder.S3WithPrefixTemplate("orders/{yyyy}/{MM}/{dd}/"),
		builder.S3WithFormat(builder.FormatParquet),
		builder.S3WithCompression(builder.CompressZstd),
		builder.S3WithLogger(logger),
	)
	if err != nil {
		panic(err)
	}

	m, err := builder.ParseMapping([]byte(`
baseIRI: https://data.example.org/id
types:
  Order:
    index: orders
    fields:
      total:
        predicate: https://schema.org/price
        datatype: http://www.w3.org/2001/XMLSchema#decimal
      status: https://schema.org/orderStatus
`))
	if err != nil {
		panic(err)
	}

	cfg := builder.DefaultPipelineConfig()
	cfg.BatchSize = 500
	p, err := builder.NewPipeline(ctx, cfg, memLoader{}, builder.NewMapper(m),
		[]builder.NamedSink{builder.Sink("orders-s3", sink)},
		builder.PipelineWithLogger(logger),
	)
	if err != nil {
		panic(err)
	}

	for i := 0; i < 2000; i++ {
		if err := p.Index(ctx, fmt.Sprintf("order-%05d", i)); err != nil {
			panic(err)
		}
	}
	if err := p.Close(); err != nil {
		fmt.Println("Close error:", err)
	}
	fmt.Printf("Uploaded %d objects, last key %s\n", sink.Objects(), sink.LastKey())
}
