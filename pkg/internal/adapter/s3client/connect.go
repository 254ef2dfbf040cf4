package s3client

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Connection describes how to reach a bucket. Empty credentials use the default provider chain;
// a RoleARN assumes that role through STS on top of whichever base credentials apply.
type Connection struct {
	Region         string
	Endpoint       string
	ForcePathStyle bool

	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string

	RoleARN         string
	RoleSessionName string
	ExternalID      string
	RoleDuration    time.Duration
}

// NewS3 builds an S3 API client for conn. An Endpoint override applies to both S3 and STS so
// emulators such as LocalStack or MinIO work end to end.
func NewS3(ctx context.Context, conn Connection) (*s3.Client, error) {
	var loaders []func(*config.LoadOptions) error
	if conn.Region != "" {
		loaders = append(loaders, config.WithRegion(conn.Region))
	}
	if conn.AccessKeyID != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conn.AccessKeyID, conn.SecretAccessKey, conn.SessionToken),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("s3client: load aws config: %w", err)
	}

	if conn.RoleARN != "" {
		stsClient := sts.NewFromConfig(cfg, func(o *sts.Options) {
			if conn.Endpoint != "" {
				o.BaseEndpoint = aws.String(conn.Endpoint)
			}
		})
		provider := stscreds.NewAssumeRoleProvider(stsClient, conn.RoleARN, func(o *stscreds.AssumeRoleOptions) {
			if conn.RoleSessionName != "" {
				o.RoleSessionName = conn.RoleSessionName
			}
			if conn.RoleDuration > 0 {
				o.Duration = conn.RoleDuration
			}
			if conn.ExternalID != "" {
				o.ExternalID = aws.String(conn.ExternalID)
			}
		})
		cfg.Credentials = aws.NewCredentialsCache(provider)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = conn.ForcePathStyle
		if conn.Endpoint != "" {
			o.BaseEndpoint = aws.String(conn.Endpoint)
		}
	}), nil
}
