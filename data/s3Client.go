package data

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/portfolio_ledger/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// NewS3Client builds an S3 client from the default AWS credential chain. S3_ENDPOINT
// points it at an S3-compatible store such as MinIO.
func NewS3Client(ctx context.Context, cfg *config.Config) *s3.Client {
	var loadOpts []func(*awsConfig.LoadOptions) error
	if cfg.S3.Region != "" {
		loadOpts = append(loadOpts, awsConfig.WithRegion(cfg.S3.Region))
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		slog.Error("failed on awsConfig.LoadDefaultConfig", slog.String("err", err.Error()))
		panic(err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
		}
		o.UsePathStyle = cfg.S3.UsePathStyle
	})

	slog.Info("S3 client ready", slog.String("bucket", cfg.S3.Bucket), slog.String("region", awsCfg.Region))

	return client
}
