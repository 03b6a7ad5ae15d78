package config

import (
	"context"
	"errors"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"janmitra/internal/logging"
)

var ErrMinIODisabled = errors.New("minio endpoint not configured")

// NewMinIOClient connects to the audit export bucket, creating it when missing.
// The bucket stays private; exports are handed out through presigned URLs.
func NewMinIOClient(cfg *Config) (*minio.Client, error) {
	if cfg.MinIOEndpoint == "" {
		return nil, ErrMinIODisabled
	}

	client, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.MinIOExportBucket)
	if err != nil {
		return nil, err
	}

	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinIOExportBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
		logging.Info().Str("bucket", cfg.MinIOExportBucket).Msg("Created MinIO bucket")
	}

	return client, nil
}
