package objectstore

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"chanvault/internal/config"
)

// MinIOStore implements Store against a MinIO or S3-compatible endpoint.
type MinIOStore struct {
	client *minio.Client
}

// NewMinIO connects to the configured object storage endpoint.
func NewMinIO(cfg *config.Config) (*MinIOStore, error) {
	client, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("connect object storage: %w", err)
	}
	return &MinIOStore{client: client}, nil
}

func (s *MinIOStore) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		// Lost a creation race with another process.
		if exists, checkErr := s.client.BucketExists(ctx, bucket); checkErr == nil && exists {
			return nil
		}
		return fmt.Errorf("create bucket %s: %w", bucket, err)
	}
	return nil
}

func (s *MinIOStore) Upload(ctx context.Context, bucket, object, filePath, contentType string) (int64, error) {
	info, err := s.client.FPutObject(ctx, bucket, object, filePath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return 0, fmt.Errorf("upload %s/%s: %w", bucket, object, err)
	}
	return info.Size, nil
}

func (s *MinIOStore) Exists(ctx context.Context, bucket, object string) (bool, error) {
	_, err := s.client.StatObject(ctx, bucket, object, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
		return false, nil
	}
	return false, fmt.Errorf("stat %s/%s: %w", bucket, object, err)
}

func (s *MinIOStore) Remove(ctx context.Context, bucket, object string) error {
	if err := s.client.RemoveObject(ctx, bucket, object, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove %s/%s: %w", bucket, object, err)
	}
	return nil
}
