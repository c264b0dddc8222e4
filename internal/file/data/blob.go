package data

import (
	"context"
	"fmt"
	"io"

	"github.com/lk2023060901/cloud-drive-backend/internal/file/biz"
	"github.com/minio/minio-go/v7"
)

// MinIOBlobStore implements biz.BlobStore on a single bucket. Objects
// are keyed only by generated file id; the store knows nothing about
// metadata.
type MinIOBlobStore struct {
	client *minio.Client
	bucket string
}

func NewMinIOBlobStore(client *minio.Client, bucket string) biz.BlobStore {
	return &MinIOBlobStore{client: client, bucket: bucket}
}

func (s *MinIOBlobStore) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return nil
}

func (s *MinIOBlobStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}

	// GetObject is lazy; stat now so a missing key surfaces here rather
	// than on first read.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, fmt.Errorf("failed to stat object %s: %w", key, err)
	}

	return obj, nil
}

func (s *MinIOBlobStore) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %s: %w", key, err)
	}
	return nil
}
