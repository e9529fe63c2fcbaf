package minio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Kantheephob/Nostalgia-Life-Log/internal/shared/storage/blob"
	"github.com/Kantheephob/Nostalgia-Life-Log/internal/shared/telemetry"
)

// Store implements blob.Store on MinIO or any S3-compatible endpoint.
type Store struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// New creates a MinIO client, ensures the bucket exists with a public-read
// policy, and returns a ready-to-use store. publicBase overrides the default
// endpoint-derived URL base.
func New(endpoint, accessKey, secretKey, bucket, publicBase string, useSSL bool) (*Store, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx := context.Background()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", bucket, err)
		}
		telemetry.Info("blob.bucket.created", map[string]any{"bucket": bucket})
	}

	if err := client.SetBucketPolicy(ctx, bucket, publicReadPolicy(bucket)); err != nil {
		return nil, fmt.Errorf("set bucket policy: %w", err)
	}

	base := strings.TrimRight(publicBase, "/")
	if base == "" {
		scheme := "http"
		if useSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s/%s", scheme, endpoint, bucket)
	}

	return &Store{
		client:  client,
		bucket:  bucket,
		baseURL: base,
	}, nil
}

// Put streams the reader to MinIO under key. size must be the exact byte count.
func (s *Store) Put(ctx context.Context, key, contentType string, size int64, r io.Reader) (blob.Object, error) {
	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return blob.Object{}, fmt.Errorf("put object %q: %w", key, err)
	}
	return blob.Object{
		URL:         blob.JoinURL(s.baseURL, key),
		Pathname:    key,
		Size:        info.Size,
		ContentType: contentType,
		UploadedAt:  info.LastModified.UTC(),
	}, nil
}

// List returns every object under prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]blob.Object, error) {
	out := []blob.Object{}
	for item := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if item.Err != nil {
			return nil, fmt.Errorf("list objects prefix=%s: %w", prefix, item.Err)
		}
		out = append(out, blob.Object{
			URL:         blob.JoinURL(s.baseURL, item.Key),
			Pathname:    item.Key,
			Size:        item.Size,
			ContentType: item.ContentType,
			UploadedAt:  item.LastModified.UTC(),
		})
	}
	return out, nil
}

// Delete removes the object at key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %q: %w", key, err)
	}
	return nil
}

// Key resolves a public URL back to its storage key.
func (s *Store) Key(url string) (string, error) {
	return blob.KeyFromURL(s.baseURL, url)
}

// publicReadPolicy returns a bucket policy JSON allowing anonymous GET on all
// objects, so stored image URLs render directly in a browser.
func publicReadPolicy(bucket string) string {
	policy := map[string]interface{}{
		"Version": "2012-10-17",
		"Statement": []map[string]interface{}{
			{
				"Effect":    "Allow",
				"Principal": "*",
				"Action":    "s3:GetObject",
				"Resource":  fmt.Sprintf("arn:aws:s3:::%s/*", bucket),
			},
		},
	}
	b, _ := json.Marshal(policy)
	return string(b)
}

var _ blob.Store = (*Store)(nil)
