package s3

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Kantheephob/Nostalgia-Life-Log/internal/shared/storage/blob"
)

// Store implements blob.Store using Amazon S3.
type Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// New creates an S3-backed blob store. publicBase overrides the default
// virtual-hosted bucket URL (useful behind a CDN).
func New(ctx context.Context, region, bucket, publicBase string) (*Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	base := strings.TrimRight(publicBase, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, cfg.Region)
	}

	return &Store{
		client:  s3.NewFromConfig(cfg),
		bucket:  bucket,
		baseURL: base,
	}, nil
}

// Put uploads the reader contents to S3 under key.
func (s *Store) Put(ctx context.Context, key, contentType string, size int64, r io.Reader) (blob.Object, error) {
	if err := ctx.Err(); err != nil {
		return blob.Object{}, err
	}

	counter := &countingReader{r: r}
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        counter,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return blob.Object{}, fmt.Errorf("s3 put object bucket=%s key=%s: %w", s.bucket, key, err)
	}

	// PutObject does not report LastModified; the listing carries the
	// authoritative timestamp.
	return blob.Object{
		URL:         blob.JoinURL(s.baseURL, key),
		Pathname:    key,
		Size:        counter.n,
		ContentType: contentType,
		UploadedAt:  time.Now().UTC(),
	}, nil
}

// List returns every object under prefix, following pagination.
func (s *Store) List(ctx context.Context, prefix string) ([]blob.Object, error) {
	out := []blob.Object{}
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list objects bucket=%s prefix=%s: %w", s.bucket, prefix, err)
		}
		for _, item := range page.Contents {
			key := aws.ToString(item.Key)
			out = append(out, blob.Object{
				URL:        blob.JoinURL(s.baseURL, key),
				Pathname:   key,
				Size:       aws.ToInt64(item.Size),
				UploadedAt: aws.ToTime(item.LastModified),
			})
		}
	}
	return out, nil
}

// Delete removes the object at key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete object bucket=%s key=%s: %w", s.bucket, key, err)
	}
	return nil
}

// Key resolves a public URL back to its storage key.
func (s *Store) Key(url string) (string, error) {
	return blob.KeyFromURL(s.baseURL, url)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

var _ blob.Store = (*Store)(nil)
