package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/config"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
	"gocloud.dev/gcerrors"
)

// BucketStore implements BlobStore on top of a gocloud bucket.
type BucketStore struct {
	bucket    *blob.Bucket
	publicURL string
}

func NewBucketStore(bucket *blob.Bucket, publicURL string) *BucketStore {
	return &BucketStore{bucket: bucket, publicURL: publicURL}
}

// OpenBucket opens any registered gocloud bucket URL (s3://, file://, mem://).
func OpenBucket(ctx context.Context, bucketURL, publicURL string) (*BucketStore, error) {
	bk, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("open bucket: %w", err)
	}
	return NewBucketStore(bk, publicURL), nil
}

// OpenFileBucket stores objects under dir on the local filesystem.
func OpenFileBucket(dir, publicURL string) (*BucketStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve base dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("ensure base dir: %w", err)
	}
	bk, err := fileblob.OpenBucket(abs, nil)
	if err != nil {
		return nil, fmt.Errorf("open file bucket: %w", err)
	}
	return NewBucketStore(bk, publicURL), nil
}

func NewMemBucket(publicURL string) *BucketStore {
	return NewBucketStore(memblob.OpenBucket(nil), publicURL)
}

func (s *BucketStore) Put(ctx context.Context, key string, r io.Reader, _ int64, contentType string) (Object, error) {
	key = sanitizeKey(key)
	w, err := s.bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return Object{}, fmt.Errorf("open writer: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return Object{}, fmt.Errorf("write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return Object{}, fmt.Errorf("close writer: %w", err)
	}
	return Object{URL: joinURL(s.publicURL, key), Ref: key}, nil
}

// Delete removes ref. A missing object counts as already released.
func (s *BucketStore) Delete(ctx context.Context, ref string) error {
	err := s.bucket.Delete(ctx, sanitizeKey(ref))
	if err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (s *BucketStore) Exists(ctx context.Context, ref string) (bool, error) {
	return s.bucket.Exists(ctx, sanitizeKey(ref))
}

func (s *BucketStore) Close() error {
	return s.bucket.Close()
}

// buildS3URL constructs a gocloud s3 URL with query params.
func buildS3URL(cfg *config.Config) string {
	u := url.URL{Scheme: "s3", Host: cfg.StorageBucket}
	q := url.Values{}
	if cfg.StorageRegion != "" {
		q.Set("region", cfg.StorageRegion)
	}
	if cfg.StorageEndpoint != "" {
		q.Set("endpoint", cfg.StorageEndpoint)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
