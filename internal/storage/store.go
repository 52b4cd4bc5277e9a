package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/config"
	"github.com/google/uuid"
)

// Object is what the blob store hands back for an upload: a URL clients can
// fetch and a reference the store accepts for deletion.
type Object struct {
	URL string
	Ref string
}

// BlobStore stores report images.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (Object, error)
	Delete(ctx context.Context, ref string) error
}

// Open builds the blob store selected by cfg.StorageDriver.
func Open(ctx context.Context, cfg *config.Config) (BlobStore, error) {
	switch cfg.StorageDriver {
	case "file":
		s, err := OpenFileBucket(cfg.StorageBaseDir, cfg.StoragePublicURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "mem":
		return NewMemBucket(cfg.StoragePublicURL), nil
	case "s3":
		s, err := OpenBucket(ctx, buildS3URL(cfg), cfg.StoragePublicURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "minio":
		s, err := NewMinioStore(ctx, MinioConfig{
			Endpoint:  cfg.StorageEndpoint,
			AccessKey: cfg.StorageAccessKey,
			SecretKey: cfg.StorageSecretKey,
			Bucket:    cfg.StorageBucket,
			UseSSL:    cfg.StorageUseSSL,
			PublicURL: cfg.StoragePublicURL,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.StorageDriver)
	}
}

// ImageKey returns a fresh object key for an uploaded image, keeping the
// original file extension when it looks sane.
func ImageKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 6 || strings.ContainsAny(ext, "/\\ ") {
		ext = ""
	}
	return "items/" + uuid.NewString() + ext
}

// sanitizeKey prevents path traversal.
func sanitizeKey(key string) string {
	key = filepath.ToSlash(key)
	key = strings.TrimLeft(key, "/")
	parts := strings.Split(key, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" || p == "." || p == ".." {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, "/")
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
