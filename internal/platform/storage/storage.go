// Package storage holds payslip documents in an S3-compatible bucket or on local disk.
package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"workforce/internal/platform/config"
)

var ErrNotFound = errors.New("object not found")

type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	// PresignGet returns "" when the backend cannot hand out direct links.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// New picks MinIO when an endpoint is configured, local disk otherwise.
func New(cfg config.Config) (Storage, error) {
	if cfg.ObjectStorageEnabled() {
		return NewMinIO(MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
		})
	}
	return NewLocal(cfg.PayslipDir)
}
