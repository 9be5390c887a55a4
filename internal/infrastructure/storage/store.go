// Package storage persists run artifacts on the local filesystem or in an
// S3-compatible bucket.
package storage

import (
	"context"

	"github.com/turtacn/solubility-bench/internal/config"
	"github.com/turtacn/solubility-bench/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/solubility-bench/internal/infrastructure/storage/minio"
	"github.com/turtacn/solubility-bench/pkg/errors"
)

// ArtifactStore writes and reads named blobs.  Keys use forward slashes.
type ArtifactStore interface {
	// Put stores data under key and returns a location a user can open.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// Get returns RPT_003 for a missing key.
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

var (
	_ ArtifactStore = (*LocalStore)(nil)
	_ ArtifactStore = (*minio.ArtifactRepository)(nil)
)

// New builds the store selected by cfg.Backend.  Local stores are rooted at
// outputDir.
func New(cfg config.StorageConfig, outputDir string, logger logging.Logger) (ArtifactStore, error) {
	switch cfg.Backend {
	case "", config.StorageLocal:
		return NewLocalStore(outputDir, cfg.Prefix, logger)
	case config.StorageMinIO:
		client, err := minio.NewMinIOClient(&minio.MinIOConfig{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			UseSSL:    cfg.MinIO.UseSSL,
			Region:    cfg.MinIO.Region,
			Bucket:    cfg.MinIO.Bucket,
		}, logger)
		if err != nil {
			return nil, err
		}
		return minio.NewArtifactRepository(client, cfg.Prefix, logger), nil
	}
	return nil, errors.Newf(errors.ErrCodeValidation, "unknown storage backend %q", cfg.Backend)
}

//Personal.AI order the ending
