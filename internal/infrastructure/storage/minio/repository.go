package minio

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/solubility-bench/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/solubility-bench/pkg/errors"
)

// ArtifactRepository reads and writes artifacts under a key prefix of the
// client's bucket.
type ArtifactRepository struct {
	client *MinIOClient
	prefix string
	logger logging.Logger
}

// NewArtifactRepository builds a repository.  prefix may be empty.
func NewArtifactRepository(client *MinIOClient, prefix string, log logging.Logger) *ArtifactRepository {
	return &ArtifactRepository{
		client: client,
		prefix: strings.Trim(prefix, "/"),
		logger: logging.OrDefault(log).Named("artifacts"),
	}
}

func (r *ArtifactRepository) objectKey(key string) string {
	if r.prefix == "" {
		return key
	}
	return path.Join(r.prefix, key)
}

// Put uploads data and returns its s3:// location.  An empty content type is
// sniffed from the data.
func (r *ArtifactRepository) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if r.client.isClosed() {
		return "", ErrMinIOClientClosed
	}
	if key == "" {
		return "", errors.New(errors.ErrCodeValidation, "artifact key is required")
	}
	if contentType == "" && len(data) > 0 {
		contentType = http.DetectContentType(data[:min(512, len(data))])
	}
	obj := r.objectKey(key)
	info, err := r.client.GetClient().PutObject(ctx, r.client.Bucket(), obj,
		bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeArtifactStoreFailed, "upload failed").
			WithDetailf("key=%s", obj)
	}
	r.logger.Debug("artifact uploaded", logging.String("key", obj), logging.Int64("size", info.Size))
	return "s3://" + r.client.Bucket() + "/" + obj, nil
}

// Get downloads an artifact.  A missing key returns RPT_003.
func (r *ArtifactRepository) Get(ctx context.Context, key string) ([]byte, error) {
	if r.client.isClosed() {
		return nil, ErrMinIOClientClosed
	}
	obj := r.objectKey(key)
	o, err := r.client.GetClient().GetObject(ctx, r.client.Bucket(), obj, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapError(err, obj)
	}
	defer o.Close()
	data, err := io.ReadAll(o)
	if err != nil {
		return nil, mapError(err, obj)
	}
	return data, nil
}

// Exists reports whether key is present.
func (r *ArtifactRepository) Exists(ctx context.Context, key string) (bool, error) {
	if r.client.isClosed() {
		return false, ErrMinIOClientClosed
	}
	obj := r.objectKey(key)
	_, err := r.client.GetClient().StatObject(ctx, r.client.Bucket(), obj, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, mapError(err, obj)
	}
	return true, nil
}

// List returns the keys under prefix, relative to the repository prefix.
func (r *ArtifactRepository) List(ctx context.Context, prefix string) ([]string, error) {
	if r.client.isClosed() {
		return nil, ErrMinIOClientClosed
	}
	full := r.objectKey(prefix)
	ch := r.client.GetClient().ListObjects(ctx, r.client.Bucket(), minio.ListObjectsOptions{Prefix: full, Recursive: true})
	var keys []string
	for obj := range ch {
		if obj.Err != nil {
			return nil, mapError(obj.Err, full)
		}
		k := obj.Key
		if r.prefix != "" {
			k = strings.TrimPrefix(k, r.prefix+"/")
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

func mapError(err error, key string) error {
	if isNoSuchKey(err) {
		return errors.Wrap(err, errors.ErrCodeArtifactNotFound, "artifact not found").WithDetailf("key=%s", key)
	}
	return errors.Wrap(err, errors.ErrCodeArtifactStoreFailed, "artifact store request failed").WithDetailf("key=%s", key)
}

//Personal.AI order the ending
