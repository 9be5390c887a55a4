package storage

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/turtacn/solubility-bench/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/solubility-bench/pkg/errors"
)

// LocalStore keeps artifacts as files under a root directory.
type LocalStore struct {
	root   string
	logger logging.Logger
}

// NewLocalStore creates root/prefix if needed.
func NewLocalStore(root, prefix string, logger logging.Logger) (*LocalStore, error) {
	if root == "" {
		root = "."
	}
	dir := filepath.Join(root, filepath.FromSlash(strings.Trim(prefix, "/")))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeArtifactStoreFailed, "failed to create output directory").
			WithDetailf("dir=%s", dir)
	}
	return &LocalStore{root: dir, logger: logging.OrDefault(logger).Named("artifacts")}, nil
}

// Root returns the directory artifacts are written to.
func (s *LocalStore) Root() string { return s.root }

// path resolves key inside root, rejecting keys that escape it.
func (s *LocalStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if key == "" || clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.Newf(errors.ErrCodeValidation, "invalid artifact key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

// Put implements ArtifactStore.  The content type is not recorded.
func (s *LocalStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	p, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeArtifactStoreFailed, "failed to create directory").WithDetailf("key=%s", key)
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeArtifactStoreFailed, "failed to write artifact").WithDetailf("key=%s", key)
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return "", errors.Wrap(err, errors.ErrCodeArtifactStoreFailed, "failed to write artifact").WithDetailf("key=%s", key)
	}
	s.logger.Debug("artifact written", logging.String("path", p), logging.Int("size", len(data)))
	return p, nil
}

// Get implements ArtifactStore.
func (s *LocalStore) Get(_ context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(err, errors.ErrCodeArtifactNotFound, "artifact not found").WithDetailf("key=%s", key)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeArtifactStoreFailed, "failed to read artifact").WithDetailf("key=%s", key)
	}
	return data, nil
}

// Exists implements ArtifactStore.
func (s *LocalStore) Exists(_ context.Context, key string) (bool, error) {
	p, err := s.path(key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(p)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, errors.Wrap(err, errors.ErrCodeArtifactStoreFailed, "failed to stat artifact").WithDetailf("key=%s", key)
	}
}

// List implements ArtifactStore.  Keys are returned in lexical order.
func (s *LocalStore) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(p, ".tmp") {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeArtifactStoreFailed, "failed to list artifacts")
	}
	return keys, nil
}

//Personal.AI order the ending
