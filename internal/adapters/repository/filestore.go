package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/bracketev/internal/domain/model"
)

const (
	defaultFileMode = 0o644
	cacheExt        = ".json"
)

// FileStore keeps one JSON document per key in a directory.
type FileStore struct {
	dir  string
	mode os.FileMode
}

// NewFileStore creates a store rooted at dir. The directory is created on
// the first Put.
func NewFileStore(dir string, opts ...Option) *FileStore {
	s := &FileStore{dir: dir, mode: defaultFileMode}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the file backing key.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.dir, key+cacheExt)
}

// Get implements Store.
func (s *FileStore) Get(_ context.Context, key string) (model.ScoreVectors, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.Path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("read cache %s: %w", key, err)
	}

	var vectors model.ScoreVectors
	if err := json.Unmarshal(b, &vectors); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCacheCorrupt, key, err)
	}
	if err := validate(vectors); err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return vectors, nil
}

// Put implements Store. The entry is written to a temporary file and
// renamed into place so readers never observe a partial document.
func (s *FileStore) Put(_ context.Context, key string, vectors model.ScoreVectors) error {
	if err := checkKey(key); err != nil {
		return err
	}
	b, err := json.Marshal(vectors)
	if err != nil {
		return fmt.Errorf("encode cache %s: %w", key, err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil { //nolint:gosec // cache dir is shared with the user
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write cache %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close cache %s: %w", key, err)
	}
	if err := os.Chmod(tmp.Name(), s.mode); err != nil {
		return fmt.Errorf("chmod cache %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), s.Path(key)); err != nil {
		return fmt.Errorf("install cache %s: %w", key, err)
	}
	return nil
}
