// Package repository persists computed score vectors so repeated runs over
// the same forecast skip recomputation.
//
// Entries are never invalidated: whoever changes the forecast must delete
// the cache entry (or pick a new key).
package repository

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/okian/bracketev/internal/domain/model"
)

// Store provides read/write access to cached score vectors.
type Store interface {
	// Get returns the vectors stored under key. It returns ErrNotFound when
	// nothing is stored and ErrCacheCorrupt when the entry cannot be decoded.
	Get(ctx context.Context, key string) (model.ScoreVectors, error)
	// Put stores vectors under key, replacing any previous entry.
	Put(ctx context.Context, key string, vectors model.ScoreVectors) error
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]model.ScoreVectors
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]model.ScoreVectors)}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) (model.ScoreVectors, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return clone(v), nil
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, key string, vectors model.ScoreVectors) error {
	if err := checkKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = clone(vectors)
	return nil
}

func clone(in model.ScoreVectors) model.ScoreVectors {
	out := make(model.ScoreVectors, len(in))
	for name, vec := range in {
		out[name] = append(model.ScoreVector(nil), vec...)
	}
	return out
}

func checkKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// validate rejects entries that cannot be score vectors.
func validate(vectors model.ScoreVectors) error {
	if len(vectors) == 0 {
		return fmt.Errorf("%w: no teams", ErrCacheCorrupt)
	}
	for name, vec := range vectors {
		if len(vec) == 0 || vec[0] != 0 {
			return fmt.Errorf("%w: %q has malformed vector", ErrCacheCorrupt, name)
		}
		for _, x := range vec {
			if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
				return fmt.Errorf("%w: %q has value %v", ErrCacheCorrupt, name, x)
			}
		}
	}
	return nil
}
